package errors

type Code string

const (
	CodeUnknown            Code = "UNKNOWN"
	CodeUnknownRole        Code = "UNKNOWN_ROLE"
	CodeInvalidField       Code = "INVALID_FIELD"
	CodeAccessDenied       Code = "ACCESS_DENIED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeStoreUnavailable   Code = "STORE_UNAVAILABLE"
	CodeSummaryUnavailable Code = "SUMMARY_UNAVAILABLE"
	CodeInternal           Code = "INTERNAL"
)
