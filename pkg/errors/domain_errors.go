package errors

var (
	// Domain errors used in directory/storage/digest
	ErrUserNotFound    = NotFound("user not found")
	ErrMessageNotFound = NotFound("message not found")
)
