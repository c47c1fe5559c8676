package storage

import (
	"context"
	"time"

	"github.com/evpulse/pulse-bot/internal/models"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// ErrNotFound is the sentinel returned when a record does not exist. It is an
// expected outcome, not a fault. Callers branch on it with errors.Is to show
// onboarding prompts and the like.
var ErrNotFound = apperrors.ErrUserNotFound

// UserPatch carries a partial user update. Nil fields are left unchanged,
// mirroring document-store set-with-merge semantics.
type UserPatch struct {
	RealName            *string
	Role                *string
	TrackedChannels     *[]string
	Interests           *[]string
	FollowedUsers       *[]string
	Muted               *bool
	OnboardingCompleted *bool
}

type Storage interface {
	UserStorage
	MessageStorage
	Close() error
}

type UserStorage interface {
	// GetUser returns ErrNotFound when the record is absent.
	GetUser(ctx context.Context, id string) (*models.User, error)
	// UpsertUser creates the record if absent and applies the non-nil patch
	// fields, bumping the modification timestamp.
	UpsertUser(ctx context.Context, id string, patch UserPatch) error
	// AddUserChannel appends channel to the tracked set, idempotently.
	AddUserChannel(ctx context.Context, id, channel string) error
	// RemoveUserChannel removes channel from the tracked set; absent entries
	// are a no-op.
	RemoveUserChannel(ctx context.Context, id, channel string) error
	// RecordActivity increments the message counter and bumps last-active,
	// lazily creating the record on first contact.
	RecordActivity(ctx context.Context, id string, at time.Time) error
	// DeleteUser removes the whole record. Deleting an absent user is a no-op.
	DeleteUser(ctx context.Context, id string) error
}

type MessageStorage interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	// MessagesByChannel returns channel messages stored at or after since,
	// newest first.
	MessagesByChannel(ctx context.Context, channelID string, since time.Time) ([]*models.Message, error)
	// MessagesByUser returns messages sent by a user at or after since,
	// newest first.
	MessagesByUser(ctx context.Context, userID string, since time.Time) ([]*models.Message, error)
	// ReceivedDMs returns direct messages addressed to a user at or after
	// since, newest first.
	ReceivedDMs(ctx context.Context, recipientID string, since time.Time) ([]*models.Message, error)
	// SetMessagePinned flips the pin-status flag on the stored message with
	// the given channel and platform timestamp.
	SetMessagePinned(ctx context.Context, channelID, timestamp string, pinned bool) error
}

// StringPtr and friends build patch fields at call sites.
func StringPtr(s string) *string      { return &s }
func BoolPtr(b bool) *bool            { return &b }
func StringsPtr(s []string) *[]string { return &s }
