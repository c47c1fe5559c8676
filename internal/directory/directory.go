// Package directory owns user records: identity, assigned role, tracked
// channels, interests and activity counters. Role defaults cascade on first
// assignment; channel adds are gated by the access evaluator.
package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/models"
	"github.com/evpulse/pulse-bot/internal/roles"
	"github.com/evpulse/pulse-bot/internal/storage"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// Field names accepted by CreateOrUpdate. They match the persisted document
// keys so platform glue can pass payload fields through unchanged.
const (
	FieldRealName            = "real_name"
	FieldRole                = "role"
	FieldTrackedChannels     = "tracked_channels"
	FieldInterests           = "interests"
	FieldFollowedUsers       = "followed_users"
	FieldMuted               = "muted"
	FieldOnboardingCompleted = "onboarding_completed"
)

type Directory struct {
	store  storage.UserStorage
	logger *zap.Logger
}

func New(store storage.UserStorage, logger *zap.Logger) *Directory {
	return &Directory{store: store, logger: logger}
}

// Get returns the user record, or storage.ErrNotFound when absent. Absence is
// an expected outcome; callers branch on it to show the onboarding prompt.
func (d *Directory) Get(ctx context.Context, userID string) (*models.User, error) {
	return d.store.GetUser(ctx, userID)
}

// CreateOrUpdate upserts a user with merge semantics: fields absent from the
// map are left unchanged. An unrecognized field name fails with InvalidField.
func (d *Directory) CreateOrUpdate(ctx context.Context, userID string, fields map[string]any) error {
	patch := storage.UserPatch{}
	for name, value := range fields {
		switch name {
		case FieldRealName:
			s, err := stringField(name, value)
			if err != nil {
				return err
			}
			patch.RealName = &s
		case FieldRole:
			s, err := stringField(name, value)
			if err != nil {
				return err
			}
			patch.Role = &s
		case FieldTrackedChannels:
			list, err := stringsField(name, value)
			if err != nil {
				return err
			}
			patch.TrackedChannels = &list
		case FieldInterests:
			list, err := stringsField(name, value)
			if err != nil {
				return err
			}
			deduped := dedupe(list)
			patch.Interests = &deduped
		case FieldFollowedUsers:
			list, err := stringsField(name, value)
			if err != nil {
				return err
			}
			patch.FollowedUsers = &list
		case FieldMuted:
			b, err := boolField(name, value)
			if err != nil {
				return err
			}
			patch.Muted = &b
		case FieldOnboardingCompleted:
			b, err := boolField(name, value)
			if err != nil {
				return err
			}
			patch.OnboardingCompleted = &b
		default:
			return apperrors.InvalidField(name)
		}
	}

	return d.store.UpsertUser(ctx, userID, patch)
}

// AssignRole sets the user's role. Role defaults replace the tracked-channel
// and interest sets only when both are currently empty (first assignment or
// post-reset); customized sets are preserved across reassignment.
func (d *Directory) AssignRole(ctx context.Context, userID, role string) error {
	if !roles.Known(role) {
		return apperrors.UnknownRole(role)
	}

	user, err := d.store.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	patch := storage.UserPatch{Role: &role}
	if user == nil || !user.Customized() {
		channels := roles.DefaultChannels(role)
		interests := roles.DefaultInterests(role)
		patch.TrackedChannels = &channels
		patch.Interests = &interests
		d.logger.Info("applying role defaults",
			zap.String("user_id", userID),
			zap.String("role", role),
			zap.Strings("channels", channels))
	}

	return d.store.UpsertUser(ctx, userID, patch)
}

// AddChannel adds a channel to the user's tracked set after the access check.
// Adding an already-tracked channel is a no-op. Access is evaluated against
// the role held right now; later role downgrades never prune tracked channels.
func (d *Directory) AddChannel(ctx context.Context, userID, channel string) error {
	user, err := d.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !roles.CanAccess(user.Role, channel) {
		return apperrors.AccessDenied(fmt.Sprintf("role %q may not access channel %q", user.Role, channel))
	}

	return d.store.AddUserChannel(ctx, userID, channel)
}

// RemoveChannel removes a channel from the tracked set; removing an absent
// channel is a no-op.
func (d *Directory) RemoveChannel(ctx context.Context, userID, channel string) error {
	return d.store.RemoveUserChannel(ctx, userID, channel)
}

// RecordActivity bumps the message counter and last-active timestamp, lazily
// creating the record on first contact.
func (d *Directory) RecordActivity(ctx context.Context, userID string, at time.Time) error {
	return d.store.RecordActivity(ctx, userID, at)
}

// Reset deletes the whole record; subsequent reads return not-found.
func (d *Directory) Reset(ctx context.Context, userID string) error {
	return d.store.DeleteUser(ctx, userID)
}

func stringField(name string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", apperrors.InvalidField(name)
	}
	return s, nil
}

func stringsField(name string, value any) ([]string, error) {
	list, ok := value.([]string)
	if !ok {
		return nil, apperrors.InvalidField(name)
	}
	return list, nil
}

func boolField(name string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, apperrors.InvalidField(name)
	}
	return b, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
