package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/roles"
	"github.com/evpulse/pulse-bot/internal/storage"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

func newDirectory(t *testing.T) (*Directory, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return New(store, zap.NewNop()), store
}

func TestCreateOrUpdate(t *testing.T) {
	ctx := context.Background()
	d, _ := newDirectory(t)

	t.Run("merge keeps unspecified fields", func(t *testing.T) {
		require.NoError(t, d.CreateOrUpdate(ctx, "U1", map[string]any{
			FieldRealName: "Dana",
			FieldMuted:    true,
		}))
		require.NoError(t, d.CreateOrUpdate(ctx, "U1", map[string]any{
			FieldOnboardingCompleted: true,
		}))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, "Dana", user.RealName)
		assert.True(t, user.Muted)
		assert.True(t, user.OnboardingCompleted)
	})

	t.Run("unknown field name rejected", func(t *testing.T) {
		err := d.CreateOrUpdate(ctx, "U1", map[string]any{"favorite_color": "green"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidField))
	})

	t.Run("wrong field type rejected", func(t *testing.T) {
		err := d.CreateOrUpdate(ctx, "U1", map[string]any{FieldMuted: "yes"})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidField))
	})

	t.Run("interests are deduplicated", func(t *testing.T) {
		require.NoError(t, d.CreateOrUpdate(ctx, "U1", map[string]any{
			FieldInterests: []string{"thermal", "cad", "thermal"},
		}))
		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"thermal", "cad"}, user.Interests)
	})
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown role rejected", func(t *testing.T) {
		d, _ := newDirectory(t)
		err := d.AssignRole(ctx, "U1", "WIZARD")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnknownRole))
	})

	t.Run("first assignment applies role defaults", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Software))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, roles.Software, user.Role)
		assert.Equal(t, []string{"software", "firmware", "controls"}, user.TrackedChannels)
		assert.Equal(t, []string{"firmware", "controls", "software-architecture", "testing"}, user.Interests)
	})

	t.Run("mechanical defaults", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Mechanical))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"mechanical", "cad", "manufacturing"}, user.TrackedChannels)
	})

	t.Run("reassignment preserves customized channels", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Software))
		require.NoError(t, d.AddChannel(ctx, "U1", "general"))

		require.NoError(t, d.AssignRole(ctx, "U1", roles.Systems))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, roles.Systems, user.Role)
		assert.Equal(t, []string{"software", "firmware", "controls", "general"}, user.TrackedChannels,
			"reassignment must not overwrite a customized channel set")
	})

	t.Run("defaults reapply after reset", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Software))
		require.NoError(t, d.Reset(ctx, "U1"))

		require.NoError(t, d.AssignRole(ctx, "U1", roles.Electrical))
		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"electrical", "battery", "power-electronics"}, user.TrackedChannels)
	})
}

func TestAddRemoveChannel(t *testing.T) {
	ctx := context.Background()

	t.Run("add is idempotent", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Mechanical))

		require.NoError(t, d.AddChannel(ctx, "U1", "general"))
		require.NoError(t, d.AddChannel(ctx, "U1", "general"))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"mechanical", "cad", "manufacturing", "general"}, user.TrackedChannels)
	})

	t.Run("add denied without access", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Mechanical))

		err := d.AddChannel(ctx, "U1", "systems")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeAccessDenied))
	})

	t.Run("equal rank grants at the boundary", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Mechanical))
		assert.NoError(t, d.AddChannel(ctx, "U1", "electrical"))
	})

	t.Run("add without a role denied", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.CreateOrUpdate(ctx, "U1", map[string]any{FieldRealName: "Dana"}))

		err := d.AddChannel(ctx, "U1", "general")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeAccessDenied))
	})

	t.Run("role downgrade does not prune tracked channels", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Systems))
		require.NoError(t, d.AddChannel(ctx, "U1", "systems"))

		require.NoError(t, d.AssignRole(ctx, "U1", roles.Mechanical))
		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Contains(t, user.TrackedChannels, "systems")
	})

	t.Run("remove absent channel is a no-op", func(t *testing.T) {
		d, _ := newDirectory(t)
		require.NoError(t, d.AssignRole(ctx, "U1", roles.Software))

		require.NoError(t, d.RemoveChannel(ctx, "U1", "not-tracked"))
		require.NoError(t, d.RemoveChannel(ctx, "U1", "firmware"))

		user, err := d.Get(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"software", "controls"}, user.TrackedChannels)
	})
}

func TestActivityAndReset(t *testing.T) {
	ctx := context.Background()
	d, _ := newDirectory(t)

	t.Run("activity lazily creates the record", func(t *testing.T) {
		require.NoError(t, d.RecordActivity(ctx, "U9", time.Now().UTC()))

		user, err := d.Get(ctx, "U9")
		require.NoError(t, err)
		assert.Equal(t, int64(1), user.MessageCount)
		assert.Empty(t, user.Role)
	})

	t.Run("reset removes the record", func(t *testing.T) {
		require.NoError(t, d.Reset(ctx, "U9"))
		_, err := d.Get(ctx, "U9")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})
}
