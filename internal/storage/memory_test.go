package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evpulse/pulse-bot/internal/models"
)

func TestMemoryStorageUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	t.Run("get missing user returns sentinel", func(t *testing.T) {
		_, err := s.GetUser(ctx, "U404")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("upsert creates then merges", func(t *testing.T) {
		require.NoError(t, s.UpsertUser(ctx, "U1", UserPatch{RealName: StringPtr("Dana")}))
		require.NoError(t, s.UpsertUser(ctx, "U1", UserPatch{Role: StringPtr("SOFTWARE")}))

		user, err := s.GetUser(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, "Dana", user.RealName, "unpatched field must survive merge")
		assert.Equal(t, "SOFTWARE", user.Role)
	})

	t.Run("returned user is a copy", func(t *testing.T) {
		require.NoError(t, s.UpsertUser(ctx, "U1", UserPatch{TrackedChannels: StringsPtr([]string{"software"})}))

		user, err := s.GetUser(ctx, "U1")
		require.NoError(t, err)
		user.TrackedChannels[0] = "mutated"

		again, err := s.GetUser(ctx, "U1")
		require.NoError(t, err)
		assert.Equal(t, []string{"software"}, again.TrackedChannels)
	})

	t.Run("record activity lazily creates", func(t *testing.T) {
		at := time.Now().UTC()
		require.NoError(t, s.RecordActivity(ctx, "U2", at))
		require.NoError(t, s.RecordActivity(ctx, "U2", at.Add(time.Minute)))

		user, err := s.GetUser(ctx, "U2")
		require.NoError(t, err)
		assert.Equal(t, int64(2), user.MessageCount)
		assert.Equal(t, at.Add(time.Minute), user.LastActive)
	})

	t.Run("delete then get returns sentinel", func(t *testing.T) {
		require.NoError(t, s.DeleteUser(ctx, "U2"))
		_, err := s.GetUser(ctx, "U2")
		assert.True(t, errors.Is(err, ErrNotFound))
		// deleting again is a no-op
		assert.NoError(t, s.DeleteUser(ctx, "U2"))
	})
}

func TestMemoryStorageMessages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	save := func(id, channel, user, recipient string, kind models.ChannelKind, at time.Time) {
		t.Helper()
		require.NoError(t, s.SaveMessage(ctx, &models.Message{
			ID:          id,
			ChannelID:   channel,
			UserID:      user,
			RecipientID: recipient,
			Timestamp:   "ts-" + id,
			Type:        models.TextMessage,
			ChannelKind: kind,
			CreatedAt:   at,
		}))
	}

	save("m1", "software", "U1", "", models.PublicChannel, base)
	save("m2", "software", "U2", "", models.PublicChannel, base.Add(time.Hour))
	save("m3", "firmware", "U1", "", models.PublicChannel, base.Add(2*time.Hour))
	save("m4", "D123", "U2", "U1", models.DirectMessage, base.Add(3*time.Hour))
	save("m5", "software", "U1", "", models.PublicChannel, base.Add(-48*time.Hour))

	t.Run("by channel newest first, window inclusive", func(t *testing.T) {
		got, err := s.MessagesByChannel(ctx, "software", base)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m2", got[0].ID)
		assert.Equal(t, "m1", got[1].ID, "message at the window lower bound is included")
	})

	t.Run("by user", func(t *testing.T) {
		got, err := s.MessagesByUser(ctx, "U1", base)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "m3", got[0].ID)
	})

	t.Run("received DMs only", func(t *testing.T) {
		got, err := s.ReceivedDMs(ctx, "U1", base)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "m4", got[0].ID)
	})

	t.Run("empty window is valid", func(t *testing.T) {
		got, err := s.MessagesByChannel(ctx, "nowhere", base)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("pin flag update", func(t *testing.T) {
		require.NoError(t, s.SetMessagePinned(ctx, "software", "ts-m1", true))
		got, err := s.MessagesByChannel(ctx, "software", base)
		require.NoError(t, err)
		assert.True(t, got[1].Pinned)

		assert.Error(t, s.SetMessagePinned(ctx, "software", "ts-missing", true))
	})
}
