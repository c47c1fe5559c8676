package messages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/models"
	"github.com/evpulse/pulse-bot/internal/storage"
)

type stubTagger struct {
	tags  []string
	calls int
}

func (s *stubTagger) Tag(ctx context.Context, text string) []string {
	s.calls++
	return s.tags
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   Inbound
		want models.MessageType
	}{
		{"plain text", Inbound{Text: "standup in 5"}, models.TextMessage},
		{"mention marker", Inbound{Text: "ping <@U123> about the harness"}, models.MentionMessage},
		{"pinned", Inbound{Text: "release checklist", PinnedTo: []string{"C1"}}, models.PinMessage},
		{"file beats mention", Inbound{
			Text:  "drawings attached <@U123>",
			Files: []Attachment{{ID: "F1", Name: "bracket.pdf", Filetype: "pdf"}},
		}, models.FileMessage},
		{"file beats pin", Inbound{
			PinnedTo: []string{"C1"},
			Files:    []Attachment{{ID: "F1", Name: "bom.xlsx", Filetype: "xlsx"}},
		}, models.FileMessage},
		{"pin beats mention", Inbound{
			Text:     "see <@U123>",
			PinnedTo: []string{"C1"},
		}, models.PinMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestTrackableFiles(t *testing.T) {
	t.Run("allow-list is case-insensitive and order-preserving", func(t *testing.T) {
		in := Inbound{Files: []Attachment{
			{ID: "F1", Name: "frame.CAD", Filetype: "CAD", URL: "u1"},
			{ID: "F2", Name: "notes.txt", Filetype: "txt", URL: "u2"},
			{ID: "F3", Name: "bom.Xlsx", Filetype: "Xlsx", URL: "u3"},
		}}

		files := TrackableFiles(in)
		require.Len(t, files, 2)
		assert.Equal(t, models.FileRef{ID: "F1", Name: "frame.CAD", Type: "cad", URL: "u1"}, files[0])
		assert.Equal(t, models.FileRef{ID: "F3", Name: "bom.Xlsx", Type: "xlsx", URL: "u3"}, files[1])
	})

	t.Run("no matches yields empty list, not an error", func(t *testing.T) {
		in := Inbound{Files: []Attachment{{ID: "F1", Filetype: "png"}}}
		assert.Empty(t, TrackableFiles(in))
	})
}

func TestServiceStore(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	tg := &stubTagger{tags: []string{"battery"}}
	svc := NewService(store, tg, zap.NewNop())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	msg, err := svc.Store(ctx, Inbound{
		Channel:     "battery",
		User:        "U1",
		Text:        "pack voltage sag under load",
		Timestamp:   "1714564800.000100",
		ChannelKind: models.PublicChannel,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.TextMessage, msg.Type)
	assert.Equal(t, []string{"battery"}, msg.Tags)
	assert.Equal(t, now, msg.CreatedAt)
	assert.Equal(t, 1, tg.calls)

	t.Run("empty text skips the tagging call", func(t *testing.T) {
		_, err := svc.Store(ctx, Inbound{
			Channel:     "battery",
			User:        "U1",
			Files:       []Attachment{{ID: "F1", Name: "pack.pdf", Filetype: "pdf"}},
			ChannelKind: models.PublicChannel,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, tg.calls)
	})

	t.Run("windowed query sees the stored message", func(t *testing.T) {
		got, err := svc.ChannelMessages(ctx, "battery", 24)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("message outside the window is excluded", func(t *testing.T) {
		svc.now = func() time.Time { return now.Add(25 * time.Hour) }
		got, err := svc.ChannelMessages(ctx, "battery", 24)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("mark pinned", func(t *testing.T) {
		require.NoError(t, svc.MarkPinned(ctx, "battery", msg.Timestamp, true))
		svc.now = func() time.Time { return now }
		got, err := svc.ChannelMessages(ctx, "battery", 24)
		require.NoError(t, err)
		for _, m := range got {
			if m.ID == msg.ID {
				assert.True(t, m.Pinned)
			}
		}
	})
}
