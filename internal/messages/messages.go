// Package messages classifies inbound platform messages, extracts trackable
// file references, persists them with derived metadata and answers the
// time-windowed queries the digest composer runs.
package messages

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/models"
	"github.com/evpulse/pulse-bot/internal/storage"
	"github.com/evpulse/pulse-bot/internal/tagger"
)

// mentionMarker is the platform's user-mention escape in message text.
const mentionMarker = "<@"

// trackedFileTypes is the fixed allow-list of attachment extensions worth
// recording. Comparison is case-insensitive.
var trackedFileTypes = map[string]struct{}{
	"cad":  {},
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
	"ppt":  {},
	"pptx": {},
}

// Attachment is a raw file reference as delivered by the platform.
type Attachment struct {
	ID       string
	Name     string
	Filetype string
	URL      string
}

// Inbound is a raw platform message before classification and storage.
type Inbound struct {
	Channel     string
	User        string
	Recipient   string
	Text        string
	Timestamp   string
	ThreadTS    string
	ChannelKind models.ChannelKind
	Files       []Attachment
	PinnedTo    []string
}

// Classify applies the type precedence: any attached file wins, then pin,
// then a mention marker in the text, then plain text.
func Classify(in Inbound) models.MessageType {
	switch {
	case len(in.Files) > 0:
		return models.FileMessage
	case len(in.PinnedTo) > 0:
		return models.PinMessage
	case strings.Contains(in.Text, mentionMarker):
		return models.MentionMessage
	default:
		return models.TextMessage
	}
}

// TrackableFiles filters attachments to the extension allow-list, preserving
// order and normalizing the type to lower case. Non-matching attachments are
// dropped silently.
func TrackableFiles(in Inbound) []models.FileRef {
	var files []models.FileRef
	for _, f := range in.Files {
		filetype := strings.ToLower(f.Filetype)
		if _, tracked := trackedFileTypes[filetype]; !tracked {
			continue
		}
		files = append(files, models.FileRef{
			ID:   f.ID,
			Name: f.Name,
			Type: filetype,
			URL:  f.URL,
		})
	}
	return files
}

// Service persists messages and answers windowed queries. The tagging step
// is an injected capability so storage logic stays independent of it.
type Service struct {
	store  storage.MessageStorage
	tagger tagger.Tagger
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store storage.MessageStorage, tagger tagger.Tagger, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		tagger: tagger,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Store classifies, tags and persists an inbound message, returning the
// stored form.
func (s *Service) Store(ctx context.Context, in Inbound) (*models.Message, error) {
	var tags []string
	if in.Text != "" {
		tags = s.tagger.Tag(ctx, in.Text)
	}

	msg := &models.Message{
		ID:          uuid.New().String(),
		ChannelID:   in.Channel,
		UserID:      in.User,
		RecipientID: in.Recipient,
		Text:        in.Text,
		Timestamp:   in.Timestamp,
		ThreadTS:    in.ThreadTS,
		Type:        Classify(in),
		Files:       TrackableFiles(in),
		Tags:        tags,
		Pinned:      len(in.PinnedTo) > 0,
		ChannelKind: in.ChannelKind,
		CreatedAt:   s.now(),
	}

	if err := s.store.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("message stored",
		zap.String("message_id", msg.ID),
		zap.String("channel_id", msg.ChannelID),
		zap.String("type", string(msg.Type)),
		zap.Int("files", len(msg.Files)))
	return msg, nil
}

// ChannelMessages returns channel messages stored within the last
// windowHours, newest first. The window lower bound is inclusive.
func (s *Service) ChannelMessages(ctx context.Context, channelID string, windowHours int) ([]*models.Message, error) {
	return s.store.MessagesByChannel(ctx, channelID, s.windowStart(windowHours))
}

// UserMessages returns messages sent by a user within the window.
func (s *Service) UserMessages(ctx context.Context, userID string, windowHours int) ([]*models.Message, error) {
	return s.store.MessagesByUser(ctx, userID, s.windowStart(windowHours))
}

// ReceivedDMs returns direct messages addressed to a user within the window.
func (s *Service) ReceivedDMs(ctx context.Context, userID string, windowHours int) ([]*models.Message, error) {
	return s.store.ReceivedDMs(ctx, userID, s.windowStart(windowHours))
}

// MarkPinned updates the pin-status flag on an already-stored message,
// addressed the way pin events identify it: channel plus platform timestamp.
func (s *Service) MarkPinned(ctx context.Context, channelID, timestamp string, pinned bool) error {
	return s.store.SetMessagePinned(ctx, channelID, timestamp, pinned)
}

func (s *Service) windowStart(windowHours int) time.Time {
	return s.now().Add(-time.Duration(windowHours) * time.Hour)
}
