// Package digest assembles a bounded context (user profile, interests,
// matching channel and followed-user messages, received DMs) and delegates
// the actual summary text to an external completion call.
package digest

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/directory"
	"github.com/evpulse/pulse-bot/internal/messages"
	"github.com/evpulse/pulse-bot/internal/models"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// Summarizer turns a rendered prompt into summary text. Implementations call
// the external completion service; failures are surfaced, never retried.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Context is the ephemeral digest input, built fresh per request and
// discarded after prompt generation.
type Context struct {
	User      *models.User
	Interests []string
	Messages  []*models.Message
	DMs       []*models.Message
}

// Empty reports the "nothing to summarize" case: no channel or followed-user
// messages and no received DMs in the window.
func (c *Context) Empty() bool {
	return len(c.Messages) == 0 && len(c.DMs) == 0
}

type Composer struct {
	directory   *directory.Directory
	messages    *messages.Service
	summarizer  Summarizer
	windowHours int
	logger      *zap.Logger
}

func NewComposer(dir *directory.Directory, msgs *messages.Service, summarizer Summarizer, windowHours int, logger *zap.Logger) *Composer {
	return &Composer{
		directory:   dir,
		messages:    msgs,
		summarizer:  summarizer,
		windowHours: windowHours,
		logger:      logger,
	}
}

// BuildContext gathers the user's digest inputs: messages from every tracked
// channel and followed user within the lookback window, topic-filtered when
// the user declared interests, plus received DMs kept unfiltered.
func (c *Composer) BuildContext(ctx context.Context, userID string) (*Context, error) {
	user, err := c.directory.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var gathered []*models.Message
	for _, channel := range user.TrackedChannels {
		msgs, err := c.messages.ChannelMessages(ctx, channel, c.windowHours)
		if err != nil {
			return nil, err
		}
		gathered = append(gathered, msgs...)
	}
	for _, followed := range user.FollowedUsers {
		msgs, err := c.messages.UserMessages(ctx, followed, c.windowHours)
		if err != nil {
			return nil, err
		}
		gathered = append(gathered, msgs...)
	}

	if len(user.Interests) > 0 {
		gathered = filterByTopics(gathered, user.Interests)
	}

	dms, err := c.messages.ReceivedDMs(ctx, userID, c.windowHours)
	if err != nil {
		return nil, err
	}

	return &Context{
		User:      user,
		Interests: user.Interests,
		Messages:  gathered,
		DMs:       dms,
	}, nil
}

// Digest builds the full personalized summary. An empty context short-circuits
// to a canned line without calling the completion service.
func (c *Composer) Digest(ctx context.Context, userID string) (string, error) {
	dc, err := c.BuildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	if dc.Empty() {
		return c.noUpdatesLine(), nil
	}
	return c.summarize(ctx, dc)
}

// ChannelsDigest summarizes tracked-channel activity only.
func (c *Composer) ChannelsDigest(ctx context.Context, userID string) (string, error) {
	dc, err := c.BuildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	dc.DMs = nil
	if dc.Empty() {
		return c.noUpdatesLine(), nil
	}
	return c.summarize(ctx, dc)
}

// DMsDigest summarizes received direct messages only.
func (c *Composer) DMsDigest(ctx context.Context, userID string) (string, error) {
	dc, err := c.BuildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	dc.Messages = nil
	if dc.Empty() {
		return c.noUpdatesLine(), nil
	}
	return c.summarize(ctx, dc)
}

func (c *Composer) summarize(ctx context.Context, dc *Context) (string, error) {
	summary, err := c.summarizer.Summarize(ctx, RenderPrompt(dc))
	if err != nil {
		c.logger.Error("summarization call failed",
			zap.Error(err),
			zap.String("user_id", dc.User.ID))
		return "", apperrors.SummaryUnavailable(err)
	}
	return summary, nil
}

func (c *Composer) noUpdatesLine() string {
	return fmt.Sprintf("No new updates to summarize in the last %d hours.", c.windowHours)
}

// filterByTopics keeps messages whose text contains at least one interest
// topic as a case-insensitive substring.
func filterByTopics(msgs []*models.Message, topics []string) []*models.Message {
	var filtered []*models.Message
	for _, msg := range msgs {
		text := strings.ToLower(msg.Text)
		for _, topic := range topics {
			if strings.Contains(text, strings.ToLower(topic)) {
				filtered = append(filtered, msg)
				break
			}
		}
	}
	return filtered
}
