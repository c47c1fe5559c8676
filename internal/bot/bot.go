// Package bot is the Slack-facing glue: it receives socket-mode events,
// slash commands and block actions, and forwards them to the directory,
// message and digest services. No business logic lives here; every handler
// turns service failures into a degraded text response so one outage never
// breaks another user's request.
package bot

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/digest"
	"github.com/evpulse/pulse-bot/internal/directory"
	"github.com/evpulse/pulse-bot/internal/messages"
	"github.com/evpulse/pulse-bot/internal/models"
)

type Bot struct {
	client    *slack.Client
	socket    *socketmode.Client
	directory *directory.Directory
	messages  *messages.Service
	digest    *digest.Composer
	logger    *zap.Logger
}

func New(botToken, appToken string, dir *directory.Directory, msgs *messages.Service, composer *digest.Composer, logger *zap.Logger) (*Bot, error) {
	if botToken == "" || appToken == "" {
		return nil, fmt.Errorf("slack bot and app tokens are required")
	}

	client := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	if _, err := client.AuthTest(); err != nil {
		return nil, fmt.Errorf("failed to authenticate with slack: %w", err)
	}

	return &Bot{
		client:    client,
		socket:    socketmode.New(client),
		directory: dir,
		messages:  msgs,
		digest:    composer,
		logger:    logger,
	}, nil
}

// Start runs the socket-mode event loop until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	go b.dispatch(ctx)
	return b.socket.RunContext(ctx)
}

func (b *Bot) dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-b.socket.Events:
			if !ok {
				return
			}
			switch evt.Type {
			case socketmode.EventTypeConnected:
				b.logger.Info("connected to slack in socket mode")
			case socketmode.EventTypeConnectionError:
				b.logger.Warn("slack connection error, retrying")
			case socketmode.EventTypeEventsAPI:
				apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)
				go b.handleEvent(ctx, apiEvent)
			case socketmode.EventTypeSlashCommand:
				cmd, ok := evt.Data.(slack.SlashCommand)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)
				go b.handleSlashCommand(ctx, cmd)
			case socketmode.EventTypeInteractive:
				callback, ok := evt.Data.(slack.InteractionCallback)
				if !ok {
					continue
				}
				b.socket.Ack(*evt.Request)
				go b.handleInteraction(ctx, callback)
			}
		}
	}
}

func (b *Bot) handleEvent(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		b.handleMessage(ctx, ev)
	case *slackevents.AppMentionEvent:
		b.handleMention(ev)
	case *slackevents.PinAddedEvent:
		b.handlePin(ctx, ev.Item, true)
	case *slackevents.PinRemovedEvent:
		b.handlePin(ctx, ev.Item, false)
	case *slackevents.MemberJoinedChannelEvent:
		b.logger.Debug("member joined channel",
			zap.String("user_id", ev.User),
			zap.String("channel_id", ev.Channel))
	case *slackevents.MemberLeftChannelEvent:
		b.logger.Debug("member left channel",
			zap.String("user_id", ev.User),
			zap.String("channel_id", ev.Channel))
	}
}

func (b *Bot) handleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	if ev.BotID != "" || ev.SubType == "bot_message" {
		return
	}

	in := messages.Inbound{
		Channel:     ev.Channel,
		User:        ev.User,
		Text:        ev.Text,
		Timestamp:   ev.TimeStamp,
		ThreadTS:    ev.ThreadTimeStamp,
		ChannelKind: channelKind(ev.ChannelType),
	}
	for _, f := range ev.Files {
		in.Files = append(in.Files, messages.Attachment{
			ID:       f.ID,
			Name:     f.Name,
			Filetype: f.Filetype,
			URL:      f.URLPrivate,
		})
	}
	if in.ChannelKind == models.DirectMessage {
		in.Recipient = b.dmRecipient(ev)
	}

	msg, err := b.messages.Store(ctx, in)
	if err != nil {
		b.logger.Error("failed to store message",
			zap.Error(err),
			zap.String("channel_id", ev.Channel),
			zap.String("user_id", ev.User))
		return
	}
	b.logger.Debug("message stored", zap.String("message_id", msg.ID))

	if ev.User != "" {
		if err := b.directory.RecordActivity(ctx, ev.User, msg.CreatedAt); err != nil {
			b.logger.Error("failed to update user activity",
				zap.Error(err),
				zap.String("user_id", ev.User))
		}
	}
}

func (b *Bot) handleMention(ev *slackevents.AppMentionEvent) {
	_, _, err := b.client.PostMessage(ev.Channel,
		slack.MsgOptionText(fmt.Sprintf("👋 Hi <@%s>! Try `/pulse` to see your profile or `/pulse help` for commands.", ev.User), false))
	if err != nil {
		b.logger.Error("failed to respond to mention", zap.Error(err))
	}
}

func (b *Bot) handlePin(ctx context.Context, item slackevents.Item, pinned bool) {
	if item.Channel == "" || item.Timestamp == "" {
		return
	}
	if err := b.messages.MarkPinned(ctx, item.Channel, item.Timestamp, pinned); err != nil {
		b.logger.Debug("pin update skipped",
			zap.Error(err),
			zap.String("channel_id", item.Channel))
	}
}

// dmRecipient resolves the counterpart of a direct-message channel. Best
// effort: an empty recipient only means the message will not show up in
// received-DM digests.
func (b *Bot) dmRecipient(ev *slackevents.MessageEvent) string {
	info, err := b.client.GetConversationInfo(&slack.GetConversationInfoInput{
		ChannelID: ev.Channel,
	})
	if err != nil {
		b.logger.Debug("failed to resolve DM recipient", zap.Error(err))
		return ""
	}
	if info.User != "" && info.User != ev.User {
		return info.User
	}
	return ""
}

func channelKind(channelType string) models.ChannelKind {
	switch channelType {
	case "im":
		return models.DirectMessage
	case "group", "mpim":
		return models.PrivateChannel
	default:
		return models.PublicChannel
	}
}
