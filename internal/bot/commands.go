package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/storage"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

const welcomeText = "👋 Welcome! Please run `/pulse setup` to get started."

func helpText() string {
	return `🚀 *Pulse Bot Commands*

• ` + "`/pulse`" + ` - Your complete profile
• ` + "`/pulse update`" + ` - AI-powered channel & DM summaries
• ` + "`/pulse channels`" + ` - Channel activity only
• ` + "`/pulse dms`" + ` - Direct message summaries only
• ` + "`/pulse follow <user>`" + ` / ` + "`/pulse track <channel>`" + ` - Tune your digest
• ` + "`/pulse setup`" + ` - First-time setup
• ` + "`/pulse config`" + ` - Manage settings
• ` + "`/pulse reset`" + ` - Delete your profile
• ` + "`/pulse help`" + ` - This help`
}

func (b *Bot) handleSlashCommand(ctx context.Context, cmd slack.SlashCommand) {
	args := strings.Fields(cmd.Text)
	subcommand := ""
	if len(args) > 0 {
		subcommand = strings.ToLower(args[0])
	}
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	b.logger.Info("slash command",
		zap.String("user_id", cmd.UserID),
		zap.String("subcommand", subcommand))

	respond := func(text string) {
		b.respondText(ctx, cmd.ResponseURL, text)
	}

	switch subcommand {
	case "", "me", "profile":
		respond(b.profileText(ctx, cmd.UserID))
	case "setup":
		b.respondBlocks(ctx, cmd.ResponseURL, setupBlocks())
	case "help":
		respond(helpText())
	case "reset":
		if err := b.directory.Reset(ctx, cmd.UserID); err != nil {
			b.logger.Error("failed to reset profile", zap.Error(err), zap.String("user_id", cmd.UserID))
			respond("❌ Could not delete your profile right now. Please try again.")
			return
		}
		respond("✅ Profile deleted! Run `/pulse setup` to start fresh.")
	case "update", "summary":
		respond("🔄 Generating your pulse update... This may take a moment.")
		b.respondDigest(ctx, cmd, b.digest.Digest, "📊 *Your Pulse Update*")
	case "channels":
		respond("🔄 Getting channel updates...")
		b.respondDigest(ctx, cmd, b.digest.ChannelsDigest, "🏢 *Channel Activity Summary*")
	case "dms":
		respond("🔄 Analyzing your direct messages...")
		b.respondDigest(ctx, cmd, b.digest.DMsDigest, "💬 *Direct Messages Summary*")
	case "track":
		respond(b.trackChannel(ctx, cmd.UserID, arg))
	case "untrack":
		respond(b.untrackChannel(ctx, cmd.UserID, arg))
	case "follow":
		respond(b.followUser(ctx, cmd.UserID, arg))
	case "config":
		blocks, ok := b.configBlocks(ctx, cmd.UserID)
		if !ok {
			respond("Please run `/pulse setup` first.")
			return
		}
		b.respondBlocks(ctx, cmd.ResponseURL, blocks)
	default:
		respond(fmt.Sprintf("Unknown command: `%s`. Use `/pulse help` for available commands.", subcommand))
	}
}

type digestFunc func(ctx context.Context, userID string) (string, error)

func (b *Bot) respondDigest(ctx context.Context, cmd slack.SlashCommand, run digestFunc, header string) {
	summary, err := run(ctx, cmd.UserID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			b.respondText(ctx, cmd.ResponseURL, welcomeText)
		case apperrors.IsCode(err, apperrors.CodeSummaryUnavailable):
			b.respondText(ctx, cmd.ResponseURL, "⚠️ Summary unavailable right now. Please try again in a few minutes.")
		default:
			b.logger.Error("digest failed", zap.Error(err), zap.String("user_id", cmd.UserID))
			b.respondText(ctx, cmd.ResponseURL, "❌ Something went wrong generating your update.")
		}
		return
	}

	b.respondText(ctx, cmd.ResponseURL, fmt.Sprintf("%s\n*%s*\n\n%s",
		header, time.Now().Format("January 2, 2006 at 15:04"), summary))
}

func (b *Bot) profileText(ctx context.Context, userID string) string {
	user, err := b.directory.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return welcomeText
		}
		b.logger.Error("failed to load profile", zap.Error(err), zap.String("user_id", userID))
		return "❌ Could not load your profile right now. Please try again."
	}

	setup := "❌ Incomplete"
	if user.OnboardingCompleted {
		setup = "✅ Complete"
	}
	lastActive := "Never"
	if !user.LastActive.IsZero() {
		lastActive = user.LastActive.Format("January 2, 2006 at 15:04")
	}

	return fmt.Sprintf(`📊 *Your Pulse Profile*

👤 *Personal Info*
• Name: %s
• Role: %s
• Setup: %s

📺 *Tracking*
• Channels: %s
• Interests: %s
• Messages Sent: %d
• Last Active: %s

⚙️ *Quick Actions*
• `+"`/pulse setup`"+` - Update your profile
• `+"`/pulse config`"+` - Change settings
• `+"`/pulse help`"+` - View all commands`,
		orNotSet(user.RealName),
		orNotSet(user.Role),
		setup,
		channelList(user.TrackedChannels),
		listOrNone(user.Interests),
		user.MessageCount,
		lastActive)
}

func (b *Bot) trackChannel(ctx context.Context, userID, channel string) string {
	if channel == "" {
		return "Usage: `/pulse track <channel>`"
	}
	channel = strings.TrimPrefix(channel, "#")

	err := b.directory.AddChannel(ctx, userID, channel)
	switch {
	case err == nil:
		return fmt.Sprintf("✅ Now tracking #%s", channel)
	case errors.Is(err, storage.ErrNotFound):
		return welcomeText
	case apperrors.IsCode(err, apperrors.CodeAccessDenied):
		return fmt.Sprintf("🔒 Your role does not have access to #%s.", channel)
	default:
		b.logger.Error("failed to track channel", zap.Error(err), zap.String("user_id", userID))
		return "❌ Could not update your channels right now. Please try again."
	}
}

func (b *Bot) untrackChannel(ctx context.Context, userID, channel string) string {
	if channel == "" {
		return "Usage: `/pulse untrack <channel>`"
	}
	channel = strings.TrimPrefix(channel, "#")

	if err := b.directory.RemoveChannel(ctx, userID, channel); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return welcomeText
		}
		b.logger.Error("failed to untrack channel", zap.Error(err), zap.String("user_id", userID))
		return "❌ Could not update your channels right now. Please try again."
	}
	return fmt.Sprintf("✅ Stopped tracking #%s", channel)
}

func (b *Bot) followUser(ctx context.Context, userID, target string) string {
	if target == "" {
		return "Usage: `/pulse follow <user>`"
	}
	target = parseUserMention(target)

	user, err := b.directory.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return welcomeText
		}
		b.logger.Error("failed to load profile", zap.Error(err), zap.String("user_id", userID))
		return "❌ Could not update your follows right now. Please try again."
	}

	followed := user.FollowedUsers
	for _, f := range followed {
		if f == target {
			return fmt.Sprintf("You already follow <@%s>.", target)
		}
	}
	followed = append(followed, target)

	if err := b.directory.CreateOrUpdate(ctx, userID, map[string]any{
		"followed_users": followed,
	}); err != nil {
		b.logger.Error("failed to follow user", zap.Error(err), zap.String("user_id", userID))
		return "❌ Could not update your follows right now. Please try again."
	}
	return fmt.Sprintf("✅ Now following <@%s>. Their updates will feed your digest.", target)
}

// parseUserMention unwraps Slack's <@U123|name> escape, tolerating a bare id.
func parseUserMention(s string) string {
	s = strings.TrimPrefix(s, "<@")
	s = strings.TrimSuffix(s, ">")
	if i := strings.IndexByte(s, '|'); i >= 0 {
		s = s[:i]
	}
	return s
}

func (b *Bot) respondText(ctx context.Context, responseURL, text string) {
	err := slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		Text:         text,
		ResponseType: slack.ResponseTypeEphemeral,
	})
	if err != nil {
		b.logger.Error("failed to post response", zap.Error(err))
	}
}

func (b *Bot) respondBlocks(ctx context.Context, responseURL string, blocks []slack.Block) {
	err := slack.PostWebhookContext(ctx, responseURL, &slack.WebhookMessage{
		Blocks:       &slack.Blocks{BlockSet: blocks},
		ResponseType: slack.ResponseTypeEphemeral,
	})
	if err != nil {
		b.logger.Error("failed to post block response", zap.Error(err))
	}
}

func orNotSet(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func channelList(channels []string) string {
	if len(channels) == 0 {
		return "None"
	}
	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = "#" + c
	}
	return strings.Join(names, ", ")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}
