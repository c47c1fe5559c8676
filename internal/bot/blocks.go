package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/evpulse/pulse-bot/internal/roles"
	"github.com/evpulse/pulse-bot/internal/storage"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

// Interactive-element action ids.
const (
	actionSetupRole     = "setup_role"
	actionCompleteSetup = "complete_setup"
	actionConfigRole    = "config_role"
	actionUpdateRole    = "update_role"
)

func roleOptions() []*slack.OptionBlockObject {
	var options []*slack.OptionBlockObject
	for _, id := range roles.Available() {
		role, err := roles.Describe(id)
		if err != nil {
			continue
		}
		options = append(options, slack.NewOptionBlockObject(id,
			slack.NewTextBlockObject(slack.PlainTextType, role.Name, false, false), nil))
	}
	return options
}

func roleSelect(actionID string) *slack.SelectBlockElement {
	return slack.NewOptionsSelectBlockElement(slack.OptTypeStatic,
		slack.NewTextBlockObject(slack.PlainTextType, "Select your role", false, false),
		actionID, roleOptions()...)
}

func setupBlocks() []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "🚀 Welcome to Pulse Bot!", true, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*What's your engineering role?*", false, false),
			nil, slack.NewAccessory(roleSelect(actionSetupRole))),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"📺 *Channels you'll be tracking:*\n\n• Your role's default channels\n• Anything you add with `/pulse track`", false, false),
			nil, nil),
		slack.NewActionBlock("setup_actions",
			slack.NewButtonBlockElement(actionCompleteSetup, "complete",
				slack.NewTextBlockObject(slack.PlainTextType, "Complete Setup", false, false)).
				WithStyle(slack.StylePrimary)),
	}
}

func (b *Bot) configBlocks(ctx context.Context, userID string) ([]slack.Block, bool) {
	user, err := b.directory.Get(ctx, userID)
	if err != nil {
		return nil, false
	}

	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "⚙️ Your Configuration", true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Role:* %s", orNotSet(user.Role)), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Tracked Channels:* %s", channelList(user.TrackedChannels)), false, false),
			slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*Interests:* %s", listOrNone(user.Interests)), false, false),
		}, nil),
		slack.NewActionBlock("config_actions",
			slack.NewButtonBlockElement(actionConfigRole, "change_role",
				slack.NewTextBlockObject(slack.PlainTextType, "Update Role", false, false))),
	}, true
}

func changeRoleBlocks() []slack.Block {
	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "🔧 Update Your Role", true, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Select your engineering role:*", false, false),
			nil, slack.NewAccessory(roleSelect(actionUpdateRole))),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"💡 *Note:* If you have not customized your channels, your role's defaults will be applied.", false, false),
			nil, nil),
	}
}

func (b *Bot) handleInteraction(ctx context.Context, callback slack.InteractionCallback) {
	if callback.Type != slack.InteractionTypeBlockActions || len(callback.ActionCallback.BlockActions) == 0 {
		return
	}

	action := callback.ActionCallback.BlockActions[0]
	userID := callback.User.ID

	b.logger.Info("block action",
		zap.String("user_id", userID),
		zap.String("action_id", action.ActionID))

	switch action.ActionID {
	case actionSetupRole, actionUpdateRole:
		b.assignRoleAction(ctx, callback.ResponseURL, userID, action.SelectedOption.Value)
	case actionCompleteSetup:
		b.completeSetupAction(ctx, callback.ResponseURL, userID)
	case actionConfigRole:
		b.respondBlocks(ctx, callback.ResponseURL, changeRoleBlocks())
	}
}

func (b *Bot) assignRoleAction(ctx context.Context, responseURL, userID, roleID string) {
	if err := b.directory.AssignRole(ctx, userID, roleID); err != nil {
		if apperrors.IsCode(err, apperrors.CodeUnknownRole) {
			b.respondText(ctx, responseURL, fmt.Sprintf("❌ Unknown role: %s", roleID))
			return
		}
		b.logger.Error("failed to assign role", zap.Error(err), zap.String("user_id", userID))
		b.respondText(ctx, responseURL, "❌ Could not update your role right now. Please try again.")
		return
	}

	user, err := b.directory.Get(ctx, userID)
	if err != nil {
		b.logger.Error("failed to reload profile", zap.Error(err), zap.String("user_id", userID))
		b.respondText(ctx, responseURL, fmt.Sprintf("✅ Role set to *%s*", roleID))
		return
	}

	b.respondText(ctx, responseURL, fmt.Sprintf("✅ Role set to *%s*\n📺 You'll now track: %s",
		roleID, channelList(user.TrackedChannels)))
}

func (b *Bot) completeSetupAction(ctx context.Context, responseURL, userID string) {
	user, err := b.directory.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			b.respondText(ctx, responseURL, "❌ Please select your role first before completing setup.")
			return
		}
		b.logger.Error("failed to load profile", zap.Error(err), zap.String("user_id", userID))
		b.respondText(ctx, responseURL, "❌ Setup failed. Please try again.")
		return
	}
	if user.Role == "" {
		b.respondText(ctx, responseURL, "❌ Please select your role first before completing setup.")
		return
	}

	if err := b.directory.CreateOrUpdate(ctx, userID, map[string]any{
		"onboarding_completed": true,
	}); err != nil {
		b.logger.Error("failed to complete setup", zap.Error(err), zap.String("user_id", userID))
		b.respondText(ctx, responseURL, "❌ Setup failed. Please try again.")
		return
	}

	b.respondText(ctx, responseURL, fmt.Sprintf(`🎉 *Setup Complete!*

Your profile is configured:
• Role: %s
• Tracking: %s

Try `+"`/pulse`"+` to see your profile!`,
		user.Role, channelList(user.TrackedChannels)))
}
