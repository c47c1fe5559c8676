package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evpulse/pulse-bot/internal/models"
)

func TestParseUserMention(t *testing.T) {
	assert.Equal(t, "U123", parseUserMention("<@U123>"))
	assert.Equal(t, "U123", parseUserMention("<@U123|dana>"))
	assert.Equal(t, "U123", parseUserMention("U123"))
}

func TestChannelKind(t *testing.T) {
	assert.Equal(t, models.DirectMessage, channelKind("im"))
	assert.Equal(t, models.PrivateChannel, channelKind("group"))
	assert.Equal(t, models.PrivateChannel, channelKind("mpim"))
	assert.Equal(t, models.PublicChannel, channelKind("channel"))
	assert.Equal(t, models.PublicChannel, channelKind(""))
}

func TestChannelList(t *testing.T) {
	assert.Equal(t, "None", channelList(nil))
	assert.Equal(t, "#software, #firmware", channelList([]string{"software", "firmware"}))
}
