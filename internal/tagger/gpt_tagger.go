package tagger

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type gptTagResponse struct {
	Tags []string `json:"tags"`
}

// GPTTagger asks a chat-completion model for message tags. Failures degrade
// to no tags; message storage never depends on the tagging call succeeding.
type GPTTagger struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	maxTags     int
	logger      *zap.Logger
}

func NewGPTTagger(apiKey, model string, maxTokens int, temperature float64, maxTags int, logger *zap.Logger) *GPTTagger {
	return &GPTTagger{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		maxTags:     maxTags,
		logger:      logger,
	}
}

func (t *GPTTagger) Tag(ctx context.Context, text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	prompt := fmt.Sprintf(`Extract up to %d short topic tags from the following engineering team message.
Return the response as a JSON object with this structure:
{
    "tags": ["tag1", "tag2", ...]
}

Message: %s`, t.maxTags, text)

	resp, err := t.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: t.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   t.maxTokens,
			Temperature: float32(t.temperature),
		},
	)
	if err != nil {
		t.logger.Warn("tagging call failed, storing message untagged", zap.Error(err))
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	var parsed gptTagResponse
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.logger.Warn("unparseable tagging response", zap.Error(err), zap.String("content", content))
		return nil
	}

	tags := parsed.Tags
	if t.maxTags > 0 && len(tags) > t.maxTags {
		tags = tags[:t.maxTags]
	}
	return tags
}
