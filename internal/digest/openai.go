package digest

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const systemInstruction = "You are a helpful assistant that summarizes Slack messages for EV engineering team members."

// OpenAISummarizer delegates prompt text to the chat-completion API.
type OpenAISummarizer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewOpenAISummarizer(apiKey, model string, maxTokens int, temperature float64) *OpenAISummarizer {
	return &OpenAISummarizer{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemInstruction,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   s.maxTokens,
			Temperature: float32(s.temperature),
		},
	)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
