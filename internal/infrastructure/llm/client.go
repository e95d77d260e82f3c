package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"blue-collar-portal/internal/config"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyCompletion = errors.New("empty completion")

// NewClient returns nil when no API key is configured.
func NewClient(cfg config.OpenAIConfig) *openai.Client {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil
	}
	oc := openai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		oc.BaseURL = strings.TrimRight(base, "/")
	}
	return openai.NewClientWithConfig(oc)
}

func Model(cfg config.OpenAIConfig) string {
	if m := strings.TrimSpace(cfg.Model); m != "" {
		return m
	}
	return openai.GPT4oMini
}

// ChatJSON sends a system+user prompt in JSON mode and decodes the reply into out.
func ChatJSON(ctx context.Context, client *openai.Client, model, system, user string, out any) error {
	if client == nil {
		return errors.New("nil openai client")
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}
