// internal/llm/openai.go

// Package llm provides the OpenAI-backed repair collaborator for the
// self-correction loop. The loop only sees correction.Repairer; this adapter
// owns prompt assembly, the chat-completion call, and first-choice
// extraction. Response parsing stays in internal/correction.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/parcelforge/parcelforge/internal/correction"
)

// Repair generation parameters. Low temperature keeps the collaborator close
// to the "change only what is necessary" instruction.
const (
	repairMaxTokens   = 2048
	repairTemperature = 0.2
)

// OpenAIRepairer implements correction.Repairer over the OpenAI chat API.
type OpenAIRepairer struct {
	client *openai.Client
	model  string
}

// NewOpenAIRepairer creates a repairer for the given model.
// The API key is required; key handling is environment-only (see
// internal/core/config).
func NewOpenAIRepairer(apiKey, model string) (*OpenAIRepairer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for the OpenAI repairer")
	}
	if model == "" {
		return nil, fmt.Errorf("model name is required for the OpenAI repairer")
	}
	return &OpenAIRepairer{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Repair requests a corrected template. The raw first-choice text is
// returned untouched; candidate extraction is the loop's job.
func (r *OpenAIRepairer) Repair(ctx context.Context, template, formattedErrors string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: correction.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: correction.BuildRepairPrompt(template, formattedErrors),
			},
		},
		MaxTokens:   repairMaxTokens,
		Temperature: repairTemperature,
	}

	resp, err := r.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
