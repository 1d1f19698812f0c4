package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/sashabaranov/go-openai"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

var _ output.LLMPort = (*OpenRouterAdapter)(nil)

type OpenRouterAdapter struct {
	client *openai.Client
	model  string
	logger output.LoggerPort
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Retry   RetryPolicy
	Logger  output.LoggerPort
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: "https://openrouter.ai/api/v1",
		Retry:   DefaultRetryPolicy(),
	}
}

func NewOpenRouterAdapter(cfg Config) *OpenRouterAdapter {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = &http.Client{
		Transport: newRetryTransport(http.DefaultTransport, cfg.Retry, cfg.Logger),
	}

	return &OpenRouterAdapter{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// isRateLimited reports whether err is the provider's 429 surfaced after the
// retry budget ran out.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// wrapStreamErr translates provider errors into the port's vocabulary: a
// final 429 carries output.ErrRateLimited, everything else stays opaque.
func wrapStreamErr(err error) error {
	if isRateLimited(err) {
		return fmt.Errorf("%w: %v", output.ErrRateLimited, err)
	}
	return fmt.Errorf("chat stream failed: %w", err)
}

func (a *OpenRouterAdapter) ChatStream(ctx context.Context, req output.ChatRequest, onDelta func(string)) (*output.ChatResponse, error) {
	messages := convertMessages(req.Messages)
	tools := convertTools(req.Tools)

	if a.logger != nil {
		a.logger.Debug("Creating chat completion stream",
			"model", a.model,
			"messagesCount", len(messages),
			"toolsCount", len(tools),
			"temperature", req.Temperature)
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Tools:       tools,
		ToolChoice:  "auto",
		Temperature: req.Temperature,
		Stream:      true,
	})
	if err != nil {
		if a.logger != nil {
			a.logger.Error("Failed to create stream", "error", err)
		}
		return nil, wrapStreamErr(err)
	}
	defer stream.Close()

	var textContent string
	toolCallsMap := make(map[int]*entity.ToolCall)
	chunkCount := 0

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context canceled: %w", ctx.Err())
		default:
		}

		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if a.logger != nil {
					a.logger.Debug("Stream completed", "chunks", chunkCount, "textLen", len(textContent))
				}
				break
			}
			if a.logger != nil {
				a.logger.Error("Stream recv error", "error", err, "chunks", chunkCount)
			}
			return nil, fmt.Errorf("stream recv error: %w", err)
		}

		chunkCount++

		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			textContent += delta.Content
			if onDelta != nil {
				onDelta(delta.Content)
			}
		}

		for _, tc := range delta.ToolCalls {
			if tc.Index == nil {
				continue
			}
			idx := *tc.Index
			if existing, ok := toolCallsMap[idx]; ok {
				existing.Arguments += tc.Function.Arguments
				if tc.Function.Name != "" {
					existing.Name = tc.Function.Name
				}
				if tc.ID != "" {
					existing.ID = tc.ID
				}
			} else {
				toolCallsMap[idx] = &entity.ToolCall{
					ID:        tc.ID,
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				}
			}
		}
	}

	finalMessage := entity.Message{
		Role:    entity.RoleAssistant,
		Content: textContent,
	}

	indices := make([]int, 0, len(toolCallsMap))
	for idx := range toolCallsMap {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		finalMessage.ToolCalls = append(finalMessage.ToolCalls, *toolCallsMap[idx])
	}

	return &output.ChatResponse{Message: finalMessage}, nil
}

func convertMessages(messages []entity.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}

		if msg.ToolCallID != "" {
			oaiMsg.ToolCallID = msg.ToolCallID
		}
		if msg.Name != "" {
			oaiMsg.Name = msg.Name
		}

		for _, tc := range msg.ToolCalls {
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}

		result = append(result, oaiMsg)
	}
	return result
}

func convertTools(tools []entity.ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		result = append(result, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return result
}
