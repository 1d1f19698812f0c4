package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"parts-assistant/internal/application/port/input"
	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

const (
	// maxRounds caps the number of model turns (and therefore tool-call
	// batches) per request.
	maxRounds = 6

	defaultTemperature = 0.0
)

const rateLimitedMessage = "The assistant is handling too many requests right now. Please try again in a moment."
const unavailableMessage = "The assistant is temporarily unavailable. Please try again."

var _ input.ChatService = (*UseCase)(nil)

// UseCase is the conversation orchestrator: it resolves the system prompt,
// attaches the tool registry, streams the model's answer and runs tool calls
// synchronously, feeding each result back into the conversation.
type UseCase struct {
	llm           output.LLMPort
	tools         output.ToolRegistry
	settings      output.SettingsStore
	logger        output.LoggerPort
	defaultPrompt string
}

func New(
	llm output.LLMPort,
	tools output.ToolRegistry,
	settings output.SettingsStore,
	logger output.LoggerPort,
	defaultPrompt string,
) *UseCase {
	return &UseCase{
		llm:           llm,
		tools:         tools,
		settings:      settings,
		logger:        logger,
		defaultPrompt: defaultPrompt,
	}
}

func (uc *UseCase) Stream(ctx context.Context, history []entity.Message, emit func(input.StreamEvent)) error {
	messages := make([]entity.Message, 0, len(history)+1)
	messages = append(messages, entity.Message{
		Role:    entity.RoleSystem,
		Content: uc.resolveSystemPrompt(ctx),
	})
	messages = append(messages, history...)

	toolDefs := uc.tools.Definitions()

	for round := 1; round <= maxRounds; round++ {
		uc.logger.Debug("conversation round", "round", round, "messages", len(messages))

		resp, err := uc.llm.ChatStream(ctx, output.ChatRequest{
			Messages:    messages,
			Tools:       toolDefs,
			Temperature: defaultTemperature,
		}, func(delta string) {
			emit(input.StreamEvent{Type: input.EventTextDelta, Content: delta})
		})
		if err != nil {
			if errors.Is(err, output.ErrRateLimited) {
				uc.logger.Warn("model rate limited after retries", "round", round)
				emit(input.StreamEvent{Type: input.EventError, Content: rateLimitedMessage})
				return nil
			}
			// Generic message to the caller; details stay in the log.
			uc.logger.Error("model request failed", "round", round, "error", err.Error())
			emit(input.StreamEvent{Type: input.EventError, Content: unavailableMessage})
			return fmt.Errorf("model request failed: %w", err)
		}

		messages = append(messages, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			emit(input.StreamEvent{Type: input.EventDone})
			return nil
		}

		for _, tc := range resp.Message.ToolCalls {
			emit(input.StreamEvent{
				Type:       input.EventToolCall,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Args:       rawJSON(tc.Arguments),
			})

			result := uc.executeTool(ctx, tc)

			emit(input.StreamEvent{
				Type:       input.EventToolResult,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
				Result:     rawJSON(result),
			})

			messages = append(messages, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: tc.ID,
				Name:       tc.Name,
				Content:    result,
			})
		}
	}

	uc.logger.Warn("conversation exceeded round limit", "maxRounds", maxRounds)
	emit(input.StreamEvent{Type: input.EventError, Content: "The conversation needed too many tool calls. Please rephrase your question."})
	return nil
}

// resolveSystemPrompt is a read-through fetch on every conversation; the
// default prompt covers every failure mode, so this never raises.
func (uc *UseCase) resolveSystemPrompt(ctx context.Context) string {
	setting, err := uc.settings.GetSetting(ctx, entity.SettingSystemPrompt)
	if err != nil {
		uc.logger.Warn("system prompt load failed, using default", "error", err.Error())
		return uc.defaultPrompt
	}
	if setting == nil || strings.TrimSpace(setting.Value) == "" {
		return uc.defaultPrompt
	}
	return setting.Value
}

// executeTool always produces the uniform result union; an unknown tool, a
// tool error or even a tool panic all become {success:false,error}.
func (uc *UseCase) executeTool(ctx context.Context, tc entity.ToolCall) (result string) {
	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("tool panicked", "tool", tc.Name, "panic", fmt.Sprint(r))
			result = errorResult(fmt.Sprintf("tool %s failed unexpectedly", tc.Name))
		}
	}()

	tool, ok := uc.tools.Get(tc.Name)
	if !ok {
		uc.logger.Warn("unknown tool called", "tool", tc.Name)
		return errorResult(fmt.Sprintf("unknown tool %q", tc.Name))
	}

	args := tc.Arguments
	if strings.TrimSpace(args) == "" {
		args = "{}"
	}

	uc.logger.Info("executing tool", "tool", tc.Name)
	out, err := tool.Call(ctx, args)
	if err != nil {
		uc.logger.Error("tool returned error", "tool", tc.Name, "error", err.Error())
		return errorResult(err.Error())
	}
	return out
}

func errorResult(msg string) string {
	data, _ := json.Marshal(map[string]interface{}{
		"success": false,
		"error":   msg,
	})
	return string(data)
}

// rawJSON passes valid JSON through untouched and quotes anything else so
// stream events always serialize cleanly.
func rawJSON(s string) json.RawMessage {
	if s == "" {
		return json.RawMessage("{}")
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	quoted, _ := json.Marshal(s)
	return quoted
}
