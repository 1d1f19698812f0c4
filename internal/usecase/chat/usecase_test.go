package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parts-assistant/internal/application/port/input"
	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/application/service"
	"parts-assistant/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any) {}
func (nopLogger) Info(msg string, args ...any)  {}
func (nopLogger) Warn(msg string, args ...any)  {}
func (nopLogger) Error(msg string, args ...any) {}
func (l nopLogger) WithField(key string, value any) output.LoggerPort {
	return l
}
func (nopLogger) Close() error { return nil }

type fakeLLM struct {
	responses []*output.ChatResponse
	errs      []error
	requests  []output.ChatRequest
}

func (f *fakeLLM) ChatStream(ctx context.Context, req output.ChatRequest, onDelta func(string)) (*output.ChatResponse, error) {
	idx := len(f.requests)
	f.requests = append(f.requests, req)
	if idx < len(f.errs) && f.errs[idx] != nil {
		return nil, f.errs[idx]
	}
	resp := f.responses[idx]
	if onDelta != nil && resp.Message.Content != "" {
		onDelta(resp.Message.Content)
	}
	return resp, nil
}

type fakeSettings struct {
	value string
	err   error
}

func (f *fakeSettings) GetSetting(ctx context.Context, key string) (*entity.SystemSetting, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.value == "" {
		return nil, nil
	}
	return &entity.SystemSetting{Key: key, Value: f.value}, nil
}

func (f *fakeSettings) UpsertSetting(ctx context.Context, key, value, updatedBy string) (*entity.SystemSetting, error) {
	return nil, errors.New("not implemented")
}

type fakeTool struct {
	name   string
	result string
	err    error
	panics bool
	inputs []string
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "test tool" }
func (f *fakeTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}

func (f *fakeTool) Call(ctx context.Context, input string) (string, error) {
	f.inputs = append(f.inputs, input)
	if f.panics {
		panic("boom")
	}
	return f.result, f.err
}

func textResponse(content string) *output.ChatResponse {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: content}}
}

func toolCallResponse(id, name, args string) *output.ChatResponse {
	return &output.ChatResponse{Message: entity.Message{
		Role:      entity.RoleAssistant,
		ToolCalls: []entity.ToolCall{{ID: id, Name: name, Arguments: args}},
	}}
}

func collectEvents(t *testing.T, uc *UseCase, history []entity.Message) ([]input.StreamEvent, error) {
	t.Helper()
	var events []input.StreamEvent
	err := uc.Stream(context.Background(), history, func(ev input.StreamEvent) {
		events = append(events, ev)
	})
	return events, err
}

func userMessage(content string) []entity.Message {
	return []entity.Message{{Role: entity.RoleUser, Content: content}}
}

func TestStream_PlainAnswer(t *testing.T) {
	llm := &fakeLLM{responses: []*output.ChatResponse{textResponse("Hello!")}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{}, nopLogger{}, "default prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, input.EventTextDelta, events[0].Type)
	assert.Equal(t, "Hello!", events[0].Content)
	assert.Equal(t, input.EventDone, events[1].Type)

	require.Len(t, llm.requests, 1)
	require.NotEmpty(t, llm.requests[0].Messages)
	assert.Equal(t, entity.RoleSystem, llm.requests[0].Messages[0].Role)
	assert.Equal(t, "default prompt", llm.requests[0].Messages[0].Content)
}

func TestStream_CustomSystemPromptFromSettings(t *testing.T) {
	llm := &fakeLLM{responses: []*output.ChatResponse{textResponse("ok")}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{value: "custom prompt"}, nopLogger{}, "default prompt")

	_, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err)
	assert.Equal(t, "custom prompt", llm.requests[0].Messages[0].Content)
}

func TestStream_SettingsFailureFallsBackToDefault(t *testing.T) {
	llm := &fakeLLM{responses: []*output.ChatResponse{textResponse("ok")}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{err: errors.New("db down")}, nopLogger{}, "default prompt")

	_, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err, "a broken settings store must not break the conversation")
	assert.Equal(t, "default prompt", llm.requests[0].Messages[0].Content)
}

func TestStream_ToolCallRoundTrip(t *testing.T) {
	registry := service.NewToolRegistry()
	tool := &fakeTool{name: "trackVehicle", result: `{"success":true,"results":[]}`}
	registry.Register(tool)

	llm := &fakeLLM{responses: []*output.ChatResponse{
		toolCallResponse("call_1", "trackVehicle", `{"vehicle_names":["Van 1"]}`),
		textResponse("Van 1 is on Orchard Rd."),
	}}
	uc := New(llm, registry, &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("where is Van 1?"))

	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, input.EventToolCall, events[0].Type)
	assert.Equal(t, "call_1", events[0].ToolCallID)
	assert.Equal(t, "trackVehicle", events[0].ToolName)
	assert.JSONEq(t, `{"vehicle_names":["Van 1"]}`, string(events[0].Args))
	assert.Equal(t, input.EventToolResult, events[1].Type)
	assert.JSONEq(t, `{"success":true,"results":[]}`, string(events[1].Result))
	assert.Equal(t, input.EventTextDelta, events[2].Type)
	assert.Equal(t, input.EventDone, events[3].Type)

	assert.Equal(t, []string{`{"vehicle_names":["Van 1"]}`}, tool.inputs)

	// The second model call sees the assistant tool call and the tool result.
	require.Len(t, llm.requests, 2)
	followUp := llm.requests[1].Messages
	last := followUp[len(followUp)-1]
	assert.Equal(t, entity.RoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Equal(t, `{"success":true,"results":[]}`, last.Content)
}

func TestStream_UnknownToolBecomesErrorResult(t *testing.T) {
	llm := &fakeLLM{responses: []*output.ChatResponse{
		toolCallResponse("call_1", "nosuchtool", `{}`),
		textResponse("Sorry, I cannot do that."),
	}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err)

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(events[1].Result, &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "nosuchtool")
}

func TestStream_ToolErrorStaysInsideResultUnion(t *testing.T) {
	registry := service.NewToolRegistry()
	registry.Register(&fakeTool{name: "sqlQuery", err: errors.New("unexpected failure")})

	llm := &fakeLLM{responses: []*output.ChatResponse{
		toolCallResponse("call_1", "sqlQuery", `{"query":"SELECT 1"}`),
		textResponse("done"),
	}}
	uc := New(llm, registry, &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err, "a failing tool must not abort the stream")

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(events[1].Result, &result))
	assert.False(t, result.Success)
	assert.Equal(t, "unexpected failure", result.Error)
}

func TestStream_ToolPanicIsContained(t *testing.T) {
	registry := service.NewToolRegistry()
	registry.Register(&fakeTool{name: "sqlQuery", panics: true})

	llm := &fakeLLM{responses: []*output.ChatResponse{
		toolCallResponse("call_1", "sqlQuery", `{}`),
		textResponse("done"),
	}}
	uc := New(llm, registry, &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err)

	var result struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(events[1].Result, &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "sqlQuery")
}

func TestStream_RateLimitBecomesFriendlyMessage(t *testing.T) {
	llm := &fakeLLM{errs: []error{fmt.Errorf("%w: 429 from provider", output.ErrRateLimited)}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err, "an exhausted rate limit ends the stream gracefully")
	require.Len(t, events, 1)
	assert.Equal(t, input.EventError, events[0].Type)
	assert.Equal(t, rateLimitedMessage, events[0].Content)
}

func TestStream_ModelFailureReturnsError(t *testing.T) {
	llm := &fakeLLM{errs: []error{errors.New("connection reset")}}
	uc := New(llm, service.NewToolRegistry(), &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.Error(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, input.EventError, events[0].Type)
	assert.Equal(t, unavailableMessage, events[0].Content)
}

func TestStream_RoundLimit(t *testing.T) {
	registry := service.NewToolRegistry()
	registry.Register(&fakeTool{name: "sqlQuery", result: `{"success":true}`})

	responses := make([]*output.ChatResponse, maxRounds)
	for i := range responses {
		responses[i] = toolCallResponse("call", "sqlQuery", `{}`)
	}
	llm := &fakeLLM{responses: responses}
	uc := New(llm, registry, &fakeSettings{}, nopLogger{}, "prompt")

	events, err := collectEvents(t, uc, userMessage("hi"))

	require.NoError(t, err)
	assert.Len(t, llm.requests, maxRounds)
	last := events[len(events)-1]
	assert.Equal(t, input.EventError, last.Type)
	assert.Contains(t, last.Content, "too many tool calls")
}
