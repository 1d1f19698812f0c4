package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name string
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub " + s.name }
func (s *stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}

func (s *stubTool) Call(ctx context.Context, input string) (string, error) {
	return "{}", nil
}

func TestToolRegistry_RegisterAndGet(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "sqlQuery"})

	tool, ok := registry.Get("sqlQuery")
	require.True(t, ok)
	assert.Equal(t, "sqlQuery", tool.Name())

	_, ok = registry.Get("missing")
	assert.False(t, ok)
}

func TestToolRegistry_DefinitionsKeepRegistrationOrder(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "sqlQuery"})
	registry.Register(&stubTool{name: "trackDelivery"})
	registry.Register(&stubTool{name: "trackVehicle"})

	defs := registry.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "sqlQuery", defs[0].Name)
	assert.Equal(t, "trackDelivery", defs[1].Name)
	assert.Equal(t, "trackVehicle", defs[2].Name)
	assert.Equal(t, "stub trackDelivery", defs[1].Description)
}

func TestToolRegistry_ReRegisterReplacesWithoutDuplicating(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(&stubTool{name: "sqlQuery"})
	registry.Register(&stubTool{name: "sqlQuery"})

	assert.Len(t, registry.All(), 1)
	assert.Len(t, registry.Definitions(), 1)
}
