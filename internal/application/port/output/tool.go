package output

import (
	"github.com/tmc/langchaingo/tools"

	"parts-assistant/internal/domain/entity"
)

// ToolPort is a callable tool exposed to the model. Call receives the raw
// JSON arguments string and must return the serialized result union
// ({success:true,...} or {success:false,error}); implementations recover
// every failure into that shape rather than returning an error.
type ToolPort interface {
	tools.Tool
	Parameters() map[string]interface{}
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name string) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
