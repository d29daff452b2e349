package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wxyzh/docx-mcp-server/internal/blocks"
)

// WithArray adds a array property to the tool schema.
func WithArray(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return withProperty(name, "array", opts)
}

// WithObject adds an object property that accepts arbitrary keys.
func WithObject(name string, opts ...mcp.PropertyOption) mcp.ToolOption {
	return withProperty(name, "object", append([]mcp.PropertyOption{func(schema map[string]any) {
		schema["additionalProperties"] = true
	}}, opts...))
}

// ContentItems describes the items of a content-block array.
func ContentItems() mcp.PropertyOption {
	return func(schema map[string]any) {
		schema["items"] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":            map[string]any{"type": "string", "enum": []string{"heading", "paragraph", "table"}},
				"text":            map[string]any{"type": "string"},
				"level":           map[string]any{"type": "integer", "minimum": 0, "maximum": 9},
				"style":           map[string]any{"type": "string"},
				"formatting":      map[string]any{"type": "object"},
				"run_formatting":  map[string]any{"type": "object"},
				"rows":            map[string]any{"type": "integer", "minimum": 1, "maximum": blocks.MaxTableRows},
				"cols":            map[string]any{"type": "integer", "minimum": 1, "maximum": blocks.MaxTableCols},
				"data":            map[string]any{"type": "string", "description": "Comma-separated cell values, row by row"},
				"cell_formatting": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
			},
			"required": []string{"type"},
		}
	}
}

func withProperty(name, typ string, opts []mcp.PropertyOption) mcp.ToolOption {
	return func(t *mcp.Tool) {
		schema := map[string]any{
			"type": typ,
		}

		for _, opt := range opts {
			opt(schema)
		}

		// Remove required from property schema and add to InputSchema.required
		if required, ok := schema["required"].(bool); ok && required {
			delete(schema, "required")
			t.InputSchema.Required = append(t.InputSchema.Required, name)
		}

		if t.InputSchema.Properties == nil {
			t.InputSchema.Properties = map[string]any{}
		}
		t.InputSchema.Properties[name] = schema
	}
}
