package tools

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Func runs a tool with already-parsed named arguments and returns its
// serialized result.
type Func func(ctx context.Context, args map[string]any) string

type ToolDefinition struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	InputSchema map[string]any `yaml:"parameters"`
	Function    Func           `yaml:"-"`
}

// errorResult formats a tool-level failure the way the model expects to see it.
func errorResult(format string, args ...any) string {
	return "Error: " + fmt.Sprintf(format, args...)
}

// decodeArgs maps loosely typed JSON arguments onto a tool input struct.
// Weak typing lets "3" and 3.0 both land in an int field.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(args)
}
