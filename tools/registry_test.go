package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/petasbytes/weather-agent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type names []string

func (n names) ToolNames() []string { return n }

func echoTool(name string) tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        name,
		Description: "echo",
		InputSchema: tools.GenerateSchema[struct {
			Text string `json:"text"`
		}](),
		Function: func(_ context.Context, args map[string]any) string {
			s, _ := args["text"].(string)
			return s
		},
	}
}

func TestRegistry_DefaultToolNames(t *testing.T) {
	r, err := tools.Default(tools.NewWeatherClient("", "k"))
	require.NoError(t, err)
	want := []string{"get_current_weather", "get_weather_forecast", "calculator", "web_search"}
	assert.Equal(t, want, r.Names())
}

func TestRegistry_DuplicateName(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	err := r.Register(echoTool("echo"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrDuplicateTool))
	var dup *tools.DuplicateNameError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "echo", dup.Name)
}

func TestRegistry_RejectsInvalidDefinitions(t *testing.T) {
	r := tools.NewRegistry()

	noName := echoTool("")
	assert.ErrorIs(t, r.Register(noName), tools.ErrInvalidTool)

	noFunc := echoTool("nofunc")
	noFunc.Function = nil
	assert.ErrorIs(t, r.Register(noFunc), tools.ErrInvalidTool)

	notObject := echoTool("scalar")
	notObject.InputSchema = map[string]any{"type": "string"}
	assert.ErrorIs(t, r.Register(notObject), tools.ErrInvalidTool)

	broken := echoTool("broken")
	broken.InputSchema = map[string]any{"type": "object", "required": "location"}
	assert.ErrorIs(t, r.Register(broken), tools.ErrInvalidTool)

	assert.Empty(t, r.Names())
}

func TestRegistry_ResolveMissingIsNotAnError(t *testing.T) {
	r := tools.NewRegistry()
	require.NoError(t, r.Register(echoTool("echo")))

	fn, ok := r.Resolve("echo")
	require.True(t, ok)
	assert.Equal(t, "hi", fn(context.Background(), map[string]any{"text": "hi"}))

	fn, ok = r.Resolve("nope")
	assert.False(t, ok)
	assert.Nil(t, fn)
}

func TestRegistry_SchemasForKeepsToolsetOrder(t *testing.T) {
	r := tools.NewRegistry()
	for _, n := range []string{"a", "b", "c"} {
		require.NoError(t, r.Register(echoTool(n)))
	}

	defs, err := r.SchemasFor(names{"c", "a"})
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "c", defs[0].Name)
	assert.Equal(t, "a", defs[1].Name)

	_, err = r.SchemasFor(names{"a", "missing"})
	assert.ErrorIs(t, err, tools.ErrUnknownTool)
}

func TestRegistry_NilSchemaBecomesEmptyObject(t *testing.T) {
	r := tools.NewRegistry()
	def := echoTool("bare")
	def.InputSchema = nil
	require.NoError(t, r.Register(def))

	defs, err := r.SchemasFor(names{"bare"})
	require.NoError(t, err)
	assert.Equal(t, "object", defs[0].InputSchema["type"])
}
