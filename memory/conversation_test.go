package memory_test

import (
	"encoding/json"
	"testing"

	"github.com/petasbytes/weather-agent/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, memory.Validate(nil), memory.ErrEmptyHistory)
	assert.ErrorIs(t, memory.Validate([]memory.Message{memory.User("hi")}), memory.ErrMissingSystem)
	assert.NoError(t, memory.Validate([]memory.Message{memory.System("s"), memory.User("hi")}))
}

func TestConversation_AppendAndLast(t *testing.T) {
	c := memory.NewConversation("You are a helpful weather assistant.")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, memory.RoleSystem, c.Last().Role)

	c.Append(memory.User("What's the weather in Paris?"))
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "What's the weather in Paris?", c.Last().Content)
}

func TestConversation_MessagesIsCopy(t *testing.T) {
	c := memory.NewConversation("sys")
	msgs := c.Messages()
	msgs[0].Content = "changed"
	assert.Equal(t, "sys", c.Messages()[0].Content)
}

func TestConversation_Replace(t *testing.T) {
	c := memory.NewConversation("sys")
	c.Append(memory.User("q"))

	ext := append(c.Messages(), memory.Assistant("a"))
	require.NoError(t, c.Replace(ext))
	assert.Equal(t, 3, c.Len())

	assert.Error(t, c.Replace([]memory.Message{memory.System("sys")}), "shrinking must be rejected")
	assert.ErrorIs(t, c.Replace([]memory.Message{memory.User("q")}), memory.ErrMissingSystem)
}

func TestMessage_IsFinalAnswer(t *testing.T) {
	cases := []struct {
		name string
		msg  memory.Message
		want bool
	}{
		{"assistant_text", memory.Assistant("sunny"), true},
		{"assistant_empty", memory.Assistant(""), false},
		{"assistant_with_call", memory.Assistant("thinking", memory.ToolCall{ID: "c1", Name: "calculator"}), false},
		{"tool", memory.ToolResult("c1", "calculator", "4"), false},
		{"user", memory.User("hi"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.msg.IsFinalAnswer())
		})
	}
}

func TestMessage_JSONShape(t *testing.T) {
	b, err := json.Marshal(memory.ToolResult("call_1", "get_current_weather", `{"location": "Paris"}`))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "tool", m["role"])
	assert.Equal(t, "call_1", m["tool_call_id"])
	assert.Equal(t, "get_current_weather", m["name"])
	_, hasCalls := m["tool_calls"]
	assert.False(t, hasCalls, "empty tool_calls must be omitted")
}
