package runner_test

import (
	"context"
	"errors"
	"sync"

	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
)

// scriptedEndpoint replays canned replies in order and records each request.
type scriptedEndpoint struct {
	mu       sync.Mutex
	replies  []memory.Message
	err      error
	requests []provider.Request
}

func (s *scriptedEndpoint) Complete(_ context.Context, req provider.Request) (memory.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return memory.Message{}, s.err
	}
	if len(s.replies) == 0 {
		return memory.Message{}, errors.New("script exhausted")
	}
	r := s.replies[0]
	s.replies = s.replies[1:]
	return r, nil
}

func reply(msgs ...memory.Message) *scriptedEndpoint {
	return &scriptedEndpoint{replies: msgs}
}

// fakeWeather echoes the requested location in the shape of the real tool.
func fakeWeather(_ context.Context, args map[string]any) string {
	loc, _ := args["location"].(string)
	return `{"location": "` + loc + `", "temperature_c": 18, "condition": "Partly cloudy"}`
}

func testRegistry() *tools.Registry {
	reg := tools.NewRegistry()
	if err := reg.Register(tools.ToolDefinition{
		Name:        tools.CurrentWeatherName,
		Description: "Get the current weather in a given location",
		InputSchema: tools.CurrentWeatherInputSchema,
		Function:    fakeWeather,
	}); err != nil {
		panic(err)
	}
	if err := reg.Register(tools.CalculatorDefinition); err != nil {
		panic(err)
	}
	return reg
}

func baseHistory(user string) []memory.Message {
	return []memory.Message{
		memory.System("You are a helpful weather assistant."),
		memory.User(user),
	}
}
