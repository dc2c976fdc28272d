// Package persona holds the fixed prompting strategies. A persona is a system
// prompt paired with a subset of the tool registry; nothing else differs
// between them.
package persona

import (
	"fmt"
	"strings"

	"github.com/petasbytes/weather-agent/tools"
	"gopkg.in/yaml.v3"
)

type Persona struct {
	Key          string   `yaml:"key"`
	Name         string   `yaml:"name"`
	SystemPrompt string   `yaml:"system_prompt"`
	Tools        []string `yaml:"tools"`
	// MaxRounds caps dispatches per user turn. Zero means no cap.
	MaxRounds int `yaml:"max_rounds"`
}

// ToolNames lets a persona be passed to (*tools.Registry).SchemasFor.
func (p Persona) ToolNames() []string {
	out := make([]string, len(p.Tools))
	copy(out, p.Tools)
	return out
}

const (
	basicPrompt = "You are a helpful weather assistant."

	cotPrompt = "You are a helpful assistant that can answer questions about weather and perform calculations. " +
		"When responding to complex questions, follow these steps:\n" +
		"1. Think step-by-step about what information you need.\n" +
		"2. Break down the problem into smaller parts.\n" +
		"3. Use the appropriate tools to gather information (weather data, calculator).\n" +
		"4. Explain your reasoning clearly.\n" +
		"5. Provide a clear final answer."

	reactPrompt = "You are a helpful weather and information assistant that uses the ReAct approach to solve problems. " +
		"When responding to questions, follow this pattern:\n" +
		"1. Thought: Think about what you need to know and the steps to take.\n" +
		"2. Action: Use a tool to gather information (weather data, search, calculator).\n" +
		"3. Observation: Review the information obtained.\n" +
		"4. Repeat as needed until you have enough information.\n" +
		"5. Final Answer: Provide your clear final response based on all observations."
)

var (
	weatherTools = []string{tools.CurrentWeatherName, tools.WeatherForecastName}
	cotTools     = append(append([]string{}, weatherTools...), tools.CalculatorName)
	reactTools   = append(append([]string{}, cotTools...), tools.WebSearchName)
)

var (
	Basic = Persona{
		Key:          "basic",
		Name:         "Basic",
		SystemPrompt: basicPrompt,
		Tools:        weatherTools,
	}
	ChainOfThought = Persona{
		Key:          "cot",
		Name:         "Chain of Thought",
		SystemPrompt: cotPrompt,
		Tools:        cotTools,
		MaxRounds:    5,
	}
	ReAct = Persona{
		Key:          "react",
		Name:         "ReAct",
		SystemPrompt: reactPrompt,
		Tools:        reactTools,
		MaxRounds:    8,
	}
)

// All returns the personas in menu order.
func All() []Persona {
	return []Persona{Basic, ChainOfThought, ReAct}
}

// Lookup finds a persona by key, case-insensitively.
func Lookup(key string) (Persona, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, p := range All() {
		if p.Key == key {
			return p, true
		}
	}
	return Persona{}, false
}

// Keys lists the valid persona keys.
func Keys() []string {
	all := All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Key
	}
	return out
}

type catalogEntry struct {
	Persona `yaml:",inline"`
	Schemas []tools.ToolDefinition `yaml:"schemas"`
}

// Catalog renders every persona together with the tool schemas it exposes.
func Catalog(reg *tools.Registry) ([]byte, error) {
	entries := make([]catalogEntry, 0, 3)
	for _, p := range All() {
		defs, err := reg.SchemasFor(p)
		if err != nil {
			return nil, fmt.Errorf("persona %s: %w", p.Key, err)
		}
		entries = append(entries, catalogEntry{Persona: p, Schemas: defs})
	}
	out, err := yaml.Marshal(map[string]any{"personas": entries})
	if err != nil {
		return nil, fmt.Errorf("marshal persona catalog: %w", err)
	}
	return out, nil
}
