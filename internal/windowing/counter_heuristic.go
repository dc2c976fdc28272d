package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/weather-agent/memory"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m memory.Message) int
	CountGroup(g Group, all []memory.Message) int
}

// HeuristicCounter is the default deterministic estimator: runes of the
// content, the tool name, and every call's name and arguments, plus a fixed
// per-message overhead.
type HeuristicCounter struct{}

// Fixed per-message overhead; changing it requires updating the guard test.
const messageOverhead = 4

func (HeuristicCounter) CountMessage(m memory.Message) int {
	n := utf8.RuneCountInString(m.Content) + utf8.RuneCountInString(m.Name)
	for _, c := range m.ToolCalls {
		n += utf8.RuneCountInString(c.Name) + utf8.RuneCountInString(c.Arguments)
	}
	return n + messageOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
