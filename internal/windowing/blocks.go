// Package windowing trims a conversation to an input-token budget before it
// is sent, without separating a tool call from its results.
package windowing

import "github.com/petasbytes/weather-agent/memory"

// manualCallID is the id carried by results of calls parsed from reply text.
const manualCallID = "manual"

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the input slice.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that keep tool calls next to
// their results.
//
// A pair is an assistant message followed by the run of tool messages that
// answer it: ids taken from the assistant's tool calls, or the "manual" id
// when the assistant carried no structured calls. Calls that produced no
// result do not break the pair. Any other message is a singleton.
func GroupBlocks(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		if msgs[i].Role == memory.RoleAssistant {
			end := answeredRun(msgs, i)
			if end > i+1 {
				groups = append(groups, Group{Kind: GroupPair, Start: i, End: end})
				i = end
				continue
			}
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// answeredRun returns the exclusive end of the tool messages answering the
// assistant message at i. It returns i+1 when none follow.
func answeredRun(msgs []memory.Message, i int) int {
	ids := callIDs(msgs[i])
	j := i + 1
	for j < len(msgs) && msgs[j].Role == memory.RoleTool {
		if _, ok := ids[msgs[j].ToolCallID]; !ok {
			break
		}
		// Each id answers once.
		delete(ids, msgs[j].ToolCallID)
		j++
	}
	return j
}

func callIDs(m memory.Message) map[string]struct{} {
	ids := make(map[string]struct{}, len(m.ToolCalls))
	for _, c := range m.ToolCalls {
		if c.ID != "" {
			ids[c.ID] = struct{}{}
		}
	}
	if len(m.ToolCalls) == 0 {
		ids[manualCallID] = struct{}{}
	}
	return ids
}
