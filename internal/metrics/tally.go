package metrics

import "github.com/petasbytes/weather-agent/memory"

// ManualCallID marks tool results produced from calls parsed out of reply text.
const ManualCallID = "manual"

// ToolTally counts tool result messages in a stretch of history.
type ToolTally struct {
	Total  int
	Manual int
	ByTool map[string]int
}

// TallyToolMessages counts role=tool messages in msgs by tool name.
func TallyToolMessages(msgs []memory.Message) ToolTally {
	t := ToolTally{ByTool: map[string]int{}}
	for _, m := range msgs {
		if m.Role != memory.RoleTool {
			continue
		}
		t.Total++
		t.ByTool[m.Name]++
		if m.ToolCallID == ManualCallID {
			t.Manual++
		}
	}
	return t
}
