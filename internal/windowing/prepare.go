package windowing

import "github.com/petasbytes/weather-agent/memory"

// Stats summarizes the result of window preparation.
//
// Fields:
// - Total: estimated tokens for the pinned system message plus included groups.
// - Budget: the input token budget used.
// - IncludedGroups: number of groups included.
// - SkippedGroups: total groups minus IncludedGroups.
// - OverBudgetNewest: true when the newest single group (with the system
// message) alone exceeds Budget.
type Stats struct {
	Total            int
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool
}

// PrepareSendWindow returns the messages to send, oldest to newest, fitting
// within budget according to c.
//
// Rules:
// - A leading system message is always kept and counted first.
// - The newest user message is always kept and counted next.
// - Whole groups are included scanning newest to oldest while total <= budget.
// - If the pinned messages or the newest group do not fit, the window is empty.
// - If budget <= 0, the window is empty (OverBudgetNewest set when any messages exist).
func PrepareSendWindow(msgs []memory.Message, budget int, c TokenCounter) ([]memory.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}

	var pinned []memory.Message
	rest := msgs
	if msgs[0].Role == memory.RoleSystem {
		pinned, rest = msgs[:1], msgs[1:]
	}
	groups := GroupBlocks(rest)

	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	userIdx := lastUser(rest)
	total := 0
	for _, m := range pinned {
		total += c.CountMessage(m)
	}
	if userIdx >= 0 {
		total += c.CountMessage(rest[userIdx])
	}
	if total > budget {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	included := 0
	startMsg := len(rest)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		if groups[gi].Start == userIdx {
			// Already paid for.
			included++
			startMsg = userIdx
			continue
		}
		cost := c.CountGroup(groups[gi], rest)
		if total+cost > budget {
			if gi == len(groups)-1 {
				return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
			}
			break
		}
		total += cost
		included++
		startMsg = groups[gi].Start
	}

	window := make([]memory.Message, 0, len(pinned)+1+len(rest)-startMsg)
	window = append(window, pinned...)
	if userIdx >= 0 && userIdx < startMsg {
		window = append(window, rest[userIdx])
		included++
	}
	window = append(window, rest[startMsg:]...)
	return window, Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
}

func lastUser(msgs []memory.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == memory.RoleUser {
			return i
		}
	}
	return -1
}
