package runner

import (
	"regexp"

	"github.com/petasbytes/weather-agent/memory"
)

// ManualCallID is the call id given to requests parsed from reply text.
const ManualCallID = "manual"

// CallParser extracts tool call requests from an assistant reply.
type CallParser interface {
	// Name identifies the parser in logs and telemetry.
	Name() string
	Parse(reply memory.Message) []memory.ToolCall
	// SkipUnknown reports whether calls to unregistered tools are dropped
	// silently rather than reported.
	SkipUnknown() bool
}

// DefaultParsers is the detection order used by New.
func DefaultParsers() []CallParser {
	return []CallParser{StructuredParser{}, TextualParser{}}
}

// StructuredParser reads the endpoint's native tool call field.
type StructuredParser struct{}

func (StructuredParser) Name() string      { return "structured" }
func (StructuredParser) SkipUnknown() bool { return false }

func (StructuredParser) Parse(reply memory.Message) []memory.ToolCall {
	if len(reply.ToolCalls) == 0 {
		return nil
	}
	out := make([]memory.ToolCall, len(reply.ToolCalls))
	copy(out, reply.ToolCalls)
	return out
}

var textualCallPattern = regexp.MustCompile(`<request><function name="(.*?)" arguments='(.*?)' /></request>`)

// TextualParser finds a call written into the reply text as
//
//	<request><function name="NAME" arguments='JSON' /></request>
//
// Only the first occurrence is honoured. It is best effort: unknown tools are
// skipped.
type TextualParser struct{}

func (TextualParser) Name() string      { return "textual" }
func (TextualParser) SkipUnknown() bool { return true }

func (TextualParser) Parse(reply memory.Message) []memory.ToolCall {
	m := textualCallPattern.FindStringSubmatch(reply.Content)
	if m == nil {
		return nil
	}
	return []memory.ToolCall{{ID: ManualCallID, Name: m[1], Arguments: m[2]}}
}

// detect runs the chain and returns the first non-empty result.
func detect(parsers []CallParser, reply memory.Message) ([]memory.ToolCall, CallParser) {
	for _, p := range parsers {
		if calls := p.Parse(reply); len(calls) > 0 {
			return calls, p
		}
	}
	return nil, nil
}
