// Package provider adapts remote chat-completion APIs to a single
// Endpoint: an ordered history and tool declarations in, one assistant
// message out. SDK retries are disabled; failures are reported once.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
)

const (
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"

	DefaultOpenAIBaseURL = "https://api.groq.com/openai/v1"
	DefaultMaxTokens     = 1024

	// manualCallID marks results of calls parsed from reply text. The remote
	// side never issued such an id, so these results travel as user text.
	manualCallID = "manual"
)

var (
	ErrUnknownProvider = errors.New("unknown provider")
	ErrEmptyResponse   = errors.New("endpoint returned no message")
)

// Request is everything the endpoint needs for one completion.
type Request struct {
	Model    string                 `json:"model"`
	Messages []memory.Message       `json:"messages"`
	Tools    []tools.ToolDefinition `json:"-"`
}

// Endpoint is a remote completion function.
type Endpoint interface {
	Complete(ctx context.Context, req Request) (memory.Message, error)
}

// Options configures an Endpoint.
type Options struct {
	Provider   string
	APIKey     string
	BaseURL    string
	MaxTokens  int
	HTTPClient *http.Client
}

// New builds the Endpoint selected by opts.Provider (openai when empty).
func New(opts Options) (Endpoint, error) {
	switch strings.ToLower(opts.Provider) {
	case "", NameOpenAI:
		return NewOpenAI(opts), nil
	case NameAnthropic:
		return NewAnthropic(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, opts.Provider)
	}
}

func maxTokens(n int) int64 {
	if n <= 0 {
		return DefaultMaxTokens
	}
	return int64(n)
}

// manualResultText renders a fallback tool result as plain text.
func manualResultText(m memory.Message) string {
	return fmt.Sprintf("Result of %s: %s", m.Name, m.Content)
}

// argsOrEmpty returns a JSON object literal for a possibly blank argument blob.
func argsOrEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return "{}"
	}
	return s
}

// answeredCalls returns the tool calls of history[i] that have a result in
// the run of tool messages following it. Calls abandoned during dispatch
// have none, and both APIs reject a call without a result.
func answeredCalls(history []memory.Message, i int) []memory.ToolCall {
	calls := history[i].ToolCalls
	if len(calls) == 0 {
		return nil
	}
	answered := make(map[string]bool)
	for j := i + 1; j < len(history) && history[j].Role == memory.RoleTool; j++ {
		answered[history[j].ToolCallID] = true
	}
	out := make([]memory.ToolCall, 0, len(calls))
	for _, c := range calls {
		if answered[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
