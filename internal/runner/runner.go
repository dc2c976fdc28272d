package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/petasbytes/weather-agent/internal/metrics"
	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/internal/telemetry"
	"github.com/petasbytes/weather-agent/internal/windowing"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/rs/zerolog"
)

// Resolver looks tools up by name. *tools.Registry satisfies it.
type Resolver interface {
	Resolve(name string) (tools.Func, bool)
}

// Runner holds what stays fixed across dispatches. It keeps no conversation
// state, so one Runner can serve any number of independent histories.
type Runner struct {
	Endpoint provider.Endpoint
	Model    string
	Parsers  []CallParser
	// TokenBudget bounds the estimated size of each request. Zero or less
	// sends the whole history.
	TokenBudget int
	Counter     windowing.TokenCounter
	Logger      zerolog.Logger
}

func New(ep provider.Endpoint, model string) *Runner {
	return &Runner{
		Endpoint: ep,
		Model:    model,
		Parsers:  DefaultParsers(),
		Counter:  windowing.HeuristicCounter{},
		Logger:   zerolog.Nop(),
	}
}

// Dispatch performs one exchange with the endpoint and returns history
// extended by the assistant reply and one tool message per executed call.
// The input slice is never modified.
//
// Calls that could not be executed are skipped and reported together as
// *CallError values joined into the returned error; the extended history is
// returned alongside it. Endpoint failures return a nil history.
func (r *Runner) Dispatch(ctx context.Context, history []memory.Message, schemas []tools.ToolDefinition, reg Resolver) ([]memory.Message, error) {
	if err := memory.Validate(history); err != nil {
		return nil, err
	}
	ctx, turnID := telemetry.EnsureTurnID(ctx)

	window, err := r.window(turnID, history)
	if err != nil {
		return nil, err
	}

	req := provider.Request{Model: r.Model, Messages: window, Tools: schemas}
	telemetry.PersistPayload(turnID, "request", req)
	reply, err := r.Endpoint.Complete(ctx, req)
	if err != nil {
		r.Logger.Debug().Err(err).Str("turn_id", turnID).Msg("endpoint call failed")
		return nil, err
	}
	telemetry.PersistPayload(turnID, "response", reply)

	out := make([]memory.Message, len(history), len(history)+1+len(reply.ToolCalls))
	copy(out, history)
	out = append(out, reply)

	calls, parser := detect(r.parsers(), reply)
	var errs []error
	for _, call := range calls {
		msg, ok, err := r.execCall(ctx, reg, call, parser)
		if err != nil {
			r.Logger.Warn().Err(err).Str("turn_id", turnID).Msg("tool call abandoned")
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, msg)
		}
	}

	source := ""
	if parser != nil {
		source = parser.Name()
	}
	tally := metrics.TallyToolMessages(out[len(history)+1:])
	telemetry.Emit("dispatch", map[string]any{
		"turn_id":        turnID,
		"model":          r.Model,
		"history_in":     len(history),
		"history_out":    len(out),
		"calls_detected": len(calls),
		"calls_executed": tally.Total,
		"calls_failed":   len(errs),
		"source":         source,
	})
	r.Logger.Debug().
		Str("turn_id", turnID).
		Int("calls", len(calls)).
		Int("executed", tally.Total).
		Str("source", source).
		Msg("dispatch complete")

	return out, errors.Join(errs...)
}

func (r *Runner) parsers() []CallParser {
	if len(r.Parsers) == 0 {
		return DefaultParsers()
	}
	return r.Parsers
}

// window applies the token budget, if any.
func (r *Runner) window(turnID string, history []memory.Message) ([]memory.Message, error) {
	if r.TokenBudget <= 0 {
		return history, nil
	}
	counter := r.Counter
	if counter == nil {
		counter = windowing.HeuristicCounter{}
	}
	window, stats := windowing.PrepareSendWindow(history, r.TokenBudget, counter)
	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":            turnID,
		"model":              r.Model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	r.Logger.Debug().
		Int("budget", stats.Budget).
		Int("est_total", stats.Total).
		Int("groups_in", stats.IncludedGroups).
		Int("groups_skip", stats.SkippedGroups).
		Msg("window prepared")
	if stats.OverBudgetNewest {
		return nil, fmt.Errorf("%w (budget %d)", ErrOverBudget, r.TokenBudget)
	}
	return window, nil
}
