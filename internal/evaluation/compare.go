// Package evaluation runs one query through several personas and records
// human ratings of their answers.
package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/petasbytes/weather-agent/internal/persona"
	"github.com/petasbytes/weather-agent/internal/session"
	"github.com/petasbytes/weather-agent/internal/telemetry"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// NoResponse stands in for a persona that produced no text.
const NoResponse = "[No response]"

// Response is one persona's answer to the compared query: the trailing
// message after a single dispatch.
type Response struct {
	Persona persona.Persona
	Text    string
	// Final reports whether Text is an assistant answer rather than the
	// output of a tool the model asked for.
	Final bool
	Err   error
}

type Options struct {
	// Parallelism bounds concurrently running personas; <= 0 runs all at once.
	Parallelism int
	Logger      zerolog.Logger
}

// Compare dispatches query exactly once per persona, each against a fresh
// history holding only the persona's system prompt and the query.
// Responses come back in the order of personas. A persona that fails still
// gets a Response (with Err set and Text NoResponse when nothing was said);
// the returned error joins those failures.
func Compare(ctx context.Context, d session.Dispatcher, reg *tools.Registry, personas []persona.Persona, query string, opts Options) ([]Response, error) {
	type indexed struct {
		i int
		r Response
	}

	ctx, _ = telemetry.EnsureTurnID(ctx)
	telemetry.EmitLocalFeatures(ctx, query)
	p := pool.NewWithResults[indexed]().WithContext(ctx)
	if opts.Parallelism > 0 {
		p = p.WithMaxGoroutines(opts.Parallelism)
	}

	for i, pe := range personas {
		p.Go(func(ctx context.Context) (indexed, error) {
			// Each persona gets its own turn id under the shared compare turn.
			parent, _ := telemetry.TurnIDFromContext(ctx)
			ctx = telemetry.WithTurnID(ctx, parent+"-"+pe.Key)
			return indexed{i: i, r: runOne(ctx, d, reg, pe, query, opts.Logger)}, nil
		})
	}
	results, err := p.Wait()
	if err != nil {
		return nil, err
	}

	out := make([]Response, len(personas))
	for _, res := range results {
		out[res.i] = res.r
	}
	var errs []error
	for _, r := range out {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Persona.Name, r.Err))
		}
	}
	return out, errors.Join(errs...)
}

func runOne(ctx context.Context, d session.Dispatcher, reg *tools.Registry, p persona.Persona, query string, log zerolog.Logger) Response {
	resp := Response{Persona: p, Text: NoResponse}
	schemas, err := reg.SchemasFor(p)
	if err != nil {
		resp.Err = fmt.Errorf("persona %s: %w", p.Key, err)
		return resp
	}

	history := []memory.Message{memory.System(p.SystemPrompt), memory.User(query)}
	out, err := d.Dispatch(ctx, history, schemas, reg)
	resp.Err = err
	if len(out) > len(history) {
		last := out[len(out)-1]
		resp.Final = last.IsFinalAnswer()
		if last.Content != "" {
			resp.Text = last.Content
		}
	}
	log.Debug().
		Str("persona", p.Key).
		Int("appended", max(len(out)-len(history), 0)).
		Bool("final", resp.Final).
		Err(err).
		Msg("compare dispatch finished")
	return resp
}
