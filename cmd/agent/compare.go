package main

import (
	"fmt"
	"strings"

	"github.com/petasbytes/weather-agent/internal/evaluation"
	"github.com/petasbytes/weather-agent/internal/persona"
)

// CompareCmd runs one query through every persona and records ratings.
type CompareCmd struct {
	Query string `short:"q" long:"query" description:"query to evaluate (prompted for when empty)"`

	app *App
}

func (c *CompareCmd) Execute(_ []string) error {
	return c.app.compare(c.Query)
}

func (a *App) compare(query string) error {
	if err := a.setup(); err != nil {
		return err
	}
	if strings.TrimSpace(query) == "" {
		fmt.Fprint(a.Out, "Enter a single query for evaluation: ")
		line, err := a.readLine(a.ctx)
		if err != nil {
			return err
		}
		query = line
	}

	personas := persona.All()
	fmt.Fprintln(a.Out, "\n--- Comparative Evaluation ---")
	for _, p := range personas {
		fmt.Fprintf(a.Out, "\nRunning %s agent...\n", p.Name)
	}

	responses, err := evaluation.Compare(a.ctx, a.runner, a.registry, personas, query, evaluation.Options{
		Parallelism: a.cfg.CompareParallelism,
		Logger:      a.log.With().Str("component", "compare").Logger(),
	})
	if a.ctx.Err() != nil {
		return a.ctx.Err()
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("some personas did not answer cleanly")
		fmt.Fprintf(a.ErrOut, "warning: %v\n", err)
	}

	fmt.Fprintln(a.Out, "\n--- Agent Responses ---")
	for _, r := range responses {
		fmt.Fprintf(a.Out, "%s Agent Response: %s\n\n", r.Persona.Name, r.Text)
	}

	rec := evaluation.NewRecord(query, responses)
	for _, p := range personas {
		n, err := evaluation.ReadRating(a.Out, a.In, p.Name)
		if err != nil {
			return err
		}
		rec.Ratings[p.Key] = n
	}

	sink := evaluation.NewSink(a.cfg.ResultsFile)
	if err := sink.Append(rec); err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "\nEvaluation results saved to %s.\n", sink.Path)
	return nil
}
