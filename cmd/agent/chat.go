package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/petasbytes/weather-agent/internal/persona"
	"github.com/petasbytes/weather-agent/internal/session"
	"github.com/petasbytes/weather-agent/memory"
)

// ChatCmd runs a line-oriented conversation with one persona.
type ChatCmd struct {
	Persona string `short:"p" long:"persona" description:"persona to chat with" choice:"basic" choice:"cot" choice:"react" default:"basic"`

	app *App
}

func (c *ChatCmd) Execute(_ []string) error {
	p, ok := persona.Lookup(c.Persona)
	if !ok {
		return fmt.Errorf("unknown persona %q", c.Persona)
	}
	return c.app.chat(p)
}

func (a *App) chat(p persona.Persona) error {
	if err := a.setup(); err != nil {
		return err
	}
	s, err := session.New(p, a.runner, a.registry)
	if err != nil {
		return err
	}
	s.MaxRounds = a.cfg.MaxRounds
	s.Logger = a.log.With().Str("persona", p.Key).Logger()

	fmt.Fprintln(a.Out, "Weather Assistant: Hello! I can help you with weather information. Ask me about the weather anywhere!")
	fmt.Fprintln(a.Out, "(Type 'exit' to end the conversation)")
	fmt.Fprintln(a.Out)

	for {
		fmt.Fprint(a.Out, "You: ")
		line, err := a.readLine(a.ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(a.Out)
			return nil
		}
		if err != nil {
			return err
		}
		if session.IsExit(line) {
			fmt.Fprintln(a.Out, "\nWeather Assistant: Goodbye! Have a great day!")
			return nil
		}

		reply, err := s.Turn(a.ctx, line)
		if err != nil {
			if a.ctx.Err() != nil {
				return a.ctx.Err()
			}
			a.log.Error().Err(err).Int("rounds", reply.Rounds).Msg("turn failed")
			fmt.Fprintf(a.ErrOut, "error: %v\n", err)
		}
		if reply.Rounds > 0 {
			printTrailing(a.Out, reply.Message)
		}
	}
}

// printTrailing shows the last message of a turn: an answer, or the raw tool
// output when the turn stopped on one.
func printTrailing(w io.Writer, m memory.Message) {
	if m.Content == "" {
		return
	}
	switch m.Role {
	case memory.RoleAssistant:
		fmt.Fprintf(w, "\nWeather Assistant: %s\n\n", m.Content)
	case memory.RoleTool:
		fmt.Fprintf(w, "\nWeather Assistant (Tool Response): %s\n\n", m.Content)
	}
}
