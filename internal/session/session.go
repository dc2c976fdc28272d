// Package session drives one persona's conversation: it owns the history and
// decides how many dispatch steps a user turn may take.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petasbytes/weather-agent/internal/persona"
	"github.com/petasbytes/weather-agent/internal/runner"
	"github.com/petasbytes/weather-agent/internal/telemetry"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/rs/zerolog"
)

// ErrRoundLimit is returned by Turn when the persona's round cap is reached
// while the model still has tool results to read.
var ErrRoundLimit = errors.New("round limit reached")

// Dispatcher is the single-step exchange a Session loops over.
type Dispatcher interface {
	Dispatch(ctx context.Context, history []memory.Message, schemas []tools.ToolDefinition, reg runner.Resolver) ([]memory.Message, error)
}

// Reply is the outcome of one user turn.
type Reply struct {
	// Message is the trailing message of the history after the turn.
	Message memory.Message
	// Rounds is the number of dispatches performed.
	Rounds int
	// Final reports whether Message is an assistant answer.
	Final bool
}

type Session struct {
	Persona  persona.Persona
	Runner   Dispatcher
	Registry *tools.Registry
	// MaxRounds overrides Persona.MaxRounds when positive.
	MaxRounds int
	Logger    zerolog.Logger

	conv    *memory.Conversation
	schemas []tools.ToolDefinition
}

// New starts a conversation seeded with the persona's system prompt.
func New(p persona.Persona, d Dispatcher, reg *tools.Registry) (*Session, error) {
	schemas, err := reg.SchemasFor(p)
	if err != nil {
		return nil, fmt.Errorf("persona %s: %w", p.Key, err)
	}
	return &Session{
		Persona:  p,
		Runner:   d,
		Registry: reg,
		Logger:   zerolog.Nop(),
		conv:     memory.NewConversation(p.SystemPrompt),
		schemas:  schemas,
	}, nil
}

// History returns a copy of the conversation so far.
func (s *Session) History() []memory.Message { return s.conv.Messages() }

// RoundCap is the effective dispatch limit per turn; zero means unlimited.
func (s *Session) RoundCap() int {
	if s.MaxRounds > 0 {
		return s.MaxRounds
	}
	return s.Persona.MaxRounds
}

// Turn appends the user's text and dispatches until the trailing message is
// no longer a tool result or the round cap is hit.
//
// Call errors from a dispatch are returned with the reply describing the
// history as extended so far; the history keeps whatever was appended. When
// the very first dispatch fails at the endpoint, the user's message is not
// kept either, so the next turn does not send two user messages in a row.
func (s *Session) Turn(ctx context.Context, text string) (Reply, error) {
	ctx, turnID := telemetry.EnsureTurnID(ctx)
	telemetry.EmitLocalFeatures(ctx, text)
	history := append(s.conv.Messages(), memory.User(text))

	limit := s.RoundCap()
	rounds := 0
	for {
		if err := ctx.Err(); err != nil {
			return s.reply(rounds), err
		}
		next, err := s.Runner.Dispatch(ctx, history, s.schemas, s.Registry)
		if next == nil {
			// Endpoint failure; nothing from this round is kept.
			return s.reply(rounds), err
		}
		rounds++
		if rerr := s.conv.Replace(next); rerr != nil {
			return s.reply(rounds), rerr
		}
		history = s.conv.Messages()
		if err != nil {
			return s.reply(rounds), err
		}

		last := s.conv.Last()
		if last.Role != memory.RoleTool {
			return s.reply(rounds), nil
		}
		if limit > 0 && rounds >= limit {
			s.Logger.Info().Str("turn_id", turnID).Str("persona", s.Persona.Key).Int("rounds", rounds).Msg("round cap reached")
			return s.reply(rounds), fmt.Errorf("%w (%d)", ErrRoundLimit, limit)
		}
		s.Logger.Debug().Str("turn_id", turnID).Int("round", rounds).Msg("tool results pending, dispatching again")
	}
}

func (s *Session) reply(rounds int) Reply {
	last := s.conv.Last()
	return Reply{Message: last, Rounds: rounds, Final: last.IsFinalAnswer()}
}

// IsExit reports whether the user asked to end the conversation.
func IsExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit", "bye":
		return true
	}
	return false
}
