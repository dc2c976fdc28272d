package evaluation_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/petasbytes/weather-agent/internal/evaluation"
	"github.com/petasbytes/weather-agent/internal/persona"
	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/internal/runner"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// personaEndpoint answers according to the system prompt it is sent, so
// concurrent conversations get deterministic replies.
type personaEndpoint struct {
	mu       sync.Mutex
	byPrompt map[string][]memory.Message
	failFor  string
}

func (e *personaEndpoint) Complete(_ context.Context, req provider.Request) (memory.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	sys := req.Messages[0].Content
	if sys == e.failFor {
		return memory.Message{}, errors.New("rate limited")
	}
	queue := e.byPrompt[sys]
	if len(queue) == 0 {
		return memory.Message{}, errors.New("no scripted reply")
	}
	e.byPrompt[sys] = queue[1:]
	return queue[0], nil
}

func registry(t *testing.T) *tools.Registry {
	t.Helper()
	reg, err := tools.Default(tools.NewWeatherClient("http://127.0.0.1:1", "k"))
	require.NoError(t, err)
	return reg
}

func TestCompare_ResponsesInPersonaOrder(t *testing.T) {
	ep := &personaEndpoint{byPrompt: map[string][]memory.Message{
		persona.Basic.SystemPrompt: {memory.Assistant("basic answer")},
		persona.ChainOfThought.SystemPrompt: {
			memory.Assistant("", memory.ToolCall{ID: "c1", Name: tools.CalculatorName, Arguments: `{"expression":"3*3"}`}),
			memory.Assistant("never sent"),
		},
		persona.ReAct.SystemPrompt: {
			memory.Assistant(`<request><function name="web_search" arguments='{"query": "climate change"}' /></request>`),
			memory.Assistant("never sent"),
		},
	}}

	out, err := evaluation.Compare(context.Background(), runner.New(ep, "m"), registry(t), persona.All(), "q", evaluation.Options{Parallelism: 2})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "basic", out[0].Persona.Key)
	assert.Equal(t, "basic answer", out[0].Text)
	assert.True(t, out[0].Final)

	// The trailing entry after one dispatch is the tool output.
	assert.Equal(t, "9", out[1].Text)
	assert.False(t, out[1].Final)
	assert.Contains(t, out[2].Text, "Climate change refers")
	assert.False(t, out[2].Final)
}

// callingEndpoint asks for a calculation on every request.
type callingEndpoint struct {
	calls atomic.Int32
}

func (e *callingEndpoint) Complete(context.Context, provider.Request) (memory.Message, error) {
	n := e.calls.Add(1)
	id := fmt.Sprintf("c%d", n)
	return memory.Assistant("", memory.ToolCall{ID: id, Name: tools.CalculatorName, Arguments: `{"expression":"1+1"}`}), nil
}

func TestCompare_DispatchesOncePerPersona(t *testing.T) {
	ep := &callingEndpoint{}
	personas := []persona.Persona{persona.ChainOfThought, persona.ReAct}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := evaluation.Compare(ctx, runner.New(ep, "m"), registry(t), personas, "keep calculating", evaluation.Options{})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.EqualValues(t, 2, ep.calls.Load())
	for _, r := range out {
		assert.Equal(t, "2", r.Text, r.Persona.Key)
		assert.False(t, r.Final)
	}
}

func TestCompare_FailureBecomesNoResponse(t *testing.T) {
	ep := &personaEndpoint{
		failFor: persona.ChainOfThought.SystemPrompt,
		byPrompt: map[string][]memory.Message{
			persona.Basic.SystemPrompt: {memory.Assistant("fine")},
			persona.ReAct.SystemPrompt: {memory.Assistant("")},
		},
	}

	out, err := evaluation.Compare(context.Background(), runner.New(ep, "m"), registry(t), persona.All(), "q", evaluation.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Chain of Thought")
	require.Len(t, out, 3)
	assert.Equal(t, "fine", out[0].Text)
	assert.Equal(t, evaluation.NoResponse, out[1].Text)
	assert.Error(t, out[1].Err)
	assert.Equal(t, evaluation.NoResponse, out[2].Text, "empty content")
	assert.NoError(t, out[2].Err)
}

func TestReadRating(t *testing.T) {
	var prompts bytes.Buffer
	in := bufio.NewReader(strings.NewReader("abc\n0\n6\n 4 \n"))

	n, err := evaluation.ReadRating(&prompts, in, "Basic")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	got := prompts.String()
	assert.Equal(t, 4, strings.Count(got, "Please rate the Basic agent's response (1-5): "))
	assert.Equal(t, 1, strings.Count(got, "Please enter a valid integer."))
	assert.Equal(t, 2, strings.Count(got, "Rating must be between 1 and 5."))
}

func TestReadRating_LastLineWithoutNewline(t *testing.T) {
	n, err := evaluation.ReadRating(io.Discard, bufio.NewReader(strings.NewReader("5")), "ReAct")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestReadRating_EOF(t *testing.T) {
	_, err := evaluation.ReadRating(io.Discard, bufio.NewReader(strings.NewReader("")), "Basic")
	assert.ErrorIs(t, err, io.EOF)

	_, err = evaluation.ReadRating(io.Discard, bufio.NewReader(strings.NewReader("9")), "Basic")
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestHeader(t *testing.T) {
	assert.Equal(t, []string{
		"query", "Basic_response", "CoT_response", "ReAct_response",
		"Basic_rating", "CoT_rating", "ReAct_rating",
	}, evaluation.Header())
}

func TestSink_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	sink := evaluation.NewSink(path)

	rec := evaluation.Record{
		Query:     "Weather in Paris, and is it warmer than 20C?",
		Responses: map[string]string{"basic": "18C", "cot": "No, 18C", "react": "Thought: ...\nFinal Answer: no"},
		Ratings:   map[string]int{"basic": 3, "cot": 4, "react": 5},
	}
	require.NoError(t, sink.Append(rec))
	rec.Query = "second"
	delete(rec.Responses, "react")
	require.NoError(t, sink.Append(rec))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, evaluation.Header(), rows[0])
	assert.Equal(t, []string{
		"Weather in Paris, and is it warmer than 20C?", "18C", "No, 18C", "Thought: ...\nFinal Answer: no", "3", "4", "5",
	}, rows[1])
	assert.Equal(t, "second", rows[2][0])
	assert.Equal(t, evaluation.NoResponse, rows[2][3])
}

func TestSink_DefaultPath(t *testing.T) {
	assert.Equal(t, evaluation.DefaultResultsFile, evaluation.NewSink("").Path)
}

func TestNewRecord(t *testing.T) {
	rec := evaluation.NewRecord("q", []evaluation.Response{
		{Persona: persona.Basic, Text: "a"},
		{Persona: persona.ReAct, Text: "b"},
	})
	assert.Equal(t, map[string]string{"basic": "a", "react": "b"}, rec.Responses)
	assert.Empty(t, rec.Ratings)
}
