package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedEndpoint struct {
	reply string
}

func (e cannedEndpoint) Complete(_ context.Context, _ provider.Request) (memory.Message, error) {
	return memory.Assistant(e.reply), nil
}

// testEnv isolates the test from the caller's environment and any local
// config or .env file.
func testEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, name := range []string{
		"GROQ_MODEL", "GROQ_BASE_URL", "GROQ_API_KEY", "ANTHROPIC_API_KEY",
		"WEATHER_API_KEY", "AGT_BASE_URL", "AGT_MAX_ROUNDS", "AGT_RESULTS_FILE",
		"AGT_TOKEN_BUDGET", "AGT_OBSERVE_JSON",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("AGT_PROVIDER", "openai")
	t.Setenv("AGT_MODEL", "test-model")
	t.Setenv("AGT_API_KEY", "test-key")
	t.Setenv("AGT_LOG_LEVEL", "disabled")
}

func newTestApp(input, reply string) (*App, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	app := &App{
		In:     bufio.NewReader(strings.NewReader(input)),
		Out:    &out,
		ErrOut: &errOut,
		NewEndpoint: func(provider.Options) (provider.Endpoint, error) {
			return cannedEndpoint{reply: reply}, nil
		},
	}
	return app, &out, &errOut
}

func TestRun_Chat(t *testing.T) {
	testEnv(t)
	app, out, errOut := newTestApp("What's the weather in Paris?\nexit\n", "It is sunny in Paris.")

	code := app.Run(context.Background(), []string{"chat", "--persona", "react"})
	require.Equal(t, 0, code, errOut.String())

	got := out.String()
	assert.Contains(t, got, "Weather Assistant: Hello! I can help you with weather information.")
	assert.Contains(t, got, "(Type 'exit' to end the conversation)")
	assert.Contains(t, got, "\nWeather Assistant: It is sunny in Paris.\n\n")
	assert.True(t, strings.HasSuffix(got, "Weather Assistant: Goodbye! Have a great day!\n"))
}

func TestRun_ChatEndsOnEOF(t *testing.T) {
	testEnv(t)
	app, _, errOut := newTestApp("hello\n", "hi")

	assert.Equal(t, 0, app.Run(context.Background(), []string{"chat"}), errOut.String())
}

func TestRun_MenuInvalidChoiceFallsBackToBasic(t *testing.T) {
	testEnv(t)
	app, out, _ := newTestApp("9\nquit\n", "unused")

	require.Equal(t, 0, app.Run(context.Background(), nil))
	got := out.String()
	assert.Contains(t, got, "Choose an agent type:")
	assert.Contains(t, got, "4: Comparative Evaluation (Bonus)")
	assert.Contains(t, got, "Invalid choice. Defaulting to Basic Weather Assistant.")
	assert.Contains(t, got, "Goodbye!")
}

func TestRun_CompareWritesResults(t *testing.T) {
	testEnv(t)
	app, out, errOut := newTestApp("5\n4\nx\n3\n", "Sunny.")

	code := app.Run(context.Background(), []string{"compare", "-q", "Weather in Oslo?"})
	require.Equal(t, 0, code, errOut.String())

	got := out.String()
	assert.Contains(t, got, "--- Comparative Evaluation ---")
	assert.Contains(t, got, "Basic Agent Response: Sunny.")
	assert.Contains(t, got, "Please enter a valid integer.")
	assert.Contains(t, got, "Evaluation results saved to comparative_evaluation_results.csv.")

	f, err := os.Open(filepath.Join(".", "comparative_evaluation_results.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "query", rows[0][0])
	assert.Equal(t, []string{"Weather in Oslo?", "Sunny.", "Sunny.", "Sunny.", "5", "4", "3"}, rows[1])
}

func TestRun_Personas(t *testing.T) {
	app, out, _ := newTestApp("", "")

	require.Equal(t, 0, app.Run(context.Background(), []string{"personas"}))
	assert.Contains(t, out.String(), "key: react")
	assert.Contains(t, out.String(), "get_weather_forecast")
}

func TestRun_Help(t *testing.T) {
	app, out, _ := newTestApp("", "")

	assert.Equal(t, 0, app.Run(context.Background(), []string{"--help"}))
	assert.Contains(t, out.String(), "compare")
}

func TestRun_InvalidConfig(t *testing.T) {
	testEnv(t)
	t.Setenv("AGT_MODEL", "")
	app, _, errOut := newTestApp("", "")

	assert.Equal(t, 1, app.Run(context.Background(), []string{"chat"}))
	assert.Contains(t, errOut.String(), "model is required")
}

func TestRun_Cancelled(t *testing.T) {
	testEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	app, out, _ := newTestApp("", "")

	assert.Equal(t, 130, app.Run(ctx, []string{"chat"}))
	assert.Contains(t, out.String(), "Exiting...")
}
