package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/petasbytes/weather-agent/internal/config"
	"github.com/petasbytes/weather-agent/internal/provider"
	"github.com/petasbytes/weather-agent/internal/runner"
	"github.com/petasbytes/weather-agent/internal/telemetry"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/rs/zerolog"
)

// App carries the process-wide IO and the lazily built dependencies shared
// by every command.
type App struct {
	In     *bufio.Reader
	Out    io.Writer
	ErrOut io.Writer
	// NewEndpoint replaces provider.New when set.
	NewEndpoint func(provider.Options) (provider.Endpoint, error)

	ctx        context.Context
	configFile string

	cfg      *config.Config
	log      zerolog.Logger
	registry *tools.Registry
	runner   *runner.Runner
}

// Run parses args and executes the selected command, or the interactive
// menu when none is given. It returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	a.ctx = ctx
	opts := newOptions(a)
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.SubcommandsOptional = true
	// Commands need the global -f value before they run.
	parser.CommandHandler = func(cmd flags.Commander, args []string) error {
		a.configFile = opts.Config
		if cmd == nil {
			return a.menu()
		}
		return cmd.Execute(args)
	}

	if _, err := parser.ParseArgs(args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			fmt.Fprintln(a.Out, ferr.Message)
			return 0
		}
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(a.Out, "\nExiting...")
			return 130
		}
		fmt.Fprintf(a.ErrOut, "error: %v\n", err)
		return 1
	}
	return 0
}

// setup loads configuration and wires the runner once.
func (a *App) setup() error {
	if a.runner != nil {
		return nil
	}
	cfg, err := config.Load(config.Options{ConfigFile: a.configFile})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.log = cfg.NewLogger()
	telemetry.SetLogger(a.log)

	if cfg.Weather.APIKey == "" {
		a.log.Warn().Msg("no weather API key configured; weather tools will report errors")
	}
	weather := tools.NewWeatherClient(cfg.Weather.BaseURL, cfg.Weather.APIKey)
	reg, err := tools.Default(weather)
	if err != nil {
		return fmt.Errorf("register tools: %w", err)
	}

	newEndpoint := a.NewEndpoint
	if newEndpoint == nil {
		newEndpoint = provider.New
	}
	ep, err := newEndpoint(cfg.ProviderOptions())
	if err != nil {
		return err
	}

	r := runner.New(ep, cfg.Model)
	r.TokenBudget = cfg.TokenBudget
	r.Logger = a.log.With().Str("component", "runner").Logger()

	a.registry = reg
	a.runner = r
	a.log.Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("token_budget", cfg.TokenBudget).
		Msg("agent ready")
	return nil
}

// readLine reads one line of input, giving up when ctx is cancelled.
func (a *App) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := a.In.ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}
