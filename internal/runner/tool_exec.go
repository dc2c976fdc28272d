package runner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/petasbytes/weather-agent/internal/telemetry"
	"github.com/petasbytes/weather-agent/memory"
	"github.com/petasbytes/weather-agent/tools"
	"github.com/tidwall/gjson"
)

// parseArguments decodes a call's argument blob into named arguments. A blank
// blob means no arguments; anything else must be a JSON object.
func parseArguments(blob string) (map[string]any, error) {
	if strings.TrimSpace(blob) == "" {
		return map[string]any{}, nil
	}
	if !gjson.Valid(blob) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidArguments)
	}
	res := gjson.Parse(blob)
	if !res.IsObject() {
		return nil, fmt.Errorf("%w: expected a JSON object, got %s", ErrInvalidArguments, res.Type)
	}
	args, _ := res.Value().(map[string]any)
	return args, nil
}

// execCall runs one call. It returns the tool message to append, or
// ok=false when the call produced none. A non-nil error is always a *CallError.
func (r *Runner) execCall(ctx context.Context, reg Resolver, call memory.ToolCall, p CallParser) (msg memory.Message, ok bool, err error) {
	turnID, _ := telemetry.TurnIDFromContext(ctx)
	start := time.Now()
	emit := func(outSize int, errStr string) {
		fields := map[string]any{
			"turn_id":     turnID,
			"tool_name":   call.Name,
			"source":      p.Name(),
			"duration_ms": time.Since(start).Milliseconds(),
			"input_size":  len(call.Arguments),
			"output_size": outSize,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}
	fail := func(code string, cause error) (memory.Message, bool, error) {
		emit(0, code)
		return memory.Message{}, false, &CallError{CallID: call.ID, Tool: call.Name, Err: cause}
	}

	fn, found := reg.Resolve(call.Name)
	if !found {
		if p.SkipUnknown() {
			r.Logger.Debug().Str("tool", call.Name).Str("source", p.Name()).Msg("skipping unknown tool")
			emit(0, "tool not found (skipped)")
			return memory.Message{}, false, nil
		}
		return fail("tool not found", fmt.Errorf("%w: %s", ErrUnknownTool, call.Name))
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		return fail("invalid arguments", err)
	}

	out, err := invoke(ctx, fn, args)
	if err != nil {
		return fail("tool panic", err)
	}
	emit(len(out), "")
	r.Logger.Debug().
		Str("tool", call.Name).
		Str("call_id", call.ID).
		Int("output_size", len(out)).
		Dur("took", time.Since(start)).
		Msg("tool executed")
	return memory.ToolResult(call.ID, call.Name, out), true, nil
}

func invoke(ctx context.Context, fn tools.Func, args map[string]any) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrToolPanic, rec)
		}
	}()
	return fn(ctx, args), nil
}
