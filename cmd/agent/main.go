// Command agent is an interactive weather assistant with three prompting
// personas and a mode that compares them side by side.
package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Ctrl-C / SIGTERM cancels the running turn and ends the loop. A second
	// signal falls through to the default handler.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()

	app := &App{
		In:     bufio.NewReader(os.Stdin),
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}
	code := app.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
