package main

import (
	"fmt"
	"strings"

	"github.com/petasbytes/weather-agent/internal/persona"
)

// menu is the interactive entry point used when no command is given.
func (a *App) menu() error {
	fmt.Fprintln(a.Out, "Choose an agent type:")
	fmt.Fprintln(a.Out, "1: Basic Weather Assistant")
	fmt.Fprintln(a.Out, "2: Chain-of-Thought Assistant")
	fmt.Fprintln(a.Out, "3: ReAct Assistant")
	fmt.Fprintln(a.Out, "4: Comparative Evaluation (Bonus)")
	fmt.Fprint(a.Out, "Enter 1, 2, 3 or 4: ")

	choice, err := a.readLine(a.ctx)
	if err != nil {
		return err
	}
	switch strings.TrimSpace(choice) {
	case "1":
		return a.chat(persona.Basic)
	case "2":
		return a.chat(persona.ChainOfThought)
	case "3":
		return a.chat(persona.ReAct)
	case "4":
		return a.compare("")
	default:
		fmt.Fprintln(a.Out, "Invalid choice. Defaulting to Basic Weather Assistant.")
		return a.chat(persona.Basic)
	}
}
