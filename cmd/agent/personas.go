package main

import (
	"github.com/petasbytes/weather-agent/internal/persona"
	"github.com/petasbytes/weather-agent/tools"
)

// PersonasCmd prints each persona with the tool schemas it exposes.
type PersonasCmd struct {
	app *App
}

func (c *PersonasCmd) Execute(_ []string) error {
	// The catalog only needs tool declarations, not a configured endpoint.
	reg, err := tools.Default(tools.NewWeatherClient("", ""))
	if err != nil {
		return err
	}
	out, err := persona.Catalog(reg)
	if err != nil {
		return err
	}
	_, err = c.app.Out.Write(out)
	return err
}
