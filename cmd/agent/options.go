package main

// Options is the root command. The struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config   string       `short:"f" long:"config" description:"YAML config file"`
	Chat     *ChatCmd     `command:"chat" description:"Chat with one persona"`
	Compare  *CompareCmd  `command:"compare" description:"Run one query through every persona and rate the answers"`
	Personas *PersonasCmd `command:"personas" description:"Print the persona catalog as YAML"`
}

func newOptions(a *App) *Options {
	return &Options{
		Chat:     &ChatCmd{app: a},
		Compare:  &CompareCmd{app: a},
		Personas: &PersonasCmd{app: a},
	}
}
