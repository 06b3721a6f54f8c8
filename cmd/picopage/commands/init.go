package commands

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/picopage/internal/config"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Dir    string `arg:"" optional:"" default:"." type:"path" help:"Site directory to create"`
	Title  string `help:"Site title (default: directory name)"`
	Author string `env:"PICOPAGE_AUTHOR" help:"Site author (required)"`
	Force  bool   `help:"Overwrite existing files"`
}

func (i *InitCmd) Run(g *Global, _ *CLI) error {
	return RunInit(g, i, time.Now())
}

// RunInit scaffolds i.Dir, stamping the starter article with now.
func RunInit(g *Global, i *InitCmd, now time.Time) error {
	if err := config.Init(i.Dir, i.Title, i.Author, now.Format(time.DateOnly), i.Force); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "initialize site").
			WithContext("path", i.Dir).
			Build()
	}
	fmt.Fprintf(g.stdout(), "Initialized site in %s\n", i.Dir)
	return nil
}
