package build

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/publish"
)

func (g *Generator) stagingDir() string { return g.opts.OutputDir + "_stage" }
func (g *Generator) backupDir() string  { return g.opts.OutputDir + ".prev" }

// beginStaging creates an empty sibling staging directory: <output>_stage.
// Leftovers from an interrupted run are removed first.
func (g *Generator) beginStaging() (string, error) {
	stage := g.stagingDir()
	if err := publish.Clean(stage); err != nil {
		return "", err
	}
	if err := os.MkdirAll(stage, 0o755); err != nil {
		return "", fmt.Errorf("%w: create staging directory: %w", ErrStaging, err)
	}
	g.stageDir = stage
	g.log.Debug("Initialized staging directory", logfields.Path(stage), "final", g.opts.OutputDir)
	return stage, nil
}

// finalizeStaging promotes the staging directory to the output location:
//  1. Move the existing output (if any) to <output>.prev.
//  2. Rename staging to output.
//  3. Remove the backup.
//
// The previous output is replaced, never merged.
func (g *Generator) finalizeStaging() error {
	if g.stageDir == "" {
		return fmt.Errorf("%w: no staging directory initialized", ErrStaging)
	}
	if _, err := os.Stat(g.stageDir); err != nil {
		return fmt.Errorf("%w: staging directory missing: %w", ErrStaging, err)
	}

	prev := g.backupDir()
	if err := publish.Clean(prev); err != nil {
		return err
	}
	if _, err := os.Stat(g.opts.OutputDir); err == nil {
		if err := os.Rename(g.opts.OutputDir, prev); err != nil {
			return fmt.Errorf("%w: backup existing output: %w", ErrStaging, err)
		}
	}
	if err := os.Rename(g.stageDir, g.opts.OutputDir); err != nil {
		// Put the previous output back so a failed promotion changes nothing.
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, g.opts.OutputDir)
		}
		return fmt.Errorf("%w: promote staging: %w", ErrStaging, err)
	}
	g.stageDir = ""
	if err := os.RemoveAll(prev); err != nil {
		g.log.Warn("Failed to remove previous output", logfields.Path(prev), logfields.Error(err))
	}
	g.log.Info("Promoted staging directory", logfields.Path(g.opts.OutputDir))
	return nil
}

// abortStaging removes the staging directory after a failed build.
func (g *Generator) abortStaging() {
	if g.stageDir == "" {
		return
	}
	dir := g.stageDir
	g.stageDir = ""
	if err := os.RemoveAll(dir); err != nil {
		g.log.Warn("Failed to remove staging directory after abort", logfields.Path(dir), logfields.Error(err))
	} else {
		g.log.Debug("Removed staging directory after abort", logfields.Path(dir))
	}
}
