package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/picopage/internal/build"
	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Path         string `arg:"" type:"path" help:"Base path of the website files"`
	OutPath      string `arg:"" optional:"" type:"path" help:"Output path for the generated website (default: <parent of path>/publish)"`
	ThemesDir    string `name:"themes-dir" type:"path" help:"Directory with stylesheets overriding the built-in themes"`
	TemplatesDir string `name:"templates-dir" type:"path" help:"Directory with a page.html overriding the built-in template"`
	MetricsFile  string `name:"metrics-file" type:"path" help:"Write build metrics in Prometheus text format to this file"`
}

func (b *BuildCmd) Run(g *Global, _ *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunBuild(ctx, g, b)
}

// RunBuild generates the site described by b and prints the summary lines.
func RunBuild(ctx context.Context, g *Global, b *BuildCmd) error {
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if b.MetricsFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	gen := build.NewGenerator(build.Options{
		SourceDir:    b.Path,
		OutputDir:    b.OutPath,
		ThemesDir:    b.ThemesDir,
		TemplatesDir: b.TemplatesDir,
		Recorder:     recorder,
	})
	report, err := gen.Generate(ctx)

	out := g.stdout()
	if report.StageCounts[build.StageAssemble].Success > 0 {
		fmt.Fprintf(out, "Read %d pages with %d articles\n", report.Pages, report.Articles)
	}

	if prom != nil {
		if werr := prom.WriteTextfile(b.MetricsFile); werr != nil {
			slog.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(werr))
		}
	}

	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Finished. %d HTML files written.\n", report.HTMLFiles)
	return nil
}
