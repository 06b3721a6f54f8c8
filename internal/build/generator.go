package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/metrics"
	"git.home.luguber.info/inful/picopage/internal/themes"
)

// DefaultOutputName is the output directory created next to the source root
// when none is given.
const DefaultOutputName = "publish"

// Options configures a Generator.
type Options struct {
	SourceDir    string
	OutputDir    string           // defaults to DefaultOutputDir(SourceDir)
	ThemesDir    string           // optional stylesheet overrides
	TemplatesDir string           // optional page template overrides
	Recorder     metrics.Recorder // defaults to metrics.NoopRecorder
}

// DefaultOutputDir is <parent of source>/publish.
func DefaultOutputDir(source string) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = filepath.Clean(source)
	}
	return filepath.Join(filepath.Dir(abs), DefaultOutputName)
}

// Generator builds one site into one output directory.
type Generator struct {
	opts      Options
	parser    *docs.ArticleParser
	templates fs.FS
	styles    fs.FS
	recorder  metrics.Recorder
	log       *slog.Logger
	stageDir  string
	stages    []StageDef
}

// NewGenerator creates a Generator for opts.
func NewGenerator(opts Options) *Generator {
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir(opts.SourceDir)
	}
	if abs, err := filepath.Abs(opts.OutputDir); err == nil {
		opts.OutputDir = abs
	}
	if abs, err := filepath.Abs(opts.SourceDir); err == nil {
		opts.SourceDir = abs
	}
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Generator{
		opts:      opts,
		parser:    docs.NewArticleParser(nil),
		templates: themes.Templates(opts.TemplatesDir),
		styles:    themes.Styles(opts.ThemesDir),
		recorder:  rec,
		log:       slog.Default(),
		stages:    defaultStages(),
	}
}

// OutputDir is the resolved output directory.
func (g *Generator) OutputDir() string { return g.opts.OutputDir }

// Generate runs the pipeline. The returned Report is always non-nil; the
// error is the fatal StageError that stopped the build, if any. On failure
// the previous output directory is left untouched.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	id := uuid.NewString()
	g.log = slog.Default().With(logfields.BuildID(id))
	g.log.Info("Starting site build", logfields.Path(g.opts.SourceDir), slog.String("output", g.opts.OutputDir))

	report := newReport(id, g.opts.SourceDir, g.opts.OutputDir)
	bs := &BuildState{Generator: g, Report: report}

	err := runStages(ctx, bs, g.stages)
	if err != nil {
		g.abortStaging()
	}
	report.finish()

	g.recorder.ObserveBuildDuration(report.Duration())
	g.recorder.IncBuildOutcome(report.Outcome.metricLabel())

	if err != nil {
		g.log.Error("Site build failed", logfields.Error(err), slog.String("outcome", string(report.Outcome)))
		return report, err
	}
	g.log.Info("Site build finished", slog.String("summary", report.Summary()))
	return report, nil
}

// excluded lists the generator-owned directories that must never be read as
// site input, for output placed inside the source tree.
func (g *Generator) excluded() []string {
	return []string{g.opts.OutputDir, g.stagingDir(), g.backupDir()}
}

func (g *Generator) checkPaths() error {
	rel, err := filepath.Rel(g.opts.OutputDir, g.opts.SourceDir)
	if err != nil {
		return nil
	}
	if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
		return ferrors.WrapError(fmt.Errorf("%w: %s", ErrOutputContainsSource, g.opts.OutputDir), ferrors.CategoryConfig, "invalid output directory").
			Fatal().
			WithContext("path", g.opts.OutputDir).
			Build()
	}
	return nil
}
