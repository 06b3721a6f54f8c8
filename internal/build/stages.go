package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/picopage/internal/config"
	"git.home.luguber.info/inful/picopage/internal/docs"
	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/logfields"
	"git.home.luguber.info/inful/picopage/internal/metrics"
	"git.home.luguber.info/inful/picopage/internal/publish"
	"git.home.luguber.info/inful/picopage/internal/render"
	"git.home.luguber.info/inful/picopage/internal/site"
)

// StageName identifies a pipeline stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageLoadConfig    StageName = "load_config"
	StageAssemble      StageName = "assemble"
	StageBuildSite     StageName = "build_site"
	StagePrepareOutput StageName = "prepare_output"
	StageCopyStatic    StageName = "copy_static"
	StageRenderPages   StageName = "render_pages"
	StageFinalize      StageName = "finalize"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// classify wraps err as a StageError, honoring the severity of classified errors.
func classify(stage StageName, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	if ferrors.HasSeverity(err, ferrors.SeverityWarning) {
		return newWarnStageError(stage, err)
	}
	return newFatalStageError(stage, err)
}

// BuildState carries mutable state across stages.
type BuildState struct {
	Generator *Generator
	Report    *Report
	Config    *config.File
	Pages     []docs.Page
	Site      *site.Site
	Registry  *render.Registry
	StageDir  string
}

// defaultStages is the canonical pipeline.
func defaultStages() []StageDef {
	return []StageDef{
		{StageLoadConfig, stageLoadConfig},
		{StageAssemble, stageAssemble},
		{StageBuildSite, stageBuildSite},
		{StagePrepareOutput, stagePrepareOutput},
		{StageCopyStatic, stageCopyStatic},
		{StageRenderPages, stageRenderPages},
		{StageFinalize, stageFinalize},
	}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Cancellation is only observed between stages.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef) error {
	rec := bs.Generator.recorder
	log := bs.Generator.log
	for _, st := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(st.Name, fmt.Errorf("%w: %w", ErrCanceled, ctx.Err()))
			bs.Report.recordStageResult(st.Name, StageResultCanceled, rec)
			bs.Report.Errors = append(bs.Report.Errors, se)
			return se
		default:
		}

		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.Report.StageDurations[st.Name] = dur
		rec.ObserveStageDuration(string(st.Name), dur)
		log.Debug("Stage finished",
			logfields.Stage(string(st.Name)),
			logfields.DurationMS(float64(dur.Microseconds())/1000))

		if err == nil {
			bs.Report.recordStageResult(st.Name, StageResultSuccess, rec)
			continue
		}

		se := classify(st.Name, err)
		bs.Report.StageErrorKinds[st.Name] = se.Kind
		switch se.Kind {
		case StageErrorWarning:
			bs.Report.recordStageResult(st.Name, StageResultWarning, rec)
			bs.Report.Warnings = append(bs.Report.Warnings, se)
			log.Warn("Stage completed with warnings", logfields.Stage(string(st.Name)), logfields.Error(se.Err))
			continue
		case StageErrorCanceled:
			bs.Report.recordStageResult(st.Name, StageResultCanceled, rec)
		default:
			bs.Report.recordStageResult(st.Name, StageResultFatal, rec)
		}
		bs.Report.Errors = append(bs.Report.Errors, se)
		return se
	}
	return nil
}

func stageLoadConfig(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	if err := g.checkPaths(); err != nil {
		return newFatalStageError(StageLoadConfig, err)
	}
	var warnings []error
	if err := config.LoadEnv(g.opts.SourceDir); err != nil {
		warnings = append(warnings, ferrors.WrapError(err, ferrors.CategoryConfig, "load environment file").
			Warning().
			WithContext("path", g.opts.SourceDir).
			Build())
	}
	cfg, err := config.Load(g.opts.SourceDir)
	bs.Config = cfg
	if err != nil {
		// A malformed root config leaves the required keys unset; build_site
		// turns that into the fatal error.
		warnings = append(warnings, err)
	}
	if len(warnings) > 0 {
		return newWarnStageError(StageLoadConfig, errors.Join(warnings...))
	}
	return nil
}

func stageAssemble(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	asm := docs.NewAssembler(g.parser, docs.WithExclude(g.excluded()...))
	pages, err := asm.Assemble(g.opts.SourceDir)
	if err != nil {
		return newFatalStageError(StageAssemble, err)
	}
	bs.Pages = pages
	bs.Report.Pages = len(pages)
	bs.Report.Articles = docs.CountArticles(pages)
	g.recorder.SetSiteSize(bs.Report.Pages, bs.Report.Articles)
	return nil
}

func stageBuildSite(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	s, err := site.Build(bs.Config, bs.Pages)
	if err != nil {
		return newFatalStageError(StageBuildSite, err)
	}
	if err := s.CheckTheme(g.styles); err != nil {
		return newFatalStageError(StageBuildSite, err)
	}
	reg, err := render.NewRegistry(g.templates)
	if err != nil {
		return newFatalStageError(StageBuildSite, ferrors.WrapError(err, ferrors.CategoryTemplate, "load page template").Fatal().Build())
	}
	bs.Site = s
	bs.Registry = reg
	bs.Report.Theme = s.Theme
	g.log.Debug("Site assembled", logfields.Theme(s.Theme), slog.String("title", s.Title))
	return nil
}

func stagePrepareOutput(_ context.Context, bs *BuildState) error {
	dir, err := bs.Generator.beginStaging()
	if err != nil {
		return newFatalStageError(StagePrepareOutput, err)
	}
	bs.StageDir = dir
	return nil
}

func stageCopyStatic(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	n, err := publish.CopyStatic(g.opts.SourceDir, bs.StageDir, publish.WithExclude(g.excluded()...))
	bs.Report.StaticFiles = n
	if err != nil {
		return classify(StageCopyStatic, err)
	}
	return nil
}

func stageRenderPages(_ context.Context, bs *BuildState) error {
	g := bs.Generator
	n, err := render.NewRenderer(bs.Registry, g.styles).Render(bs.Site, bs.StageDir)
	bs.Report.HTMLFiles = n
	g.recorder.AddFilesWritten(n)
	if err != nil {
		return newFatalStageError(StageRenderPages, err)
	}
	return nil
}

func stageFinalize(_ context.Context, bs *BuildState) error {
	if err := bs.Generator.finalizeStaging(); err != nil {
		return newFatalStageError(StageFinalize, err)
	}
	bs.StageDir = ""
	return nil
}

// StageResult enumerates per-stage classification outcomes.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

// recordStageResult updates report counters and emits the stage metric.
func (r *Report) recordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		recorder.IncStageResult(string(stage), metrics.ResultSuccess)
	case StageResultWarning:
		sc.Warning++
		recorder.IncStageResult(string(stage), metrics.ResultWarning)
	case StageResultFatal:
		sc.Fatal++
		recorder.IncStageResult(string(stage), metrics.ResultFatal)
	case StageResultCanceled:
		sc.Canceled++
		recorder.IncStageResult(string(stage), metrics.ResultCanceled)
	}
	r.StageCounts[stage] = sc
}
