package build

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/picopage/internal/foundation/errors"
	"git.home.luguber.info/inful/picopage/internal/metrics"
)

func TestReport_DeriveOutcome(t *testing.T) {
	r := newReport("id", "src", "out")
	r.finish()
	require.Equal(t, OutcomeSuccess, r.Outcome)

	r = newReport("id", "src", "out")
	r.Warnings = append(r.Warnings, newWarnStageError(StageCopyStatic, errors.New("w")))
	r.finish()
	require.Equal(t, OutcomeWarning, r.Outcome)

	r = newReport("id", "src", "out")
	r.Errors = append(r.Errors, newFatalStageError(StageAssemble, errors.New("f")))
	r.finish()
	require.Equal(t, OutcomeFailed, r.Outcome)
	require.Contains(t, r.Summary(), "outcome=failed")

	r = newReport("id", "src", "out")
	r.Errors = append(r.Errors, newCanceledStageError(StageAssemble, context.Canceled))
	r.finish()
	require.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestClassify(t *testing.T) {
	warn := ferrors.NewError(ferrors.CategoryFileSystem, "copy").Warning().Build()
	require.Equal(t, StageErrorWarning, classify(StageCopyStatic, warn).Kind)

	fatal := ferrors.NewError(ferrors.CategoryFileSystem, "copy").Fatal().Build()
	require.Equal(t, StageErrorFatal, classify(StageCopyStatic, fatal).Kind)

	require.Equal(t, StageErrorFatal, classify(StageCopyStatic, errors.New("plain")).Kind)

	se := newCanceledStageError(StageFinalize, context.Canceled)
	require.Same(t, se, classify(StageCopyStatic, se))
}

func TestRunStages_WarningsContinue(t *testing.T) {
	g := NewGenerator(Options{SourceDir: t.TempDir(), OutputDir: filepath.Join(t.TempDir(), "out")})
	bs := &BuildState{Generator: g, Report: newReport("id", "", "")}

	var ran []StageName
	stages := []StageDef{
		{"one", func(context.Context, *BuildState) error {
			ran = append(ran, "one")
			return newWarnStageError("one", errors.New("minor"))
		}},
		{"two", func(context.Context, *BuildState) error {
			ran = append(ran, "two")
			return errors.New("boom")
		}},
		{"three", func(context.Context, *BuildState) error {
			ran = append(ran, "three")
			return nil
		}},
	}

	err := runStages(context.Background(), bs, stages)
	var se *StageError
	require.ErrorAs(t, err, &se)
	require.Equal(t, StageName("two"), se.Stage)
	require.Equal(t, []StageName{"one", "two"}, ran)
	require.Equal(t, 1, bs.Report.StageCounts["one"].Warning)
	require.Equal(t, 1, bs.Report.StageCounts["two"].Fatal)
	require.Len(t, bs.Report.Warnings, 1)
	require.Len(t, bs.Report.Errors, 1)
}

func TestOutcomeMetricLabel(t *testing.T) {
	require.Equal(t, metrics.BuildOutcomeSuccess, OutcomeSuccess.metricLabel())
	require.Equal(t, metrics.BuildOutcomeWarning, OutcomeWarning.metricLabel())
	require.Equal(t, metrics.BuildOutcomeCanceled, OutcomeCanceled.metricLabel())
	require.Equal(t, metrics.BuildOutcomeFailed, OutcomeFailed.metricLabel())
}
