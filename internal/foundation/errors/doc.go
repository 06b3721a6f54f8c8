// Package errors provides the classified error primitives used across picopage.
//
// A ClassifiedError carries a category (config, docs, template, filesystem, ...),
// a severity and a small context map. Categories drive CLI exit codes, severities
// decide whether a pipeline stage aborts or merely records a warning.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryConfig, "missing required key").
//		Fatal().
//		WithContext("key", "title").
//		WithCause(ErrMissingTitle).
//		Build()
package errors
