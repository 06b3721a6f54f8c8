// Package errors provides sentinel errors for content discovery and page assembly.
package errors

import "errors"

var (
	// ErrRootNotDirectory indicates the source root is missing or is not a directory.
	ErrRootNotDirectory = errors.New("source root is not a directory")

	// ErrDirWalkFailed indicates traversal of the source tree failed.
	ErrDirWalkFailed = errors.New("source directory walk failed")

	// ErrFileReadFailed indicates reading a Markdown file failed.
	ErrFileReadFailed = errors.New("markdown file read failed")

	// ErrConvertFailed indicates the Markdown converter rejected a document.
	ErrConvertFailed = errors.New("markdown conversion failed")

	// ErrStubCollision indicates two pages would be written to the same output path.
	ErrStubCollision = errors.New("page stub collision")
)
