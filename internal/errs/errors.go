// Package errs defines the typed error kinds shared across the migration
// tool's components, following sentinel-plus-wrapper conventions so callers
// can use errors.Is / errors.As.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers may want to match directly.
var (
	ErrInvalidUpgradesData = errors.New("invalid upgrades data")
	ErrRangeError          = errors.New("range error")
	ErrBadReference        = errors.New("bad reference")
	ErrRegistry            = errors.New("registry error")
	ErrIncorrectMigration  = errors.New("incorrect migration attachment")
	ErrMissingPipelineFile = errors.New("missing pipeline file")
	ErrMigrationFailed     = errors.New("migration failed")
)

// wrapped carries a sentinel kind plus formatted context, supporting
// errors.Is against the sentinel and errors.Unwrap for the formatted cause.
type wrapped struct {
	kind error
	err  error
}

func (w *wrapped) Error() string { return w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
func (w *wrapped) Is(target error) bool { return target == w.kind }

func newWrapped(kind error, format string, args ...any) error {
	return &wrapped{kind: kind, err: fmt.Errorf(format, args...)}
}

// InvalidUpgradesData reports a schema or structural failure in input
// upgrade records.
func InvalidUpgradesData(format string, args ...any) error {
	return newWrapped(ErrInvalidUpgradesData, format, args...)
}

// RangeError reports a current version greater than the new version.
func RangeError(format string, args ...any) error {
	return newWrapped(ErrRangeError, format, args...)
}

// BadReference reports a malformed or under-specified container reference.
func BadReference(format string, args ...any) error {
	return newWrapped(ErrBadReference, format, args...)
}

// Registry reports a non-200 response or transport failure from the
// registry.
func Registry(format string, args ...any) error {
	return newWrapped(ErrRegistry, format, args...)
}

// IncorrectMigrationAttachment reports more than one migration referrer
// attached to a single bundle.
func IncorrectMigrationAttachment(format string, args ...any) error {
	return newWrapped(ErrIncorrectMigration, format, args...)
}

// MissingPipelineFile reports a package file path absent at apply time.
func MissingPipelineFile(format string, args ...any) error {
	return newWrapped(ErrMissingPipelineFile, format, args...)
}

// MigrationFailed reports a non-zero exit from a migration script.
func MigrationFailed(format string, args ...any) error {
	return newWrapped(ErrMigrationFailed, format, args...)
}
