// Package chaterr defines the typed error kinds shared by every component
// of the ingestion and analytics pipeline (spec §7).
package chaterr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error so callers can branch on failure category
// without string-matching messages.
type Kind string

const (
	// KindIO covers missing files, permission errors, unreadable streams.
	KindIO Kind = "io"
	// KindUnknownFormat means the sniffer found no matching parser descriptor.
	KindUnknownFormat Kind = "unknown_format"
	// KindParseStructural means the format was identified but the file is
	// malformed at a level that prevents further progress.
	KindParseStructural Kind = "parse_structural"
	// KindParseRecord means a single record failed to parse; never fatal.
	KindParseRecord Kind = "parse_record"
	// KindNormalizationWarning covers non-fatal normalization anomalies
	// (cross-batch timestamp inversion, dangling reply).
	KindNormalizationWarning Kind = "normalization_warning"
	// KindStoreIntegrity covers schema-version mismatches and failed
	// migrations; fatal on store open.
	KindStoreIntegrity Kind = "store_integrity"
	// KindCanceled means cooperative cancellation completed.
	KindCanceled Kind = "canceled"
	// KindTimeout means an analytics deadline was exceeded.
	KindTimeout Kind = "timeout"
	// KindInternal is an unrecoverable bug, fatal to the job but not the process.
	KindInternal Kind = "internal"
)

// Error wraps an underlying error with a Kind and the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Kind == kind
}

// KindOf returns the Kind of err, or KindInternal if err does not wrap an Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
