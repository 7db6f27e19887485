package datasource

import (
	"fmt"
	"log/slog"
)

// WarningKind classifies a non-fatal problem found while querying.
type WarningKind int

const (
	// InvalidFieldReference means a row lacks the requested field; it is
	// treated as nil.
	InvalidFieldReference WarningKind = iota
	// TypeMismatch means two values of incompatible types were compared by
	// their text forms.
	TypeMismatch
)

// String returns the string representation of a WarningKind.
func (k WarningKind) String() string {
	switch k {
	case InvalidFieldReference:
		return "InvalidFieldReference"
	case TypeMismatch:
		return "TypeMismatch"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Warning reports a degenerate comparison. Queries still succeed.
// At most one warning per kind and field is raised by each call.
type Warning struct {
	Kind   WarningKind
	Op     string
	Field  string
	Detail string
}

// Err returns the sentinel error matching the warning kind.
func (w Warning) Err() error {
	if w.Kind == TypeMismatch {
		return fmt.Errorf("%w: %s on %q: %s", ErrTypeMismatch, w.Op, w.Field, w.Detail)
	}
	return fmt.Errorf("%w: %s on %q: %s", ErrFieldNotFound, w.Op, w.Field, w.Detail)
}

// Options configures a DataSource.
type Options struct {
	// CaseSensitive is the default used by query documents that do not
	// specify one. Method calls take the flag explicitly.
	CaseSensitive bool

	// NotEqual selects how "!=" clauses are evaluated.
	NotEqual NotEqualMode

	// OnWarning receives warnings. Nil keeps warnings silent apart from
	// debug logging.
	OnWarning func(Warning)

	// Logger overrides the package logger.
	Logger *slog.Logger
}

// Option modifies Options.
type Option func(*Options)

// WithOptions replaces all options at once.
func WithOptions(o Options) Option {
	return func(opts *Options) {
		*opts = o
	}
}

// WithNotEqual selects the "!=" evaluation mode.
func WithNotEqual(mode NotEqualMode) Option {
	return func(opts *Options) {
		opts.NotEqual = mode
	}
}

// WithCaseSensitive sets the default case sensitivity for query documents.
func WithCaseSensitive(cs bool) Option {
	return func(opts *Options) {
		opts.CaseSensitive = cs
	}
}

// WithWarningHandler installs a warning callback.
func WithWarningHandler(fn func(Warning)) Option {
	return func(opts *Options) {
		opts.OnWarning = fn
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = l
	}
}
