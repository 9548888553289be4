package catalogdb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a catalogdb error.
type Kind int

const (
	KindGeneric           Kind = iota // Unclassified failure
	KindNotImplemented                // Feature not implemented yet
	KindMissingDependency             // A required dependency is unavailable
	KindNotFound                      // A file or object does not exist
	KindAPI                           // Reserved for API collaborators
	KindAuth                          // Reserved for authentication collaborators
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneric:
		return "Generic"
	case KindNotImplemented:
		return "NotImplemented"
	case KindMissingDependency:
		return "MissingDependency"
	case KindNotFound:
		return "NotFound"
	case KindAPI:
		return "API"
	case KindAuth:
		return "Auth"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

func (k Kind) defaultMessage() string {
	switch k {
	case KindNotImplemented:
		return "This feature is not implemented yet."
	case KindNotFound:
		return "file does not exist."
	default:
		return "There has been an error"
	}
}

// Error is the single error type of the catalogdb taxonomy.
// An empty Message falls back to the kind's default message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// NewError returns an *Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError returns an *Error of the given kind that wraps err.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.defaultMessage()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a bare sentinel of the same kind,
// so errors.Is(err, ErrNotFound) matches any NotFound error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// Sentinels for each kind. Compare with errors.Is.
var (
	ErrGeneric           = &Error{Kind: KindGeneric}
	ErrNotImplemented    = &Error{Kind: KindNotImplemented}
	ErrMissingDependency = &Error{Kind: KindMissingDependency}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrAPI               = &Error{Kind: KindAPI}
	ErrAuth              = &Error{Kind: KindAuth}
)

var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrTableNotFound is returned by the CLI when the destination table is missing.
	// The loader itself reports a missing table with a false result, not this error.
	ErrTableNotFound = errors.New("table does not exist")
)

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrNotFound):
		return ExitSourceNotFound
	case errors.Is(err, ErrTableNotFound):
		return ExitTableNotFound
	case errors.Is(err, ErrNotImplemented):
		return ExitNotImplemented
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ExitCopyFailed
	}

	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "unknown flag"),
		strings.Contains(errStr, "unknown shorthand flag"),
		strings.Contains(errStr, "accepts "),
		strings.Contains(errStr, "required flag"),
		strings.Contains(errStr, "missing required argument"),
		strings.Contains(errStr, "invalid argument"):
		return ExitUsageError
	case strings.Contains(errStr, "failed to connect"),
		strings.Contains(errStr, "connection refused"),
		strings.Contains(errStr, "no such host"):
		return ExitConnectionError
	}

	return ExitGeneralError
}
