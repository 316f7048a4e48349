package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfig Kind = "CONFIG"
	KindFetch  Kind = "FETCH"
	KindParse  Kind = "PARSE"
	KindEmpty  Kind = "EMPTY"
)

// Error is a classified pipeline error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two errors of the same kind and message, so wrapped catalogue
// entries still satisfy errors.Is against the bare entry.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Wrap attaches a cause to a catalogue entry.
func Wrap(base *Error, err error) error {
	return &Error{
		Kind:    base.Kind,
		Message: base.Message,
		Err:     err,
	}
}

// New creates an ad-hoc error of the given kind.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsEmpty reports whether err is a "nothing to do" condition.
func IsEmpty(err error) bool {
	return KindOf(err) == KindEmpty
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfig:
		return 2
	default:
		return 1
	}
}

var (
	// CONFIG
	ErrMissingToken = &Error{
		Kind:    KindConfig,
		Message: "GitHub token is not available; run 'gh auth login' or set GITHUB_TOKEN",
	}
	ErrMissingAPIKey = &Error{
		Kind:    KindConfig,
		Message: "OPENAI_API_KEY is not set",
	}
	ErrMissingCredentials = &Error{
		Kind:    KindConfig,
		Message: "GOOGLE_SHEETS_CREDENTIALS_FILE is not set",
	}
	ErrMissingSpreadsheet = &Error{
		Kind:    KindConfig,
		Message: "GOOGLE_SHEETS_SPREADSHEET_ID is not set",
	}
	ErrInvalidTimezone = &Error{
		Kind:    KindConfig,
		Message: "invalid timezone",
	}

	// FETCH
	ErrFetch = &Error{
		Kind:    KindFetch,
		Message: "fetch failed",
	}

	// PARSE
	ErrParse = &Error{
		Kind:    KindParse,
		Message: "malformed JSON",
	}

	// EMPTY
	ErrNoRepositories = &Error{
		Kind:    KindEmpty,
		Message: "no repositories to process",
	}
	ErrNoCommits = &Error{
		Kind:    KindEmpty,
		Message: "no commits found",
	}
	ErrNoSnapshot = &Error{
		Kind:    KindEmpty,
		Message: "no snapshot found",
	}
	ErrEmptySnapshot = &Error{
		Kind:    KindEmpty,
		Message: "snapshot is empty",
	}
	ErrEmptyResponse = &Error{
		Kind:    KindEmpty,
		Message: "completion API returned an empty response",
	}
)
