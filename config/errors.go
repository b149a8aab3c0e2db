package config

import (
	"errors"
	"strings"

	"tailplane/model"
	"tailplane/theme"
)

var (
	ErrDecode           = errors.New("cannot decode document")
	ErrUnknownFormat    = errors.New("unknown document format")
	ErrUnknownKey       = errors.New("unknown key")
	ErrWrongType        = errors.New("wrong type")
	ErrEmptyContent     = errors.New("content must list at least one pattern")
	ErrEmptyPattern     = errors.New("pattern must not be empty")
	ErrMalformedPattern = errors.New("malformed glob pattern")
	ErrNonStringColor   = errors.New("color value must be a string")
	ErrInvalidColor     = theme.ErrInvalidColor
	ErrUnknownDarkMode  = model.ErrUnknownDarkMode
)

// Issue is a single problem found in a document. Field is a dotted path such
// as "content[1]" or "theme.extend.colors.primary".
type Issue struct {
	Field string
	Err   error
}

func (i Issue) Error() string {
	if i.Field == "" {
		return i.Err.Error()
	}
	return i.Field + ": " + i.Err.Error()
}

func (i Issue) Unwrap() error {
	return i.Err
}

// ValidationError reports every issue found while loading a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, issue.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Issues))
	for _, issue := range e.Issues {
		errs = append(errs, issue)
	}
	return errs
}

func (e *ValidationError) add(field string, err error) {
	e.Issues = append(e.Issues, Issue{Field: field, Err: err})
}

func (e *ValidationError) empty() bool {
	return len(e.Issues) == 0
}
