package rgrreport

import (
	"errors"
	"fmt"
)

// InputNotFoundError reports an input file or a required input column that
// is not where the run expects it.
type InputNotFoundError struct {
	Path   string // file path or glob pattern
	Column string // set when the file exists but a required column is missing
	Err    error
}

func (e *InputNotFoundError) Error() string {
	msg := fmt.Sprintf("input not found: %s", e.Path)
	if e.Column != "" {
		msg = fmt.Sprintf("input %s: column %q not found", e.Path, e.Column)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *InputNotFoundError) Unwrap() error { return e.Err }

// ConfigError reports a missing or invalid rate configuration value.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	msg := "config " + e.Path
	if e.Key != "" {
		msg += fmt.Sprintf(": key %q", e.Key)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the wrapped error.
func (e *ConfigError) Unwrap() error { return e.Err }

// UnexpectedError is the catch-all for failures outside the other kinds.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string {
	if e.Err == nil {
		return "unexpected error"
	}
	return "unexpected error: " + e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *UnexpectedError) Unwrap() error { return e.Err }

// Classify normalises err into one of the three error kinds.
// Errors that already carry a kind are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var notFound *InputNotFoundError
	var cfg *ConfigError
	var unexpected *UnexpectedError
	if errors.As(err, &notFound) || errors.As(err, &cfg) || errors.As(err, &unexpected) {
		return err
	}
	return &UnexpectedError{Err: err}
}

// Kind returns the name of the error kind err belongs to after Classify.
func Kind(err error) string {
	var notFound *InputNotFoundError
	var cfg *ConfigError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &notFound):
		return "InputNotFoundError"
	case errors.As(err, &cfg):
		return "ConfigError"
	default:
		return "UnexpectedError"
	}
}
