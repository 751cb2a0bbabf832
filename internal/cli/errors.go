package cli

import (
	"errors"

	"github.com/artisanexperiences/boilerplate/internal/config"
	"github.com/artisanexperiences/boilerplate/internal/templates"
)

// ExitError attaches an exit code and an optional hint to an error.
type ExitError struct {
	Code int
	Err  error
	Hint string
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func withExit(code int, err error, hint string) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: code, Err: err, Hint: hint}
}

func invalidArgs(err error, hint string) error {
	return withExit(config.ExitInvalidArguments, err, hint)
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return config.ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, templates.ErrTemplateNotFound) {
		return config.ExitTemplateNotFound
	}
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.ExitConfigurationError
	}
	return config.ExitGeneralError
}
