package ui

import (
	"github.com/charmbracelet/huh/spinner"
)

// RunWithSpinner runs fn behind a spinner when attached to a terminal and
// directly otherwise.
func RunWithSpinner(title string, fn func() error) error {
	if Quiet || !IsInteractive() {
		return fn()
	}

	var err error
	if spinErr := spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run(); spinErr != nil {
		return spinErr
	}
	return err
}
