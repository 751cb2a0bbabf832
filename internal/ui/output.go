package ui

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
)

var (
	// Out receives progress output. Err receives errors and warnings.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	// Quiet suppresses everything written to Out.
	Quiet bool
)

// ErrAborted is returned when the user declines to continue.
var ErrAborted = errors.New("aborted")

func PrintStep(msg string) {
	printOut(StepStyle.Render("==>") + " " + msg)
}

func PrintInfo(msg string) {
	printOut(MutedStyle.Render(msg))
}

func PrintSuccess(msg string) {
	printOut(SuccessStyle.Render("✓") + " " + msg)
}

func PrintDone(msg string) {
	printOut(SuccessStyle.Render("✓ " + msg))
}

func PrintWarning(msg string) {
	fmt.Fprintln(Err, WarningStyle.Render("!")+" "+msg)
}

func PrintError(msg string) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗")+" "+msg)
}

// PrintErrorWithHint prints msg followed by an indented, muted hint.
func PrintErrorWithHint(msg, hint string) {
	PrintError(msg)
	if hint != "" {
		fmt.Fprintln(Err, "  "+MutedStyle.Render(hint))
	}
}

func printOut(line string) {
	if Quiet {
		return
	}
	fmt.Fprintln(Out, line)
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
}

// IsAbort reports whether err came from the user cancelling a prompt.
func IsAbort(err error) bool {
	return errors.Is(err, huh.ErrUserAborted) || errors.Is(err, ErrAborted)
}

// NormalizeAbort maps prompt cancellation to ErrAborted.
func NormalizeAbort(err error) error {
	if err != nil && IsAbort(err) {
		return ErrAborted
	}
	return err
}
