package steps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// RunStep runs a command line through a shell in the target directory.
type RunStep struct {
	name    string
	shell   string
	command string
	storeAs string
}

// NewCommandRunStep runs command with sh.
func NewCommandRunStep(command string, storeAs string) *RunStep {
	return &RunStep{name: CommandRun, shell: "sh", command: command, storeAs: storeAs}
}

// NewBashRunStep runs command with bash.
func NewBashRunStep(command string, storeAs string) *RunStep {
	return &RunStep{name: BashRun, shell: "bash", command: command, storeAs: storeAs}
}

func (s *RunStep) Name() string {
	return s.name
}

func (s *RunStep) Run(ctx context.Context, sc *Context, opts Options) error {
	command := sc.expand(s.command)

	if opts.DryRun {
		sc.Logger.Info("would run", "step", s.name, "command", command, "dir", sc.Dir)
		return nil
	}

	cmd := exec.CommandContext(ctx, s.shell, "-c", command)
	cmd.Dir = sc.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", s.name, err, string(output))
	}
	sc.Logger.Info("ran", "step", s.name, "command", command)

	if s.storeAs != "" {
		sc.SetVar(s.storeAs, strings.TrimSpace(string(output)))
		if opts.Verbose {
			sc.Logger.Info("stored output", "as", s.storeAs)
		}
	}

	return nil
}

func (s *RunStep) Condition(sc *Context) bool {
	_, err := exec.LookPath(s.shell)
	return err == nil
}
