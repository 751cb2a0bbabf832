package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

// parseVars turns repeated --var key=value flags into answers. Later
// occurrences of a key win. The value may contain further '=' signs.
func parseVars(pairs []string) (types.Answers, error) {
	answers := make(types.Answers, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, invalidArgs(
				fmt.Errorf("invalid --var %q", pair),
				"use --var name=value",
			)
		}
		answers[key] = value
	}
	return answers, nil
}

func addVarFlag(cmd *cobra.Command) {
	cmd.Flags().StringArray("var", nil, "Set a variable as name=value (repeatable)")
}

func promptMode(cmd *cobra.Command) types.PromptMode {
	return types.PromptMode{
		Interactive:   ui.IsInteractive(),
		NoInteractive: mustGetBool(cmd, "no-interactive"),
		CI:            os.Getenv("CI") != "",
	}
}

// missingAnswers lists the names that have no non-empty answer.
func missingAnswers(names []string, answers types.Answers) []string {
	var missing []string
	for _, name := range names {
		if _, ok := answers.Lookup(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// completeAnswers prompts for missing names when mode allows it and fails
// with a hint otherwise.
func completeAnswers(names []string, answers types.Answers, mode types.PromptMode) (types.Answers, error) {
	missing := missingAnswers(names, answers)
	if len(missing) == 0 {
		return answers, nil
	}
	if !mode.Allow() {
		hint := make([]string, len(missing))
		for i, name := range missing {
			hint[i] = "--var " + name + "=..."
		}
		return nil, invalidArgs(
			fmt.Errorf("missing values for: %s", strings.Join(missing, ", ")),
			"pass "+strings.Join(hint, " "),
		)
	}
	prompted, err := ui.PromptAnswers(missing, answers)
	if err != nil {
		return nil, err
	}
	return types.Answers(prompted), nil
}
