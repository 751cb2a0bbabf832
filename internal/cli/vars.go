package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/git"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/variables"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/words"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

// sampleName is used for the transform examples when no --var is given.
const sampleName = "my component"

// enhancedExamples are resolved by vars to show what each generator yields.
var enhancedExamples = []string{
	"${date}",
	"${date:YYYY-MM-DD HH:mm}",
	"${uuid}",
	"${uuid:short}",
	"${counter}",
	"${counter:start=100:step=10:padding=5}",
	"${env:HOME}",
	"${env:BOILERPLATE_UNSET:fallback}",
	"${git:branch}",
	"${git:author}",
}

var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Preview the variables available to templates",
	Long: `Show the variables a template file would see when generated to --path,
how each transform changes a value, and what the built-in generators return.

Counters in this preview use a throwaway store and never advance the
configured one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}

		answers, err := parseVars(mustGetStringArray(cmd, "var"))
		if err != nil {
			return err
		}

		output := resolveTarget(pc.Workspace, mustGetString(cmd, "path"))
		ns := pc.Builder().Build(output, output, answers)

		processor := variables.NewProcessor(
			variables.WithCounterStore(counter.NewMemoryStore()),
			variables.WithGit(git.NewInfo(pc.Workspace)),
		)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		fmt.Fprintln(ui.Out, ui.RenderVariablesTable("Static variables", staticRows(ns, mustGetBool(cmd, "env"))))
		fmt.Fprintln(ui.Out, ui.RenderVariablesTable("Transforms", transformRows(answers)))
		fmt.Fprintln(ui.Out, ui.RenderVariablesTable("Enhanced variables", enhancedRows(ctx, processor, answers)))
		return nil
	},
}

// staticRows lists the namespace as ${key} rows. Environment variables are
// many and mostly noise, so they are left out unless asked for.
func staticRows(ns *types.Namespace, withEnv bool) [][]string {
	flat := ns.Flatten()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		if !withEnv && strings.HasPrefix(k, "env.") {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{"${" + k + "}", flat[k]}
	}
	return rows
}

func transformRows(answers types.Answers) [][]string {
	names := make([]string, 0, len(answers))
	for k := range answers {
		names = append(names, k)
	}
	sort.Strings(names)

	values := answers
	if len(names) == 0 {
		names = []string{"name"}
		values = types.Answers{"name": sampleName}
	}

	var rows [][]string
	for _, name := range names {
		for _, kind := range words.Kinds {
			rows = append(rows, []string{
				fmt.Sprintf("${%s:%s}", name, kind),
				words.Transform(values[name], kind),
			})
		}
	}
	return rows
}

func enhancedRows(ctx context.Context, processor *variables.Processor, answers types.Answers) [][]string {
	rows := make([][]string, len(enhancedExamples))
	for i, token := range enhancedExamples {
		rows[i] = []string{token, processor.Resolve(ctx, token, answers)}
	}
	return rows
}

func init() {
	addVarFlag(varsCmd)
	varsCmd.Flags().String("path", filepath.Join("src", "example.txt"), "Output path, relative to the workspace, to preview variables for")
	varsCmd.Flags().Bool("env", false, "Include environment variables")
	rootCmd.AddCommand(varsCmd)
}
