package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/config"
	"github.com/artisanexperiences/boilerplate/internal/scaffold"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/templates"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var generateCmd = &cobra.Command{
	Use:     "generate [TEMPLATE] [TARGET]",
	Aliases: []string{"gen", "g"},
	Short:   "Generate a template into a directory",
	Long: `Generate copies every file of TEMPLATE into TARGET (default: the current
directory), expanding {placeholders} in paths and ${...} expressions in text
files. Binary files are copied unchanged.

Values for placeholders are taken from --var flags. Missing values are
prompted for when running interactively.

Steps declared in the template manifest run in TARGET once every file was
generated. They are logged but not run with --dry-run.`,
	Example: `  boilerplate generate component src/components --var filename=UserCard
  boilerplate generate service --dry-run`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}
		defer pc.Close()

		answers, err := parseVars(mustGetStringArray(cmd, "var"))
		if err != nil {
			return err
		}

		mode := promptMode(cmd)
		tmpl, err := resolveTemplate(pc, args, mode)
		if err != nil {
			return err
		}

		target := "."
		if len(args) > 1 {
			target = args[1]
		}

		answers, err = completeAnswers(scaffold.PathVariables(tmpl), answers, mode)
		if err != nil {
			return err
		}

		opts := types.GenerateOptions{
			DryRun:     mustGetBool(cmd, "dry-run"),
			Verbose:    mustGetBool(cmd, "verbose"),
			Quiet:      mustGetBool(cmd, "quiet"),
			Force:      mustGetBool(cmd, "force"),
			Parallel:   mustGetBool(cmd, "parallel") || pc.Config.Scaffold.Parallel,
			SkipSteps:  mustGetBool(cmd, "no-steps"),
			PromptMode: mode,
		}

		ui.PrintStep(fmt.Sprintf("Generating %s", tmpl.Name))
		ui.PrintInfo(fmt.Sprintf("Target: %s", resolveTarget(pc.Workspace, target)))

		var results []scaffold.FileResult
		err = ui.RunWithSpinner("Generating files", func() error {
			var genErr error
			results, genErr = runGenerate(cmd.Context(), pc, tmpl, target, answers, opts)
			return genErr
		})
		summary := reportResults(results, opts.DryRun)
		if err != nil {
			return withExit(config.ExitGenerationFailed, err, summary)
		}

		if len(tmpl.Steps) > 0 && !opts.SkipSteps {
			ui.PrintStep(fmt.Sprintf("Running %d step(s)", len(tmpl.Steps)))
			err = ui.RunWithSpinner("Running steps", func() error {
				return runSteps(cmd.Context(), pc, tmpl, target, answers, opts)
			})
			if err != nil {
				return withExit(config.ExitGenerationFailed, err, "rerun with --no-steps to skip them")
			}
		}

		ui.PrintDone(summary)
		return nil
	},
}

// resolveTemplate picks the template named in args or lets the user choose
// one when prompting is allowed.
func resolveTemplate(pc *ProjectContext, args []string, mode types.PromptMode) (*templates.Template, error) {
	if len(args) > 0 {
		return pc.FindTemplate(args[0])
	}
	if !mode.Allow() {
		return nil, invalidArgs(fmt.Errorf("template name required"), "run 'boilerplate list' to see available templates")
	}
	list := pc.Templates()
	if len(list) == 0 {
		return nil, withExit(config.ExitTemplateNotFound, templates.ErrTemplateNotFound, "create one with 'boilerplate new NAME'")
	}
	return ui.SelectTemplate(list)
}

func resolveTarget(workspace, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(workspace, target)
}

func runGenerate(ctx context.Context, pc *ProjectContext, tmpl *templates.Template, target string, answers types.Answers, opts types.GenerateOptions) ([]scaffold.FileResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := pc.Generator()
	if err != nil {
		return nil, err
	}
	return gen.Generate(ctx, newRequest(pc, tmpl, target, answers, opts))
}

func runSteps(ctx context.Context, pc *ProjectContext, tmpl *templates.Template, target string, answers types.Answers, opts types.GenerateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := pc.Generator()
	if err != nil {
		return err
	}
	return gen.RunSteps(ctx, newRequest(pc, tmpl, target, answers, opts))
}

func newRequest(pc *ProjectContext, tmpl *templates.Template, target string, answers types.Answers, opts types.GenerateOptions) scaffold.Request {
	return scaffold.Request{
		Template:  tmpl,
		TargetDir: resolveTarget(pc.Workspace, target),
		Answers:   answers,
		Options:   opts,
	}
}

// reportResults prints one line per file and returns a summary.
func reportResults(results []scaffold.FileResult, dryRun bool) string {
	var written, skipped, failed int
	for _, r := range results {
		switch {
		case r.Error != nil:
			failed++
			ui.PrintError(fmt.Sprintf("%s: %v", r.File.TargetPath, r.Error))
		case r.Skipped:
			skipped++
			ui.PrintWarning(fmt.Sprintf("Skipped %s (already exists, use --force to overwrite)", r.OutputPath))
		default:
			written++
			verb := "Created"
			if dryRun {
				verb = "Would create"
			}
			ui.PrintSuccess(fmt.Sprintf("%s %s", verb, r.OutputPath))
		}
	}

	summary := fmt.Sprintf("%d file(s) generated", written)
	if dryRun {
		summary = fmt.Sprintf("%d file(s) would be generated", written)
	}
	if skipped > 0 {
		summary += fmt.Sprintf(", %d skipped", skipped)
	}
	if failed > 0 {
		summary += fmt.Sprintf(", %d failed", failed)
	}
	return summary
}

func init() {
	addVarFlag(generateCmd)
	generateCmd.Flags().Bool("force", false, "Overwrite existing files")
	generateCmd.Flags().Bool("parallel", false, "Generate files concurrently")
	generateCmd.Flags().Bool("no-steps", false, "Do not run the template's post-generation steps")
	rootCmd.AddCommand(generateCmd)
}
