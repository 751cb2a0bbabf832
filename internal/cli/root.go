package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var rootCmd = &cobra.Command{
	Use:   "boilerplate",
	Short: "Generate files and directories from templates",
	Long: `Boilerplate copies a template directory into a target directory,
expanding placeholders in file names and file contents on the way.

Templates live in the configured template directories. Each template is a
directory holding a manifest.json and the files to generate.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose := mustGetBool(cmd, "verbose")
		quiet := mustGetBool(cmd, "quiet")
		logging.Setup(verbose, quiet)
		ui.Quiet = quiet
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if noColor || !ui.IsInteractive() {
			return cmd.Help()
		}
		printBanner()
		return nil
	},
}

var noColor bool

func printBanner() {
	glyphs := map[rune][]string{
		'A': {" █████╗ ", "██╔══██╗", "███████║", "██╔══██║", "██║  ██║", "╚═╝  ╚═╝"},
		'B': {"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██████╔╝", "╚═════╝ "},
		'E': {"███████╗", "██╔════╝", "█████╗  ", "██╔══╝  ", "███████╗", "╚══════╝"},
		'I': {"██╗", "██║", "██║", "██║", "██║", "╚═╝"},
		'L': {"██╗     ", "██║     ", "██║     ", "██║     ", "███████╗", "╚══════╝"},
		'O': {" ██████╗ ", "██╔═══██╗", "██║   ██║", "██║   ██║", "╚██████╔╝", " ╚═════╝ "},
		'P': {"██████╗ ", "██╔══██╗", "██████╔╝", "██╔═══╝ ", "██║     ", "╚═╝     "},
		'R': {"██████╗ ", "██╔══██╗", "██████╔╝", "██╔══██╗", "██║  ██║", "╚═╝  ╚═╝"},
		'T': {"████████╗", "╚══██╔══╝", "   ██║   ", "   ██║   ", "   ██║   ", "   ╚═╝   "},
	}

	// Light to dark blue across the word
	colors := []lipgloss.Color{
		lipgloss.Color("#BFDBFE"),
		lipgloss.Color("#93C5FD"),
		lipgloss.Color("#60A5FA"),
		lipgloss.Color("#3B82F6"),
		lipgloss.Color("#2563EB"),
		lipgloss.Color("#1D4ED8"),
	}

	word := []rune("BOILERPLATE")
	for row := 0; row < 6; row++ {
		var lineParts []string
		for i, r := range word {
			style := lipgloss.NewStyle().
				Foreground(colors[i*len(colors)/len(word)]).
				Bold(true)
			lineParts = append(lineParts, style.Render(glyphs[r][row]))
		}
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Left, lineParts...))
	}

	versionStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginBottom(1)

	commandsStyle := lipgloss.NewStyle().
		Foreground(ui.Text)

	commands := `
Commands:
  generate  Generate a template into a directory
  list      List available templates
  show      Show a template's files and README
  vars      Preview the variables available to templates
  rename    Expand {placeholders} in file names under a directory
  new       Create a new template skeleton
  init      Write a project configuration file
  version   Show boilerplate version

Run 'boilerplate <command> --help' for more information.`

	versionLine := fmt.Sprintf("Version %s (commit: %s, built: %s)", Version, Commit, BuildDate)
	fmt.Println(versionStyle.Render(versionLine))
	fmt.Println(subtitleStyle.Render("Template scaffolding for files and directories"))
	fmt.Println(commandsStyle.Render(commands))
}

// Execute runs the root command and returns the process exit code. Errors are
// printed here; a cancelled prompt exits cleanly.
func Execute() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	if err := rootCmd.Execute(); err != nil {
		if ui.IsAbort(err) {
			return ExitCode(nil)
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			ui.PrintErrorWithHint(exitErr.Error(), exitErr.Hint)
		} else {
			ui.PrintError(err.Error())
		}
		return ExitCode(err)
	}
	return ExitCode(nil)
}

func init() {
	rootCmd.PersistentFlags().Bool("dry-run", false, "Preview operations without executing")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("quiet", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Bool("no-interactive", false, "Disable interactive prompts")
}

func mustGetString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	value, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}

func mustGetStringArray(cmd *cobra.Command, name string) []string {
	value, err := cmd.Flags().GetStringArray(name)
	if err != nil {
		panic(fmt.Sprintf("programming error: flag %q not defined: %v", name, err))
	}
	return value
}
