package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/templates"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List available templates",
	Long: `List every template found in the configured template directories.

Directories are searched in order; a directory is a template when it holds a
manifest.json.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}

		list := pc.Templates()
		if len(list) == 0 {
			ui.PrintWarning("No templates found")
			var searched []string
			for _, dir := range pc.Config.TemplateDirectories {
				searched = append(searched, pc.Loader.ExpandDirectory(dir))
			}
			ui.PrintInfo("Searched: " + strings.Join(searched, ", "))
			ui.PrintInfo("Create one with 'boilerplate new NAME'")
			return nil
		}

		fmt.Fprintln(ui.Out, templateTable(list))
		return nil
	},
}

func templateTable(list []templates.Template) string {
	rows := make([][]string, len(list))
	for i, t := range list {
		rows[i] = []string{t.Name, t.Description, strconv.Itoa(len(t.Files)), t.Path}
	}
	return ui.RenderTable([]string{"NAME", "DESCRIPTION", "FILES", "PATH"}, rows)
}

func init() {
	rootCmd.AddCommand(listCmd)
}
