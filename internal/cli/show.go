package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/scaffold"
	"github.com/artisanexperiences/boilerplate/internal/templates"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

const readmeWidth = 80

var showCmd = &cobra.Command{
	Use:   "show TEMPLATE",
	Short: "Show a template's files and README",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}

		tmpl, err := pc.FindTemplate(args[0])
		if err != nil {
			return err
		}

		fmt.Fprint(ui.Out, describeTemplate(tmpl))

		if readme, ok := pc.Loader.Readme(tmpl); ok {
			fmt.Fprintln(ui.Out, ui.RenderMarkdown(readme, readmeWidth))
		}
		return nil
	},
}

func describeTemplate(tmpl *templates.Template) string {
	var b strings.Builder

	b.WriteString(ui.HeaderStyle.Render(tmpl.Name) + "\n")
	if tmpl.Description != "" {
		b.WriteString(tmpl.Description + "\n")
	}
	b.WriteString("\n")

	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s %s\n", ui.MutedStyle.Render(fmt.Sprintf("%-9s", label+":")), value)
		}
	}
	field("Path", tmpl.Path)
	field("Author", tmpl.Author)
	field("Version", tmpl.Version)
	field("Created", tmpl.Created)
	field("Tags", strings.Join(tmpl.Tags, ", "))

	if vars := scaffold.PathVariables(tmpl); len(vars) > 0 {
		field("Inputs", strings.Join(vars, ", "))
	}

	b.WriteString("\n" + ui.StepStyle.Render("Files") + "\n")
	for _, f := range tmpl.Files {
		b.WriteString("  " + ui.CodeStyle.Render(f.TargetPath) + "\n")
	}
	if len(tmpl.Steps) > 0 {
		b.WriteString("\n" + ui.StepStyle.Render("Steps") + "\n")
		for _, st := range tmpl.Steps {
			b.WriteString("  " + st.Name + "\n")
		}
	}
	b.WriteString("\n")
	return b.String()
}

func init() {
	rootCmd.AddCommand(showCmd)
}
