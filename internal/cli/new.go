package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/git"
	"github.com/artisanexperiences/boilerplate/internal/templates"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var newCmd = &cobra.Command{
	Use:   "new [NAME]",
	Short: "Create a new template skeleton",
	Long: `Create a template directory holding a manifest.json and an example file
under src/. The directory name is derived from NAME.

By default the template is created in the first configured template
directory. Use --dir to pick another one.`,
	Example: `  boilerplate new "React Component" --description "A function component" --tag react`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		} else if promptMode(cmd).Allow() {
			name, err = ui.PromptTemplateName()
			if err != nil {
				return err
			}
		} else {
			return invalidArgs(fmt.Errorf("template name required"), "boilerplate new NAME")
		}

		dir := mustGetString(cmd, "dir")
		if dir == "" {
			if len(pc.Config.TemplateDirectories) == 0 {
				return invalidArgs(fmt.Errorf("no template directory configured"), "pass --dir or run 'boilerplate init'")
			}
			dir = pc.Config.TemplateDirectories[0]
		}

		author := mustGetString(cmd, "author")
		if author == "" {
			author = gitAuthor(cmd.Context(), pc.Workspace)
		}

		path, err := pc.Loader.Create(dir, templates.CreateOptions{
			Name:        name,
			Description: mustGetString(cmd, "description"),
			Author:      author,
			Tags:        mustGetStringArray(cmd, "tag"),
			Force:       mustGetBool(cmd, "force"),
			Now:         time.Now(),
		})
		if err != nil {
			if errors.Is(err, templates.ErrTemplateExists) {
				return invalidArgs(err, "use --force to overwrite it")
			}
			return err
		}

		ui.PrintDone(fmt.Sprintf("Created template %q", name))
		ui.PrintInfo(fmt.Sprintf("Path: %s", path))
		return nil
	},
}

func gitAuthor(ctx context.Context, dir string) string {
	if ctx == nil {
		ctx = context.Background()
	}
	author, err := git.NewInfo(dir).Lookup(ctx, git.FieldAuthor)
	if err != nil {
		return ""
	}
	return author
}

func init() {
	newCmd.Flags().String("dir", "", "Directory to create the template in")
	newCmd.Flags().String("description", "", "Template description")
	newCmd.Flags().String("author", "", "Template author (default: git user.name)")
	newCmd.Flags().StringArray("tag", nil, "Tag for the template (repeatable)")
	newCmd.Flags().Bool("force", false, "Overwrite an existing template")
	rootCmd.AddCommand(newCmd)
}
