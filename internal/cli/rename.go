package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/paths"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var renameCmd = &cobra.Command{
	Use:   "rename DIR",
	Short: "Expand {placeholders} in file names under a directory",
	Long: `Rename every file and directory below DIR whose name contains {name} or
{name:transform} placeholders. File contents are not touched.

An entry is left alone when its new name already exists.`,
	Example: `  boilerplate rename src/features/new --var feature=billing`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := OpenProjectFromCWD()
		if err != nil {
			return err
		}

		answers, err := parseVars(mustGetStringArray(cmd, "var"))
		if err != nil {
			return err
		}

		root := resolveTarget(pc.Workspace, args[0])
		if !fs.IsDir(pc.FS, root) {
			return invalidArgs(fmt.Errorf("%s is not a directory", root), "")
		}

		names, err := treeVariables(pc, root)
		if err != nil {
			return err
		}
		answers, err = completeAnswers(names, answers, promptMode(cmd))
		if err != nil {
			return err
		}

		dryRun := mustGetBool(cmd, "dry-run")
		renames, err := runRename(pc, root, answers, dryRun)
		if err != nil {
			return err
		}

		verb := "Renamed"
		if dryRun {
			verb = "Would rename"
		}
		for _, r := range renames {
			ui.PrintSuccess(fmt.Sprintf("%s %s -> %s", verb, r.From, r.To))
		}
		ui.PrintDone(fmt.Sprintf("%d path(s) renamed", len(renames)))
		return nil
	},
}

// treeVariables lists the placeholder names used anywhere below root.
func treeVariables(pc *ProjectContext, root string) ([]string, error) {
	rels, err := fs.WalkFiles(pc.FS, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}
	var names []string
	seen := make(map[string]bool)
	for _, rel := range rels {
		for _, name := range paths.Variables(rel) {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func runRename(pc *ProjectContext, root string, answers types.Answers, dryRun bool) ([]paths.Rename, error) {
	r := paths.NewRenamer(pc.FS)
	r.DryRun = dryRun
	renames, err := r.RenameTree(root, answers)
	if err != nil {
		return nil, fmt.Errorf("renaming %s: %w", root, err)
	}
	return renames, nil
}

func init() {
	addVarFlag(renameCmd)
	rootCmd.AddCommand(renameCmd)
}
