package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/artisanexperiences/boilerplate/internal/config"
	"github.com/artisanexperiences/boilerplate/internal/ui"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a project configuration file",
	Long: `Write .boilerplate.yaml in the current directory, or the global config with
--global. Keys already present in the file and not set by a flag are kept.`,
	Example: `  boilerplate init --template-dir ./templates --template-dir ~/.boilerplate/templates
  boilerplate init --global --counter-store sqlite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting current directory: %w", err)
		}

		global := mustGetBool(cmd, "global")
		path := filepath.Join(cwd, config.ProjectConfigFile)
		if global {
			path = config.GlobalConfigPath()
		}

		if _, err := os.Stat(path); err == nil && promptMode(cmd).Allow() {
			confirmed, err := ui.Confirm(fmt.Sprintf("%s already exists. Update it?", path))
			if err != nil {
				return err
			}
			if !confirmed {
				ui.PrintInfo("Init cancelled")
				return nil
			}
		}

		cfg := initConfig(
			mustGetStringArray(cmd, "template-dir"),
			mustGetString(cmd, "counter-store"),
			mustGetBool(cmd, "parallel"),
			global,
		)
		if err := writeInitConfig(cwd, cfg, global); err != nil {
			return err
		}

		ui.PrintDone(fmt.Sprintf("Wrote %s", path))
		return nil
	},
}

// initConfig builds the config written by init. A project config without
// directories points at the workspace template directory.
func initConfig(dirs []string, counterStore string, parallel, global bool) *config.Config {
	if len(dirs) == 0 {
		if global {
			dirs = config.DefaultTemplateDirectories[:1]
		} else {
			dirs = []string{"$WORKSPACE/.boilerplate/templates"}
		}
	}
	return &config.Config{
		TemplateDirectories: dirs,
		Counter:             config.CounterConfig{Store: counterStore},
		Scaffold:            config.ScaffoldConfig{Parallel: parallel},
	}
}

func writeInitConfig(workspace string, cfg *config.Config, global bool) error {
	if err := validateInitConfig(cfg); err != nil {
		return err
	}
	var err error
	if global {
		err = config.SaveGlobal(cfg)
	} else {
		err = config.SaveProject(workspace, cfg)
	}
	if err != nil {
		return withExit(config.ExitConfigurationError, err, "")
	}
	return nil
}

func validateInitConfig(cfg *config.Config) error {
	switch cfg.Counter.Store {
	case "", config.CounterStoreMemory, config.CounterStoreSQLite:
		return nil
	default:
		return invalidArgs(
			fmt.Errorf("unknown counter store %q", cfg.Counter.Store),
			fmt.Sprintf("use %s or %s", config.CounterStoreMemory, config.CounterStoreSQLite),
		)
	}
}

func init() {
	initCmd.Flags().StringArray("template-dir", nil, "Template directory to search (repeatable)")
	initCmd.Flags().String("counter-store", "", "Counter store: memory or sqlite")
	initCmd.Flags().Bool("parallel", false, "Generate files concurrently by default")
	initCmd.Flags().Bool("global", false, "Write the global config instead of the project config")
	rootCmd.AddCommand(initCmd)
}
