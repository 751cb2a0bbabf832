package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"

	"github.com/artisanexperiences/boilerplate/internal/config"
	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/git"
	"github.com/artisanexperiences/boilerplate/internal/scaffold"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/scope"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/template"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/variables"
	"github.com/artisanexperiences/boilerplate/internal/templates"
)

// ProjectContext holds what every command needs: the workspace, its merged
// configuration and the template loader.
type ProjectContext struct {
	Workspace string
	Config    *config.Config
	FS        billy.Filesystem
	Loader    *templates.Loader

	counters    counter.Store
	release     func() error
	countersErr error
	countersOne sync.Once
}

func OpenProjectFromCWD() (*ProjectContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting current directory: %w", err)
	}
	return OpenProject(cwd)
}

func OpenProject(workspace string) (*ProjectContext, error) {
	cfg, err := config.Load(workspace)
	if err != nil {
		return nil, withExit(config.ExitConfigurationError, fmt.Errorf("loading config: %w", err), "check "+config.ProjectConfigFile+" and "+config.GlobalConfigPath())
	}

	return &ProjectContext{
		Workspace: workspace,
		Config:    cfg,
		FS:        fs.Default,
		Loader:    templates.NewLoader(fs.Default, workspace),
	}, nil
}

// Templates discovers every template in the configured directories.
func (pc *ProjectContext) Templates() []templates.Template {
	return pc.Loader.Discover(pc.Config.TemplateDirectories)
}

// FindTemplate looks name up among the discovered templates.
func (pc *ProjectContext) FindTemplate(name string) (*templates.Template, error) {
	list := pc.Templates()
	tmpl, err := templates.Find(list, name)
	if err != nil {
		return nil, withExit(config.ExitTemplateNotFound, err, "run 'boilerplate list' to see available templates")
	}
	return tmpl, nil
}

// Counters opens the configured counter store once per context.
func (pc *ProjectContext) Counters() (counter.Store, error) {
	pc.countersOne.Do(func() {
		pc.counters, pc.release, pc.countersErr = pc.Config.OpenCounterStore()
		if pc.countersErr != nil {
			pc.countersErr = withExit(config.ExitConfigurationError, pc.countersErr, "check counter.store and counter.path")
		}
	})
	return pc.counters, pc.countersErr
}

// Close releases the counter store if one was opened.
func (pc *ProjectContext) Close() error {
	if pc.release == nil {
		return nil
	}
	return pc.release()
}

func (pc *ProjectContext) Builder() *scope.Builder {
	b := scope.NewBuilder(pc.FS, pc.Workspace)
	b.Variables = pc.Config.Variables
	if len(pc.Config.Manifests) > 0 {
		b.Manifests = pc.Config.Manifests
	}
	b.EnvFile = pc.Config.EnvFile
	return b
}

func (pc *ProjectContext) Expander() (*template.Expander, error) {
	store, err := pc.Counters()
	if err != nil {
		return nil, err
	}
	processor := variables.NewProcessor(
		variables.WithCounterStore(store),
		variables.WithGit(git.NewInfo(pc.Workspace)),
	)
	return template.NewExpander(processor), nil
}

func (pc *ProjectContext) Generator() (*scaffold.Generator, error) {
	expander, err := pc.Expander()
	if err != nil {
		return nil, err
	}
	return scaffold.NewGenerator(pc.FS, pc.FS, pc.Builder(), expander), nil
}
