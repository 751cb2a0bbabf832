// Package scaffold generates a template into a target directory.
package scaffold

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/paths"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/scope"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/steps"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/template"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/templates"
)

var ErrNoTemplate = errors.New("no template selected")

// Request describes one generation run.
type Request struct {
	Template  *templates.Template
	TargetDir string
	Answers   types.Answers
	Options   types.GenerateOptions
}

// Generator copies template files into a target directory, resolving
// placeholders in paths and expanding text content.
type Generator struct {
	SourceFS billy.Filesystem
	TargetFS billy.Filesystem
	Builder  *scope.Builder
	Expander *template.Expander
	Logger   *log.Logger
}

func NewGenerator(source, target billy.Filesystem, builder *scope.Builder, expander *template.Expander) *Generator {
	return &Generator{
		SourceFS: source,
		TargetFS: target,
		Builder:  builder,
		Expander: expander,
		Logger:   logging.For("generate"),
	}
}

// PathVariables lists the distinct {placeholder} names used by the target
// paths of t, in order of first appearance. These are the answers a caller
// should collect before generating.
func PathVariables(t *templates.Template) []string {
	var names []string
	seen := make(map[string]bool)
	for _, f := range t.Files {
		for _, name := range paths.Variables(f.TargetPath) {
			if seen[name] {
				continue
			}
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Generate writes every file of the template. A failing file never stops its
// siblings; all failures are joined into the returned error.
func (g *Generator) Generate(ctx context.Context, req Request) ([]FileResult, error) {
	if req.Template == nil {
		return nil, ErrNoTemplate
	}
	if req.TargetDir == "" {
		return nil, fmt.Errorf("target directory is required")
	}
	if req.Answers == nil {
		req.Answers = types.Answers{}
	}

	g.Logger.Info("generating template", "template", req.Template.Name, "target", req.TargetDir, "files", len(req.Template.Files))

	exec := newFileExecutor(req.Template.Files, req.Options.Parallel, func(ctx context.Context, f templates.File) FileResult {
		return g.generateFile(ctx, req, f)
	})
	results := exec.Execute(ctx)

	var errs []error
	for _, r := range results {
		if r.Error != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.File.TargetPath, r.Error))
		}
	}
	if len(errs) > 0 {
		return results, fmt.Errorf("generating %s: %w", req.Template.Name, errors.Join(errs...))
	}
	return results, nil
}

func (g *Generator) generateFile(ctx context.Context, req Request, f templates.File) FileResult {
	rel := paths.ResolvePath(f.TargetPath, req.Answers)
	out := filepath.Join(req.TargetDir, rel)
	result := FileResult{File: f, OutputPath: out}

	if fs.Exists(g.TargetFS, out) && !req.Options.Force {
		g.Logger.Warn("skipping existing file", "path", out)
		result.Skipped = true
		return result
	}

	info, err := g.SourceFS.Stat(f.InputPath)
	if err != nil {
		result.Error = fmt.Errorf("reading %s: %w", f.InputPath, err)
		return result
	}

	data, err := fs.ReadFile(g.SourceFS, f.InputPath)
	if err != nil {
		result.Error = fmt.Errorf("reading %s: %w", f.InputPath, err)
		return result
	}

	if fs.IsBinary(data) {
		result.Binary = true
		if req.Options.DryRun {
			g.Logger.Info("would copy binary", "from", f.InputPath, "to", out)
			return result
		}
		if err := fs.CopyFile(g.SourceFS, f.InputPath, g.TargetFS, out); err != nil {
			result.Error = err
			return result
		}
		g.Logger.Info("copied binary", "from", f.InputPath, "to", out)
		return result
	}

	ns := g.Builder.Build(f.InputPath, out, req.Answers)
	content := g.Expander.Expand(ctx, string(data), ns, req.Answers)

	if req.Options.DryRun {
		g.Logger.Info("would write", "from", f.InputPath, "to", out)
		return result
	}
	if err := fs.WriteFile(g.TargetFS, out, []byte(content), info.Mode().Perm()); err != nil {
		result.Error = fmt.Errorf("writing %s: %w", out, err)
		return result
	}
	g.Logger.Info("wrote", "from", f.InputPath, "to", out)
	return result
}

// RunSteps runs the template's post-generation steps in the target
// directory. Step arguments are expanded like file content; values stored by
// earlier steps are visible to later ones as answers.
func (g *Generator) RunSteps(ctx context.Context, req Request) error {
	if req.Template == nil {
		return ErrNoTemplate
	}
	if req.Options.SkipSteps || len(req.Template.Steps) == 0 {
		return nil
	}

	list, err := steps.Build(req.Template.Steps)
	if err != nil {
		return fmt.Errorf("template %s: %w", req.Template.Name, err)
	}

	sc := &steps.Context{
		Dir:    req.TargetDir,
		FS:     g.TargetFS,
		Logger: g.Logger,
		Expand: func(s string, vars types.Answers) string {
			answers := req.Answers.Clone()
			for k, v := range vars {
				answers[k] = v
			}
			ns := g.Builder.Build(req.Template.SourceDir(), req.TargetDir, answers)
			return g.Expander.Expand(ctx, s, ns, answers)
		},
	}

	g.Logger.Info("running steps", "template", req.Template.Name, "steps", len(list))
	if err := steps.Run(ctx, list, sc, steps.Options{DryRun: req.Options.DryRun, Verbose: req.Options.Verbose}); err != nil {
		return fmt.Errorf("running steps for %s: %w", req.Template.Name, err)
	}
	return nil
}
