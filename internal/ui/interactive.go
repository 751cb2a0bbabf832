package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/artisanexperiences/boilerplate/internal/templates"
)

// SelectTemplate asks the user to pick one of list.
func SelectTemplate(list []templates.Template) (*templates.Template, error) {
	if len(list) == 0 {
		return nil, templates.ErrTemplateNotFound
	}

	options := make([]huh.Option[int], len(list))
	for i, t := range list {
		options[i] = huh.NewOption(templateLabel(t), i)
	}

	var selected int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select a template").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return nil, NormalizeAbort(err)
	}

	return &list[selected], nil
}

// templateLabel shows the name followed by the two directories above the
// template, which is usually enough to tell same-named templates apart.
func templateLabel(t templates.Template) string {
	parent := filepath.Dir(t.Path)
	short := filepath.Join(filepath.Base(filepath.Dir(parent)), filepath.Base(parent))
	if t.Description != "" {
		return fmt.Sprintf("%s  %s", t.Name, MutedStyle.Render(t.Description+" · "+short))
	}
	return fmt.Sprintf("%s  %s", t.Name, MutedStyle.Render(short))
}

// PromptAnswers asks for a value for every name in names that has no
// non-empty value in known. Known values are returned unchanged.
func PromptAnswers(names []string, known map[string]string) (map[string]string, error) {
	answers := make(map[string]string, len(known)+len(names))
	for k, v := range known {
		answers[k] = v
	}

	var fields []huh.Field
	values := make(map[string]*string)
	for _, name := range names {
		if answers[name] != "" {
			continue
		}
		v := new(string)
		values[name] = v
		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("Enter a value for %q", name)).
			Value(v).
			Validate(validateAnswer))
	}

	if len(fields) == 0 {
		return answers, nil
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCatppuccin())
	if err := form.Run(); err != nil {
		return nil, NormalizeAbort(err)
	}

	for name, v := range values {
		answers[name] = *v
	}
	return answers, nil
}

func validateAnswer(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("value cannot be empty")
	}
	return nil
}

// PromptTemplateName asks for the display name of a new template.
func PromptTemplateName() (string, error) {
	var name string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What is the template name?").
				Placeholder("React Component").
				Value(&name).
				Validate(validateTemplateName),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return "", NormalizeAbort(err)
	}

	return name, nil
}

func validateTemplateName(s string) error {
	if templates.Slug(s) == "" {
		return fmt.Errorf("template name must contain letters or digits")
	}
	return nil
}

func Confirm(title string) (bool, error) {
	var confirmed bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return false, NormalizeAbort(err)
	}

	return confirmed, nil
}
