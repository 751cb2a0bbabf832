// Package validation provides composable rules for checking template
// manifests, configuration and command input before any file is written.
package validation

import (
	"errors"
	"fmt"
)

// Rule checks a single property of a value of type T.
type Rule[T any] interface {
	// Validate returns an error describing the violation, or nil.
	Validate(v T) error
}

// Validator aggregates rules for one subject. Subject names what is being
// validated and prefixes every error.
type Validator[T any] struct {
	Subject string
	Rules   []Rule[T]
}

func NewValidator[T any](subject string) *Validator[T] {
	return &Validator[T]{
		Subject: subject,
		Rules:   make([]Rule[T], 0),
	}
}

func (v *Validator[T]) AddRule(rule Rule[T]) *Validator[T] {
	v.Rules = append(v.Rules, rule)
	return v
}

// Validate runs every rule and joins all failures.
func (v *Validator[T]) Validate(value T) error {
	if len(v.Rules) == 0 {
		return nil
	}

	var errs []error
	for _, rule := range v.Rules {
		if err := rule.Validate(value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("validating %s: %w", v.Subject, errors.Join(errs...))
	}

	return nil
}

// ValidateFirst fails fast on the first violated rule.
func (v *Validator[T]) ValidateFirst(value T) error {
	for _, rule := range v.Rules {
		if err := rule.Validate(value); err != nil {
			return fmt.Errorf("validating %s: %w", v.Subject, err)
		}
	}
	return nil
}

func (v *Validator[T]) HasRules() bool {
	return len(v.Rules) > 0
}

func (v *Validator[T]) RuleCount() int {
	return len(v.Rules)
}
