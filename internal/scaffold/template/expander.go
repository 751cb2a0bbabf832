// Package template expands placeholders in file content.
//
// Expansion runs four passes in a fixed order, each over a fresh tokenization
// of the previous pass's output:
//
//  1. {{{ code }}}   silent blocks, executed for their namespace assignments
//  2. ${{ expr }}    inline expressions, replaced by their value
//  3. ${name:param}  enhanced variables, resolved by the variable processor
//  4. ${key}         literal lookups in the flattened namespace
package template

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/variables"
)

type Expander struct {
	processor *variables.Processor
	engine    *Engine
	logger    *log.Logger
}

type ExpanderOption func(*Expander)

func WithEngine(e *Engine) ExpanderOption {
	return func(x *Expander) { x.engine = e }
}

func WithExpanderLogger(l *log.Logger) ExpanderOption {
	return func(x *Expander) { x.logger = l }
}

func NewExpander(processor *variables.Processor, opts ...ExpanderOption) *Expander {
	x := &Expander{processor: processor}
	for _, opt := range opts {
		opt(x)
	}
	if x.processor == nil {
		x.processor = variables.NewProcessor()
	}
	if x.engine == nil {
		x.engine = NewEngine()
	}
	if x.logger == nil {
		x.logger = logging.For("template")
	}
	return x
}

// Expand resolves every placeholder in content. Silent blocks may modify ns.
// Failures never abort: broken blocks are dropped, broken expressions become
// [Error: ...] markers and unresolved variables are left as written.
func (x *Expander) Expand(ctx context.Context, content string, ns *types.Namespace, answers map[string]string) string {
	content = x.RunSilentBlocks(content, ns)
	content = x.EvalExpressions(content, ns)
	content = x.ResolveVariables(ctx, content, answers)
	content = x.SubstituteLiterals(content, ns)
	return content
}

// RunSilentBlocks executes {{{ }}} blocks in source order and removes them. A
// line left holding only whitespace is dropped together with its line break.
func (x *Expander) RunSilentBlocks(content string, ns *types.Namespace) string {
	tokens := Lex(content, ModeContent)
	if !Has(tokens, SilentBlock) {
		return content
	}

	for _, tok := range tokens {
		if tok.Kind != SilentBlock {
			continue
		}
		if err := x.engine.Exec(tok.Body, ns); err != nil {
			x.logger.Warn("silent block failed", "err", firstLine(err.Error()))
		}
	}
	return collapseSilentBlocks(tokens)
}

// outputLine is one line of output and whether a silent block sat on it.
type outputLine struct {
	text  strings.Builder
	block bool
}

// collapseSilentBlocks renders tokens without their silent blocks. A line
// that held a block and is otherwise blank is dropped with its line break.
func collapseSilentBlocks(tokens []Token) string {
	lines := []*outputLine{{}}
	for _, tok := range tokens {
		cur := lines[len(lines)-1]
		if tok.Kind == SilentBlock {
			cur.block = true
			continue
		}
		parts := strings.Split(tok.Raw, "\n")
		cur.text.WriteString(parts[0])
		for _, part := range parts[1:] {
			next := &outputLine{}
			next.text.WriteString(part)
			lines = append(lines, next)
		}
	}

	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		text := l.text.String()
		if l.block && strings.TrimSpace(text) == "" {
			continue
		}
		kept = append(kept, text)
	}
	return strings.Join(kept, "\n")
}

// EvalExpressions replaces each ${{ }} block with its stringified value.
// Blocks are evaluated concurrently and spliced in once all have finished.
func (x *Expander) EvalExpressions(content string, ns *types.Namespace) string {
	tokens := Lex(content, ModeContent)
	if !Has(tokens, ExpressionBlock) {
		return content
	}

	env := x.engine.Bindings(ns)
	results := make([]string, len(tokens))
	var wg sync.WaitGroup

	for i, tok := range tokens {
		if tok.Kind != ExpressionBlock {
			continue
		}
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			code = strings.TrimSpace(code)
			if code == "" {
				return
			}
			value, err := x.engine.eval(code, env)
			if err != nil {
				msg := firstLine(err.Error())
				x.logger.Warn("expression failed", "expr", code, "err", msg)
				results[i] = "[Error: " + msg + "]"
				return
			}
			results[i] = types.Stringify(value)
		}(i, tok.Body)
	}
	wg.Wait()

	return Render(tokens, func(i int, tok Token) (string, bool) {
		if tok.Kind != ExpressionBlock {
			return "", false
		}
		return results[i], true
	})
}

// ResolveVariables passes every ${...} token to the variable processor and
// keeps the processor's answer only when it differs from the token, leaving
// plain lookups for SubstituteLiterals. Counters are resolved one at a time in
// document order so their values follow the text; everything else runs
// concurrently.
func (x *Expander) ResolveVariables(ctx context.Context, content string, answers map[string]string) string {
	tokens := Lex(content, ModeContent)
	if !Has(tokens, EnhancedVar) {
		return content
	}

	results := make([]string, len(tokens))
	var wg sync.WaitGroup

	for i, tok := range tokens {
		if tok.Kind != EnhancedVar || !variables.IsCounter(tok.Raw) {
			continue
		}
		results[i] = x.processor.Resolve(ctx, tok.Raw, answers)
	}

	for i, tok := range tokens {
		if tok.Kind != EnhancedVar || variables.IsCounter(tok.Raw) {
			continue
		}
		wg.Add(1)
		go func(i int, raw string) {
			defer wg.Done()
			results[i] = x.processor.Resolve(ctx, raw, answers)
		}(i, tok.Raw)
	}
	wg.Wait()

	return Render(tokens, func(i int, tok Token) (string, bool) {
		if tok.Kind != EnhancedVar || results[i] == tok.Raw {
			return "", false
		}
		return results[i], true
	})
}

// SubstituteLiterals replaces ${key} and ${variables.key} with values from
// the flattened namespace. Substituted text is not scanned again.
func (x *Expander) SubstituteLiterals(content string, ns *types.Namespace) string {
	tokens := Lex(content, ModeContent)
	if !Has(tokens, EnhancedVar) {
		return content
	}

	flat := ns.Flatten()
	return Render(tokens, func(_ int, tok Token) (string, bool) {
		if tok.Kind != EnhancedVar {
			return "", false
		}
		if v, ok := flat[tok.Body]; ok {
			return v, true
		}
		if key, ok := strings.CutPrefix(tok.Body, "variables."); ok {
			if v, ok := flat[key]; ok {
				return v, true
			}
		}
		return "", false
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return strings.TrimSpace(s)
}
