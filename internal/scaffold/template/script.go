package template

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/google/uuid"
	"github.com/ohler55/ojg/jp"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/variables"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/words"
)

// Engine evaluates the bodies of {{{ }}} and ${{ }} blocks. Expressions only
// see the namespace and a fixed set of string helpers; there is no access to
// the filesystem, network or process.
type Engine struct {
	Now     func() time.Time
	NewUUID func() string
}

func NewEngine() *Engine {
	return &Engine{Now: time.Now, NewUUID: uuid.NewString}
}

var assignment = regexp.MustCompile(`(?s)^(?:(?:let|const|var)\s+)?([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s*=\s*([^=].*)$`)

// Bindings returns the expression environment for ns. Every top-level key is
// bound directly and the whole tree is also bound as "variables".
func (e *Engine) Bindings(ns *types.Namespace) map[string]any {
	snapshot := ns.Snapshot()

	env := map[string]any{
		"capitalize": e.transformer(words.Capitalize),
		"camelcase":  e.transformer(words.CamelCase),
		"pascalcase": e.transformer(words.PascalCase),
		"snakecase":  e.transformer(words.SnakeCase),
		"kebabcase":  e.transformer(words.KebabCase),
		"transform": func(v any, kind string) string {
			return words.Transform(types.Stringify(v), words.Kind(kind))
		},
		"datefmt": func(format string) string {
			return variables.FormatDate(e.Now(), format)
		},
		"uuid": func() string {
			return e.NewUUID()
		},
		"jsonpath": func(selector string) (any, error) {
			x, err := jp.ParseString(selector)
			if err != nil {
				return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
			}
			results := x.Get(snapshot)
			switch len(results) {
			case 0:
				return nil, nil
			case 1:
				return results[0], nil
			default:
				return results, nil
			}
		},
	}

	for k, v := range snapshot {
		env[k] = v
	}
	env["variables"] = snapshot
	return env
}

func (e *Engine) transformer(kind words.Kind) func(any) string {
	return func(v any) string {
		return words.Transform(types.Stringify(v), kind)
	}
}

// Eval evaluates a single expression against ns. Names missing from ns fail
// to compile; variables.name ?? "default" reads an optional value.
func (e *Engine) Eval(code string, ns *types.Namespace) (any, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return e.eval(code, e.Bindings(ns))
}

func (e *Engine) eval(code string, env map[string]any) (any, error) {
	program, err := expr.Compile(code, expr.Env(env))
	if err != nil {
		return nil, err
	}
	return expr.Run(program, env)
}

// Exec runs the statements of a silent block in order. Assignments of the
// form path = expression write into ns (a leading "variables." is optional)
// and are visible to the statements that follow. Other statements are
// evaluated and their value discarded. Execution stops at the first error.
func (e *Engine) Exec(code string, ns *types.Namespace) error {
	for _, stmt := range SplitStatements(code) {
		if m := assignment.FindStringSubmatch(stmt); m != nil {
			value, err := e.eval(m[2], e.Bindings(ns))
			if err != nil {
				return fmt.Errorf("assigning %s: %w", m[1], err)
			}
			ns.Set(strings.TrimPrefix(m[1], "variables."), value)
			continue
		}
		if _, err := e.eval(stmt, e.Bindings(ns)); err != nil {
			return err
		}
	}
	return nil
}

// SplitStatements splits a block body on ';' and newlines that are outside
// strings and brackets. Comments are dropped. A newline does not end a
// statement when the line ends with, or the next line starts with, an
// operator.
func SplitStatements(code string) []string {
	var (
		stmts   []string
		cur     strings.Builder
		depth   int
		quote   byte
		escaped bool
	)

	flush := func() {
		s := strings.TrimSpace(cur.String())
		if s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(code); i++ {
		c := code[i]

		if quote != 0 {
			cur.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			cur.WriteByte(c)
		case c == '/' && i+1 < len(code) && code[i+1] == '/':
			for i < len(code) && code[i] != '\n' {
				i++
			}
			i--
		case c == '/' && i+1 < len(code) && code[i+1] == '*':
			end := strings.Index(code[i+2:], "*/")
			if end < 0 {
				i = len(code)
				break
			}
			i += end + 3
		case c == '(' || c == '[' || c == '{':
			depth++
			cur.WriteByte(c)
		case c == ')' || c == ']' || c == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(c)
		case c == ';' && depth == 0:
			flush()
		case c == '\n' && depth == 0:
			if continues(cur.String(), code[i+1:]) {
				cur.WriteByte(' ')
				for i+1 < len(code) && (code[i+1] == ' ' || code[i+1] == '\t') {
					i++
				}
				continue
			}
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return stmts
}

const (
	trailingOperators = "+-*/%?:&|=<>!.,("
	leadingOperators  = "+*/%?:&|=<>.,"
)

func continues(before, after string) bool {
	prev := strings.TrimRight(before, " \t\r")
	if prev == "" {
		return false
	}
	if strings.IndexByte(trailingOperators, prev[len(prev)-1]) >= 0 {
		return true
	}
	next := strings.TrimLeft(after, " \t\r\n")
	if next == "" || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/*") {
		return false
	}
	return strings.IndexByte(leadingOperators, next[0]) >= 0
}
