package template

import (
	"strings"
)

// Kind identifies the grammar a token was matched by.
type Kind int

const (
	Literal Kind = iota
	SilentBlock
	ExpressionBlock
	EnhancedVar
	PathVar
)

func (k Kind) String() string {
	switch k {
	case Literal:
		return "literal"
	case SilentBlock:
		return "silent"
	case ExpressionBlock:
		return "expression"
	case EnhancedVar:
		return "variable"
	case PathVar:
		return "path"
	default:
		return "unknown"
	}
}

// Mode selects which grammars the lexer recognises.
type Mode int

const (
	// ModeContent recognises {{{ }}}, ${{ }} and ${ }.
	ModeContent Mode = iota
	// ModePath recognises {name} and {name:transform}. A brace preceded by a
	// backslash is literal.
	ModePath
)

// Token is a span of the input. Raw is the exact source text; Body is the
// text between the delimiters.
type Token struct {
	Kind  Kind
	Start int
	End   int
	Raw   string
	Body  string
}

const (
	silentOpen  = "{{{"
	silentClose = "}}}"
	exprOpen    = "${{"
	exprClose   = "}}"
	varOpen     = "${"
)

// Lex splits input into tokens in a single left-to-right pass. At each
// position the longest opening delimiter wins. An opening delimiter without a
// matching close is treated as literal text. Concatenating every token's Raw
// reproduces input.
func Lex(input string, mode Mode) []Token {
	var tokens []Token
	litStart := 0

	emit := func(tok Token) {
		if litStart < tok.Start {
			tokens = append(tokens, Token{
				Kind:  Literal,
				Start: litStart,
				End:   tok.Start,
				Raw:   input[litStart:tok.Start],
			})
		}
		tokens = append(tokens, tok)
		litStart = tok.End
	}

	for i := 0; i < len(input); {
		var (
			tok Token
			ok  bool
		)
		switch mode {
		case ModePath:
			tok, ok = lexPath(input, i)
		default:
			tok, ok = lexContent(input, i)
		}
		if ok {
			emit(tok)
			i = tok.End
			continue
		}
		i++
	}

	if litStart < len(input) {
		tokens = append(tokens, Token{
			Kind:  Literal,
			Start: litStart,
			End:   len(input),
			Raw:   input[litStart:],
		})
	}
	return tokens
}

func lexContent(input string, i int) (Token, bool) {
	rest := input[i:]

	switch {
	case strings.HasPrefix(rest, silentOpen):
		return delimited(input, i, SilentBlock, silentOpen, silentClose)
	case strings.HasPrefix(rest, exprOpen):
		return delimited(input, i, ExpressionBlock, exprOpen, exprClose)
	case strings.HasPrefix(rest, varOpen):
		return variable(input, i, len(varOpen), EnhancedVar)
	}
	return Token{}, false
}

func lexPath(input string, i int) (Token, bool) {
	if input[i] != '{' || (i > 0 && input[i-1] == '\\') {
		return Token{}, false
	}
	return variable(input, i, 1, PathVar)
}

// delimited matches open ... close with a non-greedy body that may span
// lines.
func delimited(input string, i int, kind Kind, openDelim, closeDelim string) (Token, bool) {
	bodyStart := i + len(openDelim)
	n := strings.Index(input[bodyStart:], closeDelim)
	if n < 0 {
		return Token{}, false
	}
	end := bodyStart + n + len(closeDelim)
	return Token{
		Kind:  kind,
		Start: i,
		End:   end,
		Raw:   input[i:end],
		Body:  input[bodyStart : bodyStart+n],
	}, true
}

// variable matches a single-line, non-empty body without nested braces.
func variable(input string, i, openLen int, kind Kind) (Token, bool) {
	bodyStart := i + openLen
	for j := bodyStart; j < len(input); j++ {
		switch input[j] {
		case '}':
			if j == bodyStart {
				return Token{}, false
			}
			return Token{
				Kind:  kind,
				Start: i,
				End:   j + 1,
				Raw:   input[i : j+1],
				Body:  input[bodyStart:j],
			}, true
		case '{', '\n', '\r':
			return Token{}, false
		}
	}
	return Token{}, false
}

// Has reports whether tokens contains at least one token of kind.
func Has(tokens []Token, kind Kind) bool {
	for _, t := range tokens {
		if t.Kind == kind {
			return true
		}
	}
	return false
}

// Render concatenates tokens, asking replace for a substitute for every
// non-literal token. Tokens replace declines keep their source text.
func Render(tokens []Token, replace func(i int, tok Token) (string, bool)) string {
	var b strings.Builder
	for i, tok := range tokens {
		if tok.Kind != Literal {
			if s, ok := replace(i, tok); ok {
				b.WriteString(s)
				continue
			}
		}
		b.WriteString(tok.Raw)
	}
	return b.String()
}
