// Package words converts placeholder values between naming conventions.
package words

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind names a case transform that can follow a placeholder name, as in
// ${filename:pascalcase} or {filename:kebabcase}.
type Kind string

const (
	Uppercase  Kind = "uppercase"
	Lowercase  Kind = "lowercase"
	Capitalize Kind = "capitalize"
	CamelCase  Kind = "camelcase"
	PascalCase Kind = "pascalcase"
	SnakeCase  Kind = "snakecase"
	KebabCase  Kind = "kebabcase"
	Trim       Kind = "trim"
)

// Kinds lists every supported transform in display order.
var Kinds = []Kind{
	Uppercase, Lowercase, Capitalize, CamelCase, PascalCase, SnakeCase, KebabCase, Trim,
}

var (
	separatorRun  = regexp.MustCompile(`[-_\s]+(.)?`)
	lowerUpper    = regexp.MustCompile(`([a-z])([A-Z])`)
	spaceDashRun  = regexp.MustCompile(`[\s-]+`)
	spaceUnderRun = regexp.MustCompile(`[\s_]+`)
)

// Parse reports whether name is a known transform.
func Parse(name string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == name {
			return k, true
		}
	}
	return Kind(name), false
}

// Transform applies kind to value. Unknown kinds and empty values are
// returned unchanged.
func Transform(value string, kind Kind) string {
	if value == "" {
		return value
	}

	switch kind {
	case Uppercase:
		return strings.ToUpper(value)
	case Lowercase:
		return strings.ToLower(value)
	case Capitalize:
		return mapFirstRune(value, unicode.ToUpper)
	case CamelCase:
		return mapFirstRune(joinSeparated(value), unicode.ToLower)
	case PascalCase:
		return mapFirstRune(joinSeparated(value), unicode.ToUpper)
	case SnakeCase:
		value = lowerUpper.ReplaceAllString(value, "${1}_${2}")
		value = spaceDashRun.ReplaceAllString(value, "_")
		return strings.ToLower(value)
	case KebabCase:
		value = lowerUpper.ReplaceAllString(value, "${1}-${2}")
		value = spaceUnderRun.ReplaceAllString(value, "-")
		return strings.ToLower(value)
	case Trim:
		return strings.TrimSpace(value)
	default:
		return value
	}
}

// Apply chains transforms left to right.
func Apply(value string, kinds ...Kind) string {
	for _, k := range kinds {
		value = Transform(value, k)
	}
	return value
}

// joinSeparated drops runs of '-', '_' and whitespace, upper-casing the
// character that follows each run.
func joinSeparated(value string) string {
	return separatorRun.ReplaceAllStringFunc(value, func(match string) string {
		sub := separatorRun.FindStringSubmatch(match)
		if len(sub) < 2 || sub[1] == "" {
			return ""
		}
		return strings.ToUpper(sub[1])
	})
}

func mapFirstRune(value string, fn func(rune) rune) string {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(fn(r)) + value[size:]
}
