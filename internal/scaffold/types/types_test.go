package types

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptMode_Allow(t *testing.T) {
	tests := []struct {
		name string
		mode PromptMode
		want bool
	}{
		{"interactive terminal", PromptMode{Interactive: true}, true},
		{"no terminal", PromptMode{}, false},
		{"no-interactive flag", PromptMode{Interactive: true, NoInteractive: true}, false},
		{"force", PromptMode{Interactive: true, Force: true}, false},
		{"ci", PromptMode{Interactive: true, CI: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.Allow())
		})
	}
}

func TestAnswers_LookupTreatsEmptyAsMissing(t *testing.T) {
	a := Answers{"name": "widget", "blank": ""}

	v, ok := a.Lookup("name")
	assert.True(t, ok)
	assert.Equal(t, "widget", v)

	_, ok = a.Lookup("blank")
	assert.False(t, ok)

	_, ok = a.Lookup("missing")
	assert.False(t, ok)
}

func TestNamespace_SetAndGet(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("package.version", "1.2.3")
	ns.SetVar("package.name", "widgets")
	ns.Set("enabled", true)

	assert.Equal(t, "1.2.3", ns.GetVar("package.version"))
	assert.Equal(t, "true", ns.GetVar("enabled"))
	assert.Equal(t, "", ns.GetVar("package.missing"))
	assert.True(t, ns.Has("package"))
	assert.False(t, ns.Has("package.version.major"))

	pkg, ok := ns.Get("package")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"version": "1.2.3", "name": "widgets"}, pkg)
}

func TestNamespace_SetReplacesScalarWithMapping(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("author", "Jane")
	ns.SetVar("author.email", "jane@example.com")

	assert.Equal(t, map[string]string{"author.email": "jane@example.com"}, ns.Flatten())
}

func TestNamespace_Flatten(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("filename", "Button")
	ns.SetVar("input.filename", "Button")
	ns.Merge("package", map[string]any{
		"version": "2.0.0",
		"private": true,
		"count":   float64(3),
	})
	ns.Set("env", map[string]any{"HOME": "/home/jane"})

	assert.Equal(t, map[string]string{
		"filename":        "Button",
		"input.filename":  "Button",
		"package.version": "2.0.0",
		"package.private": "true",
		"package.count":   "3",
		"env.HOME":        "/home/jane",
	}, ns.Flatten())

	assert.Equal(t, []string{
		"env.HOME", "filename", "input.filename", "package.count", "package.private", "package.version",
	}, ns.Keys())
}

func TestNamespace_FlattenReflectsLaterChanges(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("a", "1")
	first := ns.Flatten()
	ns.SetVar("a", "2")

	assert.Equal(t, "1", first["a"])
	assert.Equal(t, "2", ns.Flatten()["a"])
}

func TestNamespace_CloneIsIndependent(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("a.b", "1")

	clone := ns.Clone()
	clone.SetVar("a.b", "2")

	assert.Equal(t, "1", ns.GetVar("a.b"))
	assert.Equal(t, "2", clone.GetVar("a.b"))
}

func TestNamespace_Snapshot(t *testing.T) {
	ns := NewNamespace()
	ns.SetVar("package.name", "widgets")
	ns.Set("count", 2)

	assert.Equal(t, map[string]any{
		"package": map[string]any{"name": "widgets"},
		"count":   2,
	}, ns.Snapshot())
}

func TestNamespace_ConcurrentAccess(t *testing.T) {
	ns := NewNamespace()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ns.SetVar("shared.key", "v")
		}()
		go func() {
			defer wg.Done()
			_ = ns.Flatten()
		}()
	}
	wg.Wait()

	assert.Equal(t, "v", ns.GetVar("shared.key"))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "x", "x"},
		{"bool", false, "false"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"whole float", float64(10), "10"},
		{"fraction", 1.5, "1.5"},
		{"map sorted", map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
		{"slice", []any{"a", "b"}, `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stringify(tt.in))
		})
	}
}
