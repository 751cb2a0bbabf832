package steps

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/types"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/validation"
)

// substituteVars replaces ${name} with the stored value of name.
func substituteVars(s string, vars types.Answers) string {
	for k, v := range vars {
		s = strings.ReplaceAll(s, "${"+k+"}", v)
	}
	return s
}

func newMemContext(dir string) *Context {
	return &Context{
		Dir:    dir,
		FS:     memfs.New(),
		Expand: substituteVars,
		Logger: log.New(io.Discard),
	}
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{BashRun, CommandRun, EnvRead, EnvWrite, FileCopy}, ListRegistered())

	step, err := Create(EnvWrite, Config{Key: "APP_NAME", Value: "${name}"})
	require.NoError(t, err)
	assert.Equal(t, EnvWrite, step.Name())

	_, err = Create("db.create", Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available")
}

func TestRegister_DuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(CommandRun, func(cfg Config) Step { return NewCommandRunStep(cfg.Command, "") })
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"command ok", Config{Name: CommandRun, Command: "npm install"}, ""},
		{"command missing", Config{Name: CommandRun}, `"command"`},
		{"bash missing", Config{Name: BashRun, Command: "  "}, `"command"`},
		{"copy ok", Config{Name: FileCopy, From: ".env.example", To: ".env"}, ""},
		{"copy missing to", Config{Name: FileCopy, From: ".env.example"}, `"to"`},
		{"copy escapes", Config{Name: FileCopy, From: "../secrets", To: ".env"}, "escapes"},
		{"copy absolute", Config{Name: FileCopy, From: "/etc/passwd", To: ".env"}, "must be relative"},
		{"env read missing store_as", Config{Name: EnvRead, Key: "APP_KEY"}, `"store_as"`},
		{"env write ok", Config{Name: EnvWrite, Key: "APP_NAME"}, ""},
		{"missing name", Config{}, `"name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, validation.ErrInvalid)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBuild(t *testing.T) {
	disabled := false
	list, err := Build([]Config{
		{Name: CommandRun, Command: "npm install"},
		{Name: EnvWrite, Key: "A", Enabled: &disabled},
		{Name: FileCopy, From: "a", To: "b"},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, CommandRun, list[0].Name())
	assert.Equal(t, FileCopy, list[1].Name())

	_, err = Build([]Config{{Name: CommandRun, Command: "ls"}, {Name: FileCopy}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 2")

	_, err = Build([]Config{{Name: "php.artisan"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown step")
}

func TestSetEnvLine(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{"empty file", "", "APP_NAME=shop\n"},
		{"append", "DEBUG=true\n", "DEBUG=true\nAPP_NAME=shop\n"},
		{"append adds newline", "DEBUG=true", "DEBUG=true\nAPP_NAME=shop\n"},
		{"replace", "APP_NAME=old\nDEBUG=true\n", "APP_NAME=shop\nDEBUG=true\n"},
		{"replace spaced", "APP_NAME = old", "APP_NAME=shop\n"},
		{"prefix is not a match", "APP_NAME_SHORT=x\n", "APP_NAME_SHORT=x\nAPP_NAME=shop\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SetEnvLine(tt.content, "APP_NAME", "shop"))
		})
	}
}

func TestEnvSteps(t *testing.T) {
	sc := newMemContext("/out")
	sc.SetVar("name", "shop")
	require.NoError(t, fs.WriteFile(sc.FS, "/out/.env", []byte("APP_KEY=secret\n"), 0600))

	list, err := Build([]Config{
		{Name: EnvWrite, Key: "APP_NAME", Value: "${name}"},
		{Name: EnvRead, Key: "APP_KEY", StoreAs: "key"},
		{Name: EnvWrite, Key: "COPY_OF_KEY", Value: "${key}", File: "config/.env.local"},
	})
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), list, sc, Options{}))

	data, err := fs.ReadFile(sc.FS, "/out/.env")
	require.NoError(t, err)
	assert.Equal(t, "APP_KEY=secret\nAPP_NAME=shop\n", string(data))

	info, err := sc.FS.Stat("/out/.env")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	assert.Equal(t, "secret", sc.GetVar("key"))

	local, err := fs.ReadFile(sc.FS, "/out/config/.env.local")
	require.NoError(t, err)
	assert.Equal(t, "COPY_OF_KEY=secret\n", string(local))
}

func TestEnvRead_MissingKey(t *testing.T) {
	sc := newMemContext("/out")
	require.NoError(t, fs.WriteFile(sc.FS, "/out/.env", []byte("OTHER=1\n"), 0644))

	err := NewEnvReadStep(Config{Key: "APP_KEY", StoreAs: "key"}).Run(context.Background(), sc, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_KEY not found")
}

func TestEnvRead_ConditionNeedsFile(t *testing.T) {
	sc := newMemContext("/out")
	assert.False(t, NewEnvReadStep(Config{Key: "APP_KEY", StoreAs: "key"}).Condition(sc))
}

func TestFileCopyStep(t *testing.T) {
	sc := newMemContext("/out")
	sc.SetVar("module", "billing")
	require.NoError(t, fs.WriteFile(sc.FS, "/out/.env.example", []byte("A=1\n"), 0644))

	step := NewFileCopyStep(".env.example", "${module}/.env")
	assert.True(t, step.Condition(sc))
	require.NoError(t, step.Run(context.Background(), sc, Options{}))

	data, err := fs.ReadFile(sc.FS, "/out/billing/.env")
	require.NoError(t, err)
	assert.Equal(t, "A=1\n", string(data))

	assert.False(t, NewFileCopyStep("missing", "x").Condition(sc))
}

func TestDryRunTouchesNothing(t *testing.T) {
	sc := newMemContext("/out")
	require.NoError(t, fs.WriteFile(sc.FS, "/out/a.txt", []byte("a"), 0644))

	list, err := Build([]Config{
		{Name: FileCopy, From: "a.txt", To: "b.txt"},
		{Name: EnvWrite, Key: "A", Value: "1"},
		{Name: CommandRun, Command: "touch c.txt"},
	})
	require.NoError(t, err)
	require.NoError(t, Run(context.Background(), list, sc, Options{DryRun: true}))

	assert.False(t, fs.Exists(sc.FS, "/out/b.txt"))
	assert.False(t, fs.Exists(sc.FS, "/out/.env"))
}

func TestCommandRunStep(t *testing.T) {
	t.Run("name returns command.run", func(t *testing.T) {
		assert.Equal(t, CommandRun, NewCommandRunStep("echo hello", "").Name())
		assert.Equal(t, BashRun, NewBashRunStep("echo hello", "").Name())
	})

	t.Run("stores trimmed output when store_as is set", func(t *testing.T) {
		dir := t.TempDir()
		sc := &Context{Dir: dir, FS: osfs.New(dir), Expand: substituteVars, Logger: log.New(io.Discard)}
		sc.SetVar("name", "world")

		err := NewCommandRunStep("echo '  hello ${name}  '", "Greeting").Run(context.Background(), sc, Options{})

		require.NoError(t, err)
		assert.Equal(t, "hello world", sc.GetVar("Greeting"))
	})

	t.Run("runs in the target directory", func(t *testing.T) {
		dir := t.TempDir()
		sc := &Context{Dir: dir, FS: osfs.New("/"), Logger: log.New(io.Discard)}

		require.NoError(t, NewCommandRunStep("echo hi > made.txt", "").Run(context.Background(), sc, Options{}))
		assert.True(t, fs.Exists(sc.FS, dir+"/made.txt"))
	})

	t.Run("does not store output on command failure", func(t *testing.T) {
		sc := &Context{Dir: t.TempDir(), Logger: log.New(io.Discard)}

		err := NewCommandRunStep("echo 'error message' && exit 1", "ErrorMsg").Run(context.Background(), sc, Options{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error message")
		assert.Equal(t, "", sc.GetVar("ErrorMsg"))
	})
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	sc := &Context{Dir: t.TempDir(), Logger: log.New(io.Discard)}

	list := []Step{
		NewCommandRunStep("exit 3", ""),
		NewCommandRunStep("echo never", "after"),
	}
	err := Run(context.Background(), list, sc, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1 (command.run)")
	assert.Equal(t, "", sc.GetVar("after"))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := newMemContext("/out")
	err := Run(ctx, []Step{NewEnvWriteStep(Config{Key: "A"})}, sc, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, fs.Exists(sc.FS, "/out/.env"))
}
