package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/artisanexperiences/boilerplate/internal/fs"
	"github.com/artisanexperiences/boilerplate/internal/utils"
)

const defaultEnvFile = ".env"

// fileLocks ensures only one goroutine modifies a given file at a time
var (
	fileLocks   = make(map[string]*sync.Mutex)
	fileLocksMu sync.Mutex
)

func getFileLock(path string) *sync.Mutex {
	fileLocksMu.Lock()
	defer fileLocksMu.Unlock()

	if _, exists := fileLocks[path]; !exists {
		fileLocks[path] = &sync.Mutex{}
	}
	return fileLocks[path]
}

func envFile(file string) string {
	if file == "" {
		return defaultEnvFile
	}
	return file
}

// EnvReadStep stores the value of an .env key for later steps.
type EnvReadStep struct {
	key     string
	storeAs string
	file    string
}

func NewEnvReadStep(cfg Config) *EnvReadStep {
	return &EnvReadStep{key: cfg.Key, storeAs: cfg.StoreAs, file: envFile(cfg.File)}
}

func (s *EnvReadStep) Name() string {
	return EnvRead
}

func (s *EnvReadStep) Run(_ context.Context, sc *Context, opts Options) error {
	env := utils.ReadEnvFile(sc.FS, sc.Dir, s.file)
	if !utils.EnvExists(env, s.key) {
		return fmt.Errorf("env.read: %s not found in %s", s.key, s.file)
	}
	sc.SetVar(s.storeAs, env[s.key])
	if opts.Verbose {
		sc.Logger.Info("stored env value", "key", s.key, "as", s.storeAs)
	}
	return nil
}

func (s *EnvReadStep) Condition(sc *Context) bool {
	return fs.Exists(sc.FS, filepath.Join(sc.Dir, s.file))
}

// EnvWriteStep sets KEY=value in an .env file, replacing an existing entry
// or appending a new one.
type EnvWriteStep struct {
	key   string
	value string
	file  string
}

func NewEnvWriteStep(cfg Config) *EnvWriteStep {
	return &EnvWriteStep{key: cfg.Key, value: cfg.Value, file: envFile(cfg.File)}
}

func (s *EnvWriteStep) Name() string {
	return EnvWrite
}

func (s *EnvWriteStep) Condition(sc *Context) bool {
	return true
}

func (s *EnvWriteStep) Run(_ context.Context, sc *Context, opts Options) error {
	value := sc.expand(s.value)
	filePath := filepath.Join(sc.Dir, sc.expand(s.file))

	if opts.DryRun {
		sc.Logger.Info("would write env", "key", s.key, "file", filePath)
		return nil
	}

	lock := getFileLock(filePath)
	lock.Lock()
	defer lock.Unlock()

	perm := os.FileMode(0644)
	var existing []byte
	if info, err := sc.FS.Stat(filePath); err == nil {
		perm = info.Mode().Perm()
		if existing, err = fs.ReadFile(sc.FS, filePath); err != nil {
			return fmt.Errorf("reading %s: %w", filePath, err)
		}
	}

	content := SetEnvLine(string(existing), s.key, value)
	if err := fs.WriteFile(sc.FS, filePath, []byte(content), perm); err != nil {
		return fmt.Errorf("writing %s: %w", filePath, err)
	}

	sc.Logger.Info("wrote env", "key", s.key, "file", filePath)
	return nil
}

// SetEnvLine returns content with the first KEY= line replaced by
// key=value, or with key=value appended. The result ends in a newline.
func SetEnvLine(content, key, value string) string {
	entry := fmt.Sprintf("%s=%s", key, value)
	if content == "" {
		return entry + "\n"
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, key+"=") || strings.HasPrefix(line, key+" ") {
			lines[i] = entry
			content = strings.Join(lines, "\n")
			if !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			return content
		}
	}

	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + entry + "\n"
}
