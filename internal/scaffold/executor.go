package scaffold

import (
	"context"
	"runtime"
	"sync"

	"github.com/artisanexperiences/boilerplate/internal/templates"
)

// FileResult is the outcome of generating one template file.
type FileResult struct {
	File       templates.File
	OutputPath string
	Binary     bool
	Skipped    bool
	Error      error
}

// fileExecutor runs a function over every template file and collects one
// result per file, in template order.
type fileExecutor struct {
	files    []templates.File
	parallel bool
	workers  int
	run      func(ctx context.Context, f templates.File) FileResult
}

func newFileExecutor(files []templates.File, parallel bool, run func(context.Context, templates.File) FileResult) *fileExecutor {
	return &fileExecutor{
		files:    files,
		parallel: parallel,
		workers:  runtime.NumCPU(),
		run:      run,
	}
}

func (e *fileExecutor) Execute(ctx context.Context) []FileResult {
	results := make([]FileResult, len(e.files))

	if !e.parallel || len(e.files) < 2 {
		for i, f := range e.files {
			results[i] = e.executeFile(ctx, f)
		}
		return results
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, max(e.workers, 1))

	for i, f := range e.files {
		wg.Add(1)
		go func(i int, f templates.File) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.executeFile(ctx, f)
		}(i, f)
	}

	wg.Wait()
	return results
}

func (e *fileExecutor) executeFile(ctx context.Context, f templates.File) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{File: f, Skipped: true, Error: err}
	}
	return e.run(ctx, f)
}
