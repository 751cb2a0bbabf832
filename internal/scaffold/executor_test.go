package scaffold

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanexperiences/boilerplate/internal/templates"
)

func testFiles(names ...string) []templates.File {
	files := make([]templates.File, len(names))
	for i, n := range names {
		files[i] = templates.File{InputPath: "/tpl/" + n, TargetPath: n}
	}
	return files
}

func TestFileExecutor_Sequential(t *testing.T) {
	var order []string
	exec := newFileExecutor(testFiles("a", "b", "c"), false, func(_ context.Context, f templates.File) FileResult {
		order = append(order, f.TargetPath)
		return FileResult{File: f}
	})

	results := exec.Execute(context.Background())

	assert.Equal(t, []string{"a", "b", "c"}, order)
	require.Len(t, results, 3)
	assert.Equal(t, "c", results[2].File.TargetPath)
}

func TestFileExecutor_ParallelKeepsTemplateOrder(t *testing.T) {
	var calls atomic.Int32
	exec := newFileExecutor(testFiles("a", "b", "c", "d", "e"), true, func(_ context.Context, f templates.File) FileResult {
		calls.Add(1)
		return FileResult{File: f, OutputPath: "/out/" + f.TargetPath}
	})
	exec.workers = 2

	results := exec.Execute(context.Background())

	assert.Equal(t, int32(5), calls.Load())
	for i, name := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, "/out/"+name, results[i].OutputPath)
	}
}

func TestFileExecutor_FailureDoesNotStopSiblings(t *testing.T) {
	boom := errors.New("boom")
	exec := newFileExecutor(testFiles("a", "b", "c"), true, func(_ context.Context, f templates.File) FileResult {
		if f.TargetPath == "b" {
			return FileResult{File: f, Error: boom}
		}
		return FileResult{File: f, OutputPath: f.TargetPath}
	})

	results := exec.Execute(context.Background())

	assert.NoError(t, results[0].Error)
	assert.ErrorIs(t, results[1].Error, boom)
	assert.NoError(t, results[2].Error)
	assert.Equal(t, "c", results[2].OutputPath)
}

func TestFileExecutor_CancelledContextSkipsFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	exec := newFileExecutor(testFiles("a", "b"), false, func(_ context.Context, f templates.File) FileResult {
		ran = true
		return FileResult{File: f}
	})

	results := exec.Execute(ctx)

	assert.False(t, ran)
	for _, r := range results {
		assert.True(t, r.Skipped)
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}
