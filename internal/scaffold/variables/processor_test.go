package variables

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
)

type fakeGit map[string]string

func (f fakeGit) Lookup(_ context.Context, field string) (string, error) {
	v, ok := f[field]
	if !ok {
		return "", errors.New("not a git repository")
	}
	return v, nil
}

func newTestProcessor(opts ...Option) *Processor {
	base := []Option{
		WithCounterStore(counter.NewMemoryStore()),
		WithGit(fakeGit{"branch": "main", "author": "Jane Doe", "email": "jane@example.com", "repo": "widgets"}),
		WithEnvLookup(func(name string) (string, bool) {
			if name == "APP_ENV" {
				return "staging", true
			}
			return "", false
		}),
		WithClock(func() time.Time { return time.Date(2024, time.March, 7, 9, 5, 3, 0, time.UTC) }),
		WithUUID(func() string { return "123e4567-e89b-12d3-a456-426614174000" }),
		WithLogger(log.New(io.Discard)),
	}
	return NewProcessor(append(base, opts...)...)
}

func TestProcessor_Resolve(t *testing.T) {
	p := newTestProcessor()
	inputs := map[string]string{"filename": "my file", "name": "MyComponent"}

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"input prefix", "${input.filename}", "my file"},
		{"input prefix missing", "${input.missing}", ""},
		{"input prefix with transform", "${input.filename:kebabcase}", "my-file"},
		{"chained transform", "${filename:pascalcase}", "MyFile"},
		{"chained left to right", "${filename:snakecase:uppercase}", "MY_FILE"},
		{"unknown transform skipped", "${name:reverse:kebabcase}", "my-component"},
		{"input without params falls through", "${filename}", "${filename}"},
		{"unknown name unchanged", "${package.version}", "${package.version}"},
		{"not a token", "filename", "filename"},
		{"missing closing brace", "${filename", "${filename"},

		{"date default", "${date}", "2024-03-07"},
		{"date with format", "${date:DD/MM/YYYY}", "07/03/2024"},
		{"time keeps colons", "${time:HH:mm:ss}", "09:05:03"},
		{"now alias", "${now:YYYYMMDD}", "20240307"},

		{"uuid", "${uuid}", "123e4567-e89b-12d3-a456-426614174000"},
		{"uuid short", "${uuid:short}", "123e4567e89b"},

		{"env set", "${env:APP_ENV}", "staging"},
		{"env default", "${env:MISSING:fallback}", "fallback"},
		{"env unset", "${env:MISSING}", ""},

		{"git default field", "${git}", "main"},
		{"git author", "${git:author}", "Jane Doe"},
		{"git repo", "${git:repo}", "widgets"},
		{"git failure is empty", "${git:tag}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Resolve(context.Background(), tt.token, inputs))
		})
	}
}

func TestProcessor_InputOverridesGenerator(t *testing.T) {
	p := newTestProcessor()
	got := p.Resolve(context.Background(), "${date:uppercase}", map[string]string{"date": "friday"})
	assert.Equal(t, "FRIDAY", got)
}

func TestProcessor_CounterMonotonic(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, p.Resolve(ctx, "${counter:start=5:step=2}", nil))
	}
	assert.Equal(t, []string{"5", "7", "9"}, got)
}

func TestProcessor_CounterPaddingAndIndependentKeys(t *testing.T) {
	p := newTestProcessor()
	ctx := context.Background()

	assert.Equal(t, "001", p.Resolve(ctx, "${counter:padding=3}", nil))
	assert.Equal(t, "1", p.Resolve(ctx, "${counter}", nil))
	assert.Equal(t, "002", p.Resolve(ctx, "${counter:padding=3}", nil))
	assert.Equal(t, "2", p.Resolve(ctx, "${counter}", nil))
	assert.Equal(t, "10", p.Resolve(ctx, "${counter:start=10}", nil))
}

func TestProcessor_CounterConcurrent(t *testing.T) {
	store := counter.NewMemoryStore()
	p := newTestProcessor(WithCounterStore(store))

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make([]string, 0, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := p.Resolve(context.Background(), "${counter:padding=2}", nil)
			mu.Lock()
			seen = append(seen, v)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(seen)
	require.Len(t, seen, n)
	for i := 1; i < n; i++ {
		assert.NotEqual(t, seen[i-1], seen[i])
	}
	assert.Equal(t, "01", seen[0])
	assert.Equal(t, "50", seen[n-1])
}

func TestParseCounterOptions(t *testing.T) {
	assert.Equal(t, CounterOptions{Start: 1, Step: 1}, ParseCounterOptions(nil))
	assert.Equal(t,
		CounterOptions{Start: 3, Step: 5, Padding: 4},
		ParseCounterOptions([]string{"start=3", "step=5", "padding=4"}),
	)
	assert.Equal(t,
		CounterOptions{Start: 1, Step: 1},
		ParseCounterOptions([]string{"start=abc", "colour=red", "step"}),
	)
}

func TestCounterKey(t *testing.T) {
	assert.Equal(t, "default", CounterKey(nil))
	assert.Equal(t, "start=5:step=2", CounterKey([]string{"start=5", "step=2"}))
}

func TestIsCounter(t *testing.T) {
	assert.True(t, IsCounter("${counter}"))
	assert.True(t, IsCounter("${counter:start=2}"))
	assert.False(t, IsCounter("${counters}"))
	assert.False(t, IsCounter("counter"))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2023, time.December, 31, 23, 59, 1, 0, time.UTC)
	assert.Equal(t, "2023-12-31", FormatDate(ts, ""))
	assert.Equal(t, "2023-12-31 23:59:01", FormatDate(ts, "YYYY-MM-DD HH:mm:ss"))
	assert.Equal(t, "12/12", FormatDate(ts, "MM/MM"))
}
