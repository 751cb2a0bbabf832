// Package variables resolves ${name:param...} placeholders: user inputs with
// chained case transforms and the built-in generators date, uuid, env,
// counter and git.
package variables

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/artisanexperiences/boilerplate/internal/git"
	"github.com/artisanexperiences/boilerplate/internal/logging"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/counter"
	"github.com/artisanexperiences/boilerplate/internal/scaffold/words"
)

// Generator names reserved by the processor.
const (
	GenDate    = "date"
	GenTime    = "time"
	GenNow     = "now"
	GenUUID    = "uuid"
	GenEnv     = "env"
	GenCounter = "counter"
	GenGit     = "git"

	DefaultDateFormat = "YYYY-MM-DD"
)

// Processor resolves single enhanced-variable tokens. It is safe for
// concurrent use; counter access is serialized by the store.
type Processor struct {
	counters counter.Store
	git      git.Info
	lookup   func(string) (string, bool)
	now      func() time.Time
	newUUID  func() string
	logger   *log.Logger
}

type Option func(*Processor)

func WithCounterStore(s counter.Store) Option {
	return func(p *Processor) { p.counters = s }
}

func WithGit(info git.Info) Option {
	return func(p *Processor) { p.git = info }
}

func WithEnvLookup(fn func(string) (string, bool)) Option {
	return func(p *Processor) { p.lookup = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(p *Processor) { p.now = fn }
}

func WithUUID(fn func() string) Option {
	return func(p *Processor) { p.newUUID = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		counters: counter.Default,
		lookup:   os.LookupEnv,
		now:      time.Now,
		newUUID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.git == nil {
		p.git = git.NewInfo(".")
	}
	if p.logger == nil {
		p.logger = logging.For("variables")
	}
	return p
}

// Split parses a ${name:param...} token into its name and params. ok is false
// when token is not delimited by ${ and }.
func Split(token string) (name string, params []string, ok bool) {
	if !strings.HasPrefix(token, "${") || !strings.HasSuffix(token, "}") || len(token) < 3 {
		return "", nil, false
	}
	parts := strings.Split(token[2:len(token)-1], ":")
	return parts[0], parts[1:], true
}

// IsCounter reports whether token is a ${counter...} placeholder. Callers use
// it to keep counter resolution in document order.
func IsCounter(token string) bool {
	name, _, ok := Split(token)
	return ok && name == GenCounter
}

// Resolve returns the value for token. The token is returned unchanged when
// nothing claims it so a later literal pass can still substitute it.
func (p *Processor) Resolve(ctx context.Context, token string, inputs map[string]string) string {
	name, params, ok := Split(token)
	if !ok {
		return token
	}

	if key, found := strings.CutPrefix(name, "input."); found {
		return p.applyTransforms(inputs[key], params)
	}

	if value, found := inputs[name]; found && len(params) > 0 {
		return p.applyTransforms(value, params)
	}

	switch name {
	case GenDate, GenTime, GenNow:
		return p.date(params)
	case GenUUID:
		return p.uuid(params)
	case GenEnv:
		return p.env(params)
	case GenCounter:
		return p.counter(params)
	case GenGit:
		return p.gitInfo(ctx, params)
	}

	return token
}

func (p *Processor) applyTransforms(value string, params []string) string {
	for _, param := range params {
		kind, ok := words.Parse(param)
		if !ok {
			p.logger.Warn("unknown transform", "transform", param)
			continue
		}
		value = words.Transform(value, kind)
	}
	return value
}

// FormatDate renders t using the YYYY MM DD HH mm ss tokens.
func FormatDate(t time.Time, format string) string {
	if format == "" {
		format = DefaultDateFormat
	}
	r := strings.NewReplacer(
		"YYYY", fmt.Sprintf("%04d", t.Year()),
		"MM", fmt.Sprintf("%02d", int(t.Month())),
		"DD", fmt.Sprintf("%02d", t.Day()),
		"HH", fmt.Sprintf("%02d", t.Hour()),
		"mm", fmt.Sprintf("%02d", t.Minute()),
		"ss", fmt.Sprintf("%02d", t.Second()),
	)
	return r.Replace(format)
}

func (p *Processor) date(params []string) string {
	// Params were split on ':' so ${date:HH:mm} arrives as [HH mm].
	return FormatDate(p.now(), strings.Join(params, ":"))
}

func (p *Processor) uuid(params []string) string {
	id := p.newUUID()
	if len(params) > 0 && params[0] == "short" {
		id = strings.ReplaceAll(id, "-", "")
		if len(id) > 12 {
			id = id[:12]
		}
	}
	return id
}

func (p *Processor) env(params []string) string {
	var name, fallback string
	if len(params) > 0 {
		name = params[0]
	}
	if len(params) > 1 {
		fallback = params[1]
	}
	if name == "" {
		return fallback
	}
	if v, ok := p.lookup(name); ok && v != "" {
		return v
	}
	if fallback == "" {
		p.logger.Debug("environment variable not set", "name", name)
	}
	return fallback
}

// CounterOptions are the key=value params of ${counter:...}.
type CounterOptions struct {
	Start   int64
	Step    int64
	Padding int
}

// ParseCounterOptions reads start, step and padding from params. Unknown
// keys and malformed values are ignored.
func ParseCounterOptions(params []string) CounterOptions {
	opts := CounterOptions{Start: 1, Step: 1}
	for _, param := range params {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		switch strings.TrimSpace(key) {
		case "start":
			opts.Start = n
		case "step":
			opts.Step = n
		case "padding":
			opts.Padding = int(n)
		}
	}
	return opts
}

// CounterKey is the persistence key for a counter declaration. Distinct
// parameter signatures are independent counters.
func CounterKey(params []string) string {
	if len(params) == 0 {
		return "default"
	}
	return strings.Join(params, ":")
}

func (p *Processor) counter(params []string) string {
	opts := ParseCounterOptions(params)
	value, err := p.counters.Increment(CounterKey(params), opts.Start, opts.Step)
	if err != nil {
		p.logger.Error("counter update failed", "key", CounterKey(params), "err", err)
		return ""
	}
	if opts.Padding > 0 {
		return fmt.Sprintf("%0*d", opts.Padding, value)
	}
	return strconv.FormatInt(value, 10)
}

func (p *Processor) gitInfo(ctx context.Context, params []string) string {
	field := git.FieldBranch
	if len(params) > 0 && params[0] != "" {
		field = params[0]
	}
	value, err := p.git.Lookup(ctx, field)
	if err != nil {
		p.logger.Warn("error getting git info", "field", field, "err", err)
		return ""
	}
	return value
}
