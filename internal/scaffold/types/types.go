package types

type PromptMode struct {
	Interactive   bool // terminal attached
	NoInteractive bool
	Force         bool
	CI            bool
}

func (p PromptMode) Allow() bool {
	if p.NoInteractive || p.Force || p.CI {
		return false
	}
	return p.Interactive
}

// GenerateOptions controls a single generation run.
type GenerateOptions struct {
	DryRun     bool
	Verbose    bool
	Quiet      bool
	Force      bool
	Parallel   bool
	SkipSteps  bool
	PromptMode PromptMode
}

// Answers holds user-supplied values keyed by the name used inside {} or ${}.
type Answers map[string]string

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Lookup reports a non-empty answer for key.
func (a Answers) Lookup(key string) (string, bool) {
	v, ok := a[key]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
