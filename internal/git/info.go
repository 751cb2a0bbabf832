package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// Fields recognised by ${git:<field>}.
const (
	FieldBranch = "branch"
	FieldAuthor = "author"
	FieldEmail  = "email"
	FieldRepo   = "repo"
)

var ErrUnknownField = errors.New("unknown git field")

// Info answers questions about the repository enclosing a directory.
type Info interface {
	Lookup(ctx context.Context, field string) (string, error)
}

// NewInfo returns a provider for dir, preferring the git binary and falling
// back to reading the repository directly when git is not installed.
func NewInfo(dir string) Info {
	if _, err := exec.LookPath("git"); err == nil {
		return &CLI{Dir: dir}
	}
	return &Repository{Dir: dir}
}

// CLI shells out to git.
type CLI struct {
	Dir string
}

func (c *CLI) Lookup(ctx context.Context, field string) (string, error) {
	switch field {
	case FieldBranch:
		return c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	case FieldAuthor:
		return c.run(ctx, "config", "user.name")
	case FieldEmail:
		return c.run(ctx, "config", "user.email")
	case FieldRepo:
		url, err := c.run(ctx, "config", "--get", "remote.origin.url")
		if err != nil {
			return "", err
		}
		return RepoNameFromURL(url), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

func (c *CLI) run(ctx context.Context, args ...string) (string, error) {
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}
	return strings.TrimSpace(string(output)), nil
}

// Repository reads repository metadata with go-git.
type Repository struct {
	Dir string
}

func (r *Repository) Lookup(_ context.Context, field string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(r.Dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening repository at %s: %w", r.Dir, err)
	}

	switch field {
	case FieldBranch:
		head, err := repo.Head()
		if err != nil {
			return "", fmt.Errorf("reading HEAD: %w", err)
		}
		if !head.Name().IsBranch() {
			return "HEAD", nil
		}
		return head.Name().Short(), nil
	case FieldAuthor, FieldEmail:
		cfg, err := repo.ConfigScoped(config.GlobalScope)
		if err != nil {
			return "", fmt.Errorf("reading git config: %w", err)
		}
		if field == FieldAuthor {
			return cfg.User.Name, nil
		}
		return cfg.User.Email, nil
	case FieldRepo:
		remote, err := repo.Remote("origin")
		if err != nil {
			return "", fmt.Errorf("reading remote origin: %w", err)
		}
		urls := remote.Config().URLs
		if len(urls) == 0 {
			return "", fmt.Errorf("remote origin has no url")
		}
		return RepoNameFromURL(urls[0]), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
}

// RepoNameFromURL returns the last path element of a remote URL without its
// .git suffix. Both https and scp-style ssh URLs are accepted.
func RepoNameFromURL(url string) string {
	url = strings.TrimSpace(url)
	url = strings.TrimRight(url, "/")
	if url == "" {
		return ""
	}
	if i := strings.LastIndex(url, ":"); i >= 0 && !strings.Contains(url, "://") {
		url = url[i+1:]
	}
	name := path.Base(filepath.ToSlash(url))
	return strings.TrimSuffix(name, ".git")
}
