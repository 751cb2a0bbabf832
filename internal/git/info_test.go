package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initRepo creates a repository with one commit on feature/login, an origin
// remote and a local user identity.
func initRepo(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# widgets\n"), 0644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	require.NoError(t, wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature/login"),
		Create: true,
	}))

	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{"https://github.com/acme/widgets.git"},
	})
	require.NoError(t, err)

	cfg, err := repo.Config()
	require.NoError(t, err)
	cfg.User.Name = "Jane Doe"
	cfg.User.Email = "jane@example.com"
	require.NoError(t, repo.SetConfig(cfg))

	return dir
}

func TestRepository_Lookup(t *testing.T) {
	dir := initRepo(t)
	sub := filepath.Join(dir, "src", "components")
	require.NoError(t, os.MkdirAll(sub, 0755))

	info := &Repository{Dir: sub}
	ctx := context.Background()

	tests := []struct {
		field string
		want  string
	}{
		{FieldBranch, "feature/login"},
		{FieldAuthor, "Jane Doe"},
		{FieldEmail, "jane@example.com"},
		{FieldRepo, "widgets"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, err := info.Lookup(ctx, tt.field)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepository_LookupErrors(t *testing.T) {
	ctx := context.Background()

	_, err := (&Repository{Dir: t.TempDir()}).Lookup(ctx, FieldBranch)
	assert.Error(t, err)

	_, err = (&Repository{Dir: initRepo(t)}).Lookup(ctx, "tag")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestCLI_UnknownField(t *testing.T) {
	_, err := (&CLI{Dir: t.TempDir()}).Lookup(context.Background(), "tag")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestRepoNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/acme/widgets.git", "widgets"},
		{"https://github.com/acme/widgets", "widgets"},
		{"git@github.com:acme/widgets.git", "widgets"},
		{"git@github.com:widgets.git", "widgets"},
		{"ssh://git@host:2222/acme/widgets.git/", "widgets"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, RepoNameFromURL(tt.url))
		})
	}
}
