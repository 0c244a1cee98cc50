package git_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
	gitstore "github.com/marmos91/pdmvault/pkg/version/git"
)

// newTestRepo creates a git repository with a committed file, a modified
// file, and an untracked file.
func newTestRepo(t *testing.T) string {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test",
			"GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test",
			"GIT_COMMITTER_EMAIL=test@example.com",
		)
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	writeFile := func(name, content string) {
		t.Helper()
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	run("init")
	writeFile("clean.sldprt", "solid part data")
	writeFile("dirty.sldasm", "assembly data")
	run("add", "clean.sldprt", "dirty.sldasm")
	run("commit", "-m", "initial")

	// Modify one committed file, add one untracked file.
	writeFile("dirty.sldasm", "assembly data, edited")
	writeFile("scratch.txt", "notes")

	return dir
}

func TestNew_FailsOutsideRepository(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	_, err := gitstore.New(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsUnavailableError(err))
}

func TestListTrackedFiles(t *testing.T) {
	store, err := gitstore.New(newTestRepo(t))
	require.NoError(t, err)

	files, err := store.ListTrackedFiles(context.Background())
	require.NoError(t, err)

	byName := make(map[string]version.TrackedFile, len(files))
	for _, f := range files {
		byName[f.Filename] = f
	}

	require.Contains(t, byName, "clean.sldprt")
	require.Contains(t, byName, "dirty.sldasm")
	require.Contains(t, byName, "scratch.txt")

	assert.Equal(t, version.StatusTracked, byName["clean.sldprt"].Status)
	assert.Equal(t, version.StatusModified, byName["dirty.sldasm"].Status)
	assert.Equal(t, version.StatusUntracked, byName["scratch.txt"].Status)

	assert.Equal(t, int64(len("solid part data")), byName["clean.sldprt"].SizeBytes)
	assert.Positive(t, byName["dirty.sldasm"].SizeBytes)
}

func TestGetStatus(t *testing.T) {
	store, err := gitstore.New(newTestRepo(t))
	require.NoError(t, err)
	ctx := context.Background()

	status, err := store.GetStatus(ctx, "clean.sldprt")
	require.NoError(t, err)
	assert.Equal(t, version.StatusTracked, status)

	status, err = store.GetStatus(ctx, "dirty.sldasm")
	require.NoError(t, err)
	assert.Equal(t, version.StatusModified, status)

	status, err = store.GetStatus(ctx, "scratch.txt")
	require.NoError(t, err)
	assert.Equal(t, version.StatusUntracked, status)
}

func TestGetStatus_UnknownFileFailsNotFound(t *testing.T) {
	store, err := gitstore.New(newTestRepo(t))
	require.NoError(t, err)

	_, err = store.GetStatus(context.Background(), "missing.sldprt")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
}
