// Package git implements version.Store on top of the git binary.
//
// The store never writes to the repository: it shells out to read-only
// plumbing commands (ls-files, status --porcelain) and projects the output
// into the vault's (filename, status, size) view. Commits are made by CAD
// workstations outside this process.
package git

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/marmos91/pdmvault/pkg/vault/errors"
	"github.com/marmos91/pdmvault/pkg/version"
)

// Store reads tracked-file listings from a git working tree.
type Store struct {
	repoPath string
}

// New creates a git-backed version store rooted at repoPath.
// Returns an error if repoPath is not inside a git repository.
func New(repoPath string) (*Store, error) {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = repoPath
	if err := cmd.Run(); err != nil {
		return nil, errors.NewUnavailableError("version", err)
	}
	return &Store{repoPath: repoPath}, nil
}

// ListTrackedFiles returns every file git knows about, in git's listing
// order: committed files first (ls-files order), then untracked working-tree
// files (status order).
func (s *Store) ListTrackedFiles(ctx context.Context) ([]version.TrackedFile, error) {
	tracked, err := s.lsFiles(ctx)
	if err != nil {
		return nil, err
	}

	changed, untracked, err := s.porcelain(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]version.TrackedFile, 0, len(tracked)+len(untracked))
	for _, name := range tracked {
		status := version.StatusTracked
		if changed[name] {
			status = version.StatusModified
		}
		files = append(files, version.TrackedFile{
			Filename:  name,
			Status:    status,
			SizeBytes: s.fileSize(name),
		})
	}
	for _, name := range untracked {
		files = append(files, version.TrackedFile{
			Filename:  name,
			Status:    version.StatusUntracked,
			SizeBytes: s.fileSize(name),
		})
	}

	return files, nil
}

// GetStatus returns the status of a single file.
// Returns NotFound if the file is neither tracked nor present in the
// working tree.
func (s *Store) GetStatus(ctx context.Context, filename string) (version.Status, error) {
	changed, untracked, err := s.porcelain(ctx)
	if err != nil {
		return "", err
	}

	for _, name := range untracked {
		if name == filename {
			return version.StatusUntracked, nil
		}
	}

	isTracked, err := s.isTracked(ctx, filename)
	if err != nil {
		return "", err
	}
	if !isTracked {
		return "", errors.NewNotFoundError(filename, "file")
	}

	if changed[filename] {
		return version.StatusModified, nil
	}
	return version.StatusTracked, nil
}

// lsFiles returns committed filenames in git's listing order.
func (s *Store) lsFiles(ctx context.Context) ([]string, error) {
	out, err := s.run(ctx, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, name := range strings.Split(string(out), "\x00") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// isTracked reports whether git has the file in its index.
func (s *Store) isTracked(ctx context.Context, filename string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "ls-files", "--error-unmatch", "--", filename)
	cmd.Dir = s.repoPath
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return false, nil
		}
		return false, errors.NewUnavailableError("version", err)
	}
	return true, nil
}

// porcelain parses `git status --porcelain` into the set of modified
// tracked files and the ordered list of untracked files.
func (s *Store) porcelain(ctx context.Context) (changed map[string]bool, untracked []string, err error) {
	out, err := s.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, nil, err
	}

	changed = make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}
		code, name := line[:2], line[3:]

		// Renames report "old -> new"; the new path is the live one.
		if idx := strings.Index(name, " -> "); idx >= 0 {
			name = name[idx+4:]
		}

		if code == "??" {
			untracked = append(untracked, name)
		} else {
			changed[name] = true
		}
	}

	return changed, untracked, nil
}

func (s *Store) fileSize(filename string) int64 {
	info, err := os.Stat(filepath.Join(s.repoPath, filename))
	if err != nil {
		return 0
	}
	return info.Size()
}

func (s *Store) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repoPath
	out, err := cmd.Output()
	if err != nil {
		return nil, errors.NewUnavailableError("version", err)
	}
	return out, nil
}
