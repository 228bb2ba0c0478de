package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
)

var ErrRequirementsNotFound = errors.New("requirements file not found")

// Root returns the root of the git work tree enclosing dir.
func Root(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("failed to open git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}

	return worktree.Filesystem.Root(), nil
}

// Locate finds the requirements file. An explicit path is returned as is if it exists.
// Otherwise name is looked up in dir and then at the root of the enclosing git work tree.
func Locate(dir, explicit, name string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %w", ErrRequirementsNotFound, err)
		}
		return explicit, nil
	}

	candidates := []string{filepath.Join(dir, name)}
	if root, err := Root(dir); err == nil {
		candidates = append(candidates, filepath.Join(root, name))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: no %s in %s or at the root of its git repository", ErrRequirementsNotFound, name, dir)
}
