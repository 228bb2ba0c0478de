package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
)

const name = "project-requirements.txt"

func TestLocate(t *testing.T) {
	root := t.TempDir()

	_, err := git.PlainInit(root, false)
	require.NoError(t, err)

	nested := filepath.Join(root, "services", "api")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	_, err = Locate(nested, "", name)
	require.ErrorIs(t, err, ErrRequirementsNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte("PACKER=1.5.4\n"), 0o644))

	path, err := Locate(nested, "", name)
	require.NoError(t, err)
	require.Equal(t, resolve(t, filepath.Join(root, name)), resolve(t, path))

	require.NoError(t, os.WriteFile(filepath.Join(nested, name), []byte("PACKER=1.5.4\n"), 0o644))

	path, err = Locate(nested, "", name)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(nested, name), path, "a file in the working directory takes precedence")
}

func TestLocateExplicit(t *testing.T) {
	dir := t.TempDir()

	_, err := Locate(dir, filepath.Join(dir, "missing.txt"), name)
	require.ErrorIs(t, err, ErrRequirementsNotFound)

	explicit := filepath.Join(dir, "custom.txt")
	require.NoError(t, os.WriteFile(explicit, nil, 0o644))

	path, err := Locate(dir, explicit, name)
	require.NoError(t, err)
	require.Equal(t, explicit, path)
}

func TestLocateOutsideRepository(t *testing.T) {
	_, err := Locate(t.TempDir(), "", name)
	require.ErrorIs(t, err, ErrRequirementsNotFound)
}

// resolve evaluates symlinks of the directory part so that temp dirs such as /var -> /private/var compare equal.
func resolve(t *testing.T, path string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(filepath.Dir(path))
	require.NoError(t, err)
	return filepath.Join(dir, filepath.Base(path))
}
