package filex

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, err := AppDir()
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(dir, ".papertrail"))
	require.DirExists(t, dir)
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := DatabasePath()
	require.NoError(t, err)
	require.Equal(t, "papertrail.db", filepath.Base(p))
	require.DirExists(t, filepath.Dir(p))
}
