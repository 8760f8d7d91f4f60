package artifacts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

func TestAllocate_CreatesDirLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")
	l := NewLayout(root, Dirs{})

	_, err := os.Stat(root)
	require.True(t, os.IsNotExist(err), "root must not exist before first allocation")

	a, err := l.Allocate(types.RoleSegment, "mp4")
	require.NoError(t, err)
	assert.Equal(t, types.RoleSegment, a.Role)
	assert.Equal(t, filepath.Join(root, "segments"), filepath.Dir(a.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(a.Path), "segment_"+a.ID))
	assert.Equal(t, ".mp4", filepath.Ext(a.Path))

	fi, err := os.Stat(filepath.Join(root, "segments"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	_, err = os.Stat(filepath.Join(root, "final"))
	assert.True(t, os.IsNotExist(err), "only the used category is created")

	// second allocation reuses the existing dir
	_, err = l.Allocate(types.RoleSegment, ".mp4")
	require.NoError(t, err)
}

func TestAllocate_UniqueNames(t *testing.T) {
	l := NewLayout(t.TempDir(), Dirs{})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		a, err := l.Allocate(types.RoleRaw, "mp4")
		require.NoError(t, err)
		require.False(t, seen[a.Path], "duplicate path %s", a.Path)
		seen[a.Path] = true
	}
}

func TestNewLayout_AbsoluteDirs(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	l := NewLayout("out", Dirs{Final: abs})
	assert.Equal(t, abs, l.Dir(types.RoleFinal))
	assert.Equal(t, filepath.Join("out", "raw"), l.Dir(types.RoleRaw))
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.mp4")
	require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	empty := filepath.Join(dir, "empty.mp4")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	assert.NoError(t, Verify(types.Artifact{Path: full}))
	assert.ErrorIs(t, Verify(types.Artifact{Path: empty}), ports.ErrMissingOutput)
	assert.ErrorIs(t, Verify(types.Artifact{Path: filepath.Join(dir, "nope.mp4")}), ports.ErrMissingOutput)
	assert.ErrorIs(t, Verify(types.Artifact{Path: dir}), ports.ErrMissingOutput)
}

func TestFinalPath(t *testing.T) {
	l := NewLayout("out", Dirs{})
	p, err := l.FinalPath("final_abc.mp4")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "final", "final_abc.mp4"), p)

	for _, bad := range []string{"", "../x.mp4", "a/b.mp4", ".hidden", ".."} {
		_, err := l.FinalPath(bad)
		assert.Error(t, err, bad)
	}
}
