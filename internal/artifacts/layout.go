// Package artifacts names and places the files a pipeline run produces.
//
// Every artifact lives under the directory of its role and carries a fresh
// random identifier, so concurrent runs sharing an output root never touch
// each other's files. Directories are created on first use.
package artifacts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

type Layout struct {
	root string
	dirs map[types.ArtifactRole]string
	// NewID is swappable for tests.
	NewID func() string
}

// Dirs are per-role subpaths; relative ones are joined onto the root.
type Dirs struct {
	Raw     string
	Segment string
	Caption string
	Final   string
}

func DefaultDirs() Dirs {
	return Dirs{Raw: "raw", Segment: "segments", Caption: "captions", Final: "final"}
}

func NewLayout(root string, d Dirs) *Layout {
	if root == "" {
		root = "out"
	}
	def := DefaultDirs()
	pick := func(v, fallback string) string {
		if v == "" {
			v = fallback
		}
		if filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(root, v)
	}
	return &Layout{
		root: root,
		dirs: map[types.ArtifactRole]string{
			types.RoleRaw:     pick(d.Raw, def.Raw),
			types.RoleSegment: pick(d.Segment, def.Segment),
			types.RoleCaption: pick(d.Caption, def.Caption),
			types.RoleFinal:   pick(d.Final, def.Final),
		},
		NewID: func() string { return uuid.NewString() },
	}
}

func (l *Layout) Dir(role types.ArtifactRole) string { return l.dirs[role] }

// Allocate reserves a collision-free path for a new artifact of role. The
// file itself is not created.
func (l *Layout) Allocate(role types.ArtifactRole, ext string) (types.Artifact, error) {
	dir, ok := l.dirs[role]
	if !ok {
		return types.Artifact{}, fmt.Errorf("unknown artifact role %q", role)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.Artifact{}, fmt.Errorf("create %s dir: %w", role, err)
	}
	id := l.NewID()
	ext = "." + strings.TrimPrefix(ext, ".")
	name := fmt.Sprintf("%s_%s%s", role, id, ext)
	return types.Artifact{ID: id, Role: role, Path: filepath.Join(dir, name)}, nil
}

// Verify checks that an external call actually left its output behind.
func Verify(a types.Artifact) error {
	fi, err := os.Stat(a.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %s: %w", a.Role, a.Path, ports.ErrMissingOutput)
		}
		return fmt.Errorf("stat %s: %w", a.Path, err)
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s %s is not a regular file: %w", a.Role, a.Path, ports.ErrMissingOutput)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%s %s is empty: %w", a.Role, a.Path, ports.ErrMissingOutput)
	}
	return nil
}

// FinalPath resolves a bare final-artifact file name inside the final dir,
// rejecting anything that would escape it.
func (l *Layout) FinalPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return filepath.Join(l.dirs[types.RoleFinal], name), nil
}
