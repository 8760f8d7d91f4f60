package cookies

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forPelevin/ytclip/internal/ports"
	"github.com/forPelevin/ytclip/internal/types"
)

const DefaultFileName = "cookies.txt"

// Source looks for a Netscape cookie file in the resource directory and
// falls back to a browser profile name when one is configured.
type Source struct {
	dir     string
	file    string
	browser string
}

func New(resourceDir, fileName, browser string) *Source {
	if fileName == "" {
		fileName = DefaultFileName
	}
	return &Source{dir: resourceDir, file: fileName, browser: browser}
}

func (s *Source) Path() string {
	if filepath.IsAbs(s.file) || s.dir == "" {
		return s.file
	}
	return filepath.Join(s.dir, s.file)
}

func (s *Source) Resolve(ctx context.Context) (types.Credential, error) {
	if err := ctx.Err(); err != nil {
		return types.Credential{}, err
	}
	p := s.Path()
	st, err := os.Stat(p)
	switch {
	case err == nil && st.Mode().IsRegular() && st.Size() > 0:
		return types.Credential{CookieFile: p}, nil
	case err == nil:
		return s.browserOr(fmt.Errorf("cookie file %s is empty or not a regular file: %w", p, ports.ErrNoCredentials))
	case os.IsNotExist(err):
		return s.browserOr(fmt.Errorf("cookie file %s not found: %w", p, ports.ErrNoCredentials))
	default:
		return s.browserOr(fmt.Errorf("stat cookie file: %w", err))
	}
}

func (s *Source) browserOr(err error) (types.Credential, error) {
	if s.browser != "" {
		return types.Credential{Browser: s.browser}, nil
	}
	return types.Credential{}, err
}
