package ytdlp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/forPelevin/ytclip/internal/ports"
)

// ValidateSourceURL accepts absolute http(s) URLs with a host and no userinfo.
// Failures wrap ports.ErrInvalidSource.
func ValidateSourceURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("source url is empty: %w", ports.ErrInvalidSource)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid source url: %v: %w", err, ports.ErrInvalidSource)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("invalid source url %q: absolute URL with host is required: %w", raw, ports.ErrInvalidSource)
	}
	if u.User != nil {
		return fmt.Errorf("invalid source url %q: userinfo is not allowed: %w", raw, ports.ErrInvalidSource)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("invalid source url %q: http or https is required: %w", raw, ports.ErrInvalidSource)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("invalid source url %q: host is required: %w", raw, ports.ErrInvalidSource)
	}
	return nil
}
