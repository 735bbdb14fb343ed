// Package canon holds the pure canonicalization helpers used to key people
// and companies: profile URLs and registrable domains.
package canon

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/idna"

	"github.com/sells-group/leads-cli/internal/model"
)

// localeSubdomain matches LinkedIn country subdomains such as "de." or "uk.".
var localeSubdomain = regexp.MustCompile(`^[a-z]{2}\.linkedin\.com$`)

// NormalizeProfileURL returns the canonical form https://{host}/in/{slug}.
// The host is lower-cased with "www." and LinkedIn locale subdomains removed; query,
// fragment, trailing slash and any path after the slug are dropped. Inputs
// that do not carry a /in/{slug} path fail with model.ErrInvalidURL.
func NormalizeProfileURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", eris.Wrap(model.ErrInvalidURL, "empty url")
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return "", eris.Wrapf(model.ErrInvalidURL, "parse %q: %v", raw, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", eris.Wrapf(model.ErrInvalidURL, "unsupported scheme in %q", raw)
	}

	host, err := canonicalHost(u.Hostname())
	if err != nil || host == "" {
		return "", eris.Wrapf(model.ErrInvalidURL, "bad host in %q", raw)
	}

	slug, ok := profileSlug(u)
	if !ok {
		return "", eris.Wrapf(model.ErrInvalidURL, "no profile path in %q", raw)
	}

	return "https://" + host + "/in/" + slug, nil
}

func canonicalHost(h string) (string, error) {
	h = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(h)), ".")
	if h == "" {
		return "", nil
	}
	ascii, err := idna.Lookup.ToASCII(h)
	if err != nil {
		return "", err
	}
	ascii = strings.TrimPrefix(ascii, "www.")
	if localeSubdomain.MatchString(ascii) {
		ascii = ascii[3:]
	}
	return ascii, nil
}

func profileSlug(u *url.URL) (string, bool) {
	p := u.EscapedPath()
	parts := make([]string, 0, 4)
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	if len(parts) < 2 || strings.ToLower(parts[0]) != "in" {
		return "", false
	}

	slug, err := url.PathUnescape(parts[1])
	if err != nil {
		return "", false
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return "", false
	}
	return url.PathEscape(slug), true
}

// IsProfileURL reports whether raw canonicalizes.
func IsProfileURL(raw string) bool {
	_, err := NormalizeProfileURL(raw)
	return err == nil
}
