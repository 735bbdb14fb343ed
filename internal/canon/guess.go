package canon

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultGuessSuffixes are tried in order by DomainGuesser.
var DefaultGuessSuffixes = []string{".com", ".de", ".io", ".net", ".org", ".eu"}

// Resolver looks up a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DomainGuesser predicts a company domain from its name by trying common
// suffixes against a live DNS and HTTP check. It is opt-in and never used by
// ExtractApexDomain.
type DomainGuesser struct {
	Resolver Resolver
	HTTP     *http.Client
	Suffixes []string
}

// NewDomainGuesser returns a guesser using the system resolver.
func NewDomainGuesser() *DomainGuesser {
	return &DomainGuesser{
		Resolver: net.DefaultResolver,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		Suffixes: DefaultGuessSuffixes,
	}
}

// Slug folds a company name to the ASCII label used for guessing:
// "Müller & Söhne" -> "mullersohne". Callers strip the legal form first.
func Slug(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(name))
	if err != nil {
		folded = strings.ToLower(name)
	}
	var b strings.Builder
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Guess returns the first candidate domain that resolves and answers an
// HTTP HEAD request, or "".
func (g *DomainGuesser) Guess(ctx context.Context, name string) string {
	slug := Slug(name)
	if len(slug) < 2 {
		return ""
	}
	suffixes := g.Suffixes
	if len(suffixes) == 0 {
		suffixes = DefaultGuessSuffixes
	}

	for _, sfx := range suffixes {
		candidate := slug + sfx
		if g.Resolver != nil {
			addrs, err := g.Resolver.LookupHost(ctx, candidate)
			if err != nil || len(addrs) == 0 {
				continue
			}
		}
		if g.HTTP != nil && !g.alive(ctx, candidate) {
			continue
		}
		zap.L().Debug("domain guessed",
			zap.String("company", name),
			zap.String("domain", candidate),
		)
		return candidate
	}
	return ""
}

func (g *DomainGuesser) alive(ctx context.Context, host string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+host, nil)
	if err != nil {
		return false
	}
	resp, err := g.HTTP.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}
