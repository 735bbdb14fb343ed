package canon

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractApexDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.acme.com/about", "acme.com"},
		{"http://shop.acme.co.uk/x?y=1", "acme.co.uk"},
		{"acme.de", "acme.de"},
		{"WWW.ACME.DE", "acme.de"},
		{"Acme", ""},
		{"Acme GmbH", ""},
		{"", ""},
		{"intranet.local", ""},
		{"https://", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractApexDomain(tt.in))
		})
	}
}

func TestWebsiteURL(t *testing.T) {
	assert.Equal(t, "https://acme.com", WebsiteURL("acme.com"))
	assert.Equal(t, "https://acme.com", WebsiteURL("http://ACME.com/"))
	assert.Equal(t, "https://acme.com/team", WebsiteURL("https://acme.com/team?utm_source=li#top"))
	assert.Equal(t, "https://acme.com/p?id=2", WebsiteURL("https://acme.com/p?id=2&gclid=x"))
	assert.Equal(t, "", WebsiteURL("not a site"))
	assert.Equal(t, "", WebsiteURL(""))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "mullersohne", Slug("Müller & Söhne"))
	assert.Equal(t, "acme42", Slug(" ACME-42 "))
	assert.Equal(t, "", Slug("---"))
}

type fakeResolver map[string][]string

func (f fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := f[host]; ok {
		return addrs, nil
	}
	return nil, errors.New("no such host")
}

func TestDomainGuesser_Guess(t *testing.T) {
	g := &DomainGuesser{
		Resolver: fakeResolver{"acme.de": {"127.0.0.1"}, "acme.io": {"127.0.0.1"}},
		Suffixes: []string{".com", ".de", ".io"},
	}
	assert.Equal(t, "acme.de", g.Guess(context.Background(), "Acme"))
	assert.Equal(t, "", g.Guess(context.Background(), "Unknown Corp"))
	assert.Equal(t, "", g.Guess(context.Background(), "x"))
}
