package canon

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// ExtractApexDomain returns the registrable domain (eTLD+1) of a URL or bare
// host, e.g. "https://shop.acme.co.uk/x" -> "acme.co.uk". A bare company
// name, or anything without a known public suffix, yields "". It never
// guesses; see DomainGuesser for that.
func ExtractApexDomain(urlOrName string) string {
	s := strings.TrimSpace(urlOrName)
	if s == "" {
		return ""
	}
	if !strings.Contains(s, "://") {
		if strings.ContainsAny(s, " \t\n") {
			return ""
		}
		s = "http://" + strings.TrimPrefix(s, "//")
	}

	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if host == "" || !strings.Contains(host, ".") || strings.ContainsAny(host, " _") {
		return ""
	}
	host, err = idna.Lookup.ToASCII(host)
	if err != nil {
		return ""
	}

	suffix, icann := publicsuffix.PublicSuffix(host)
	if !icann && !strings.Contains(suffix, ".") {
		// Unlisted TLD, e.g. "intranet.local".
		return ""
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return ""
	}
	return apex
}

// WebsiteURL returns an https URL for a raw website value, stripping
// tracking parameters and the fragment. It returns "" for values that do not
// look like a website.
func WebsiteURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return ""
	}
	if !strings.Contains(s, "://") {
		s = "https://" + strings.TrimPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	if ExtractApexDomain(u.Hostname()) == "" {
		return ""
	}

	u.Scheme = "https"
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" || lk == "trk" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	out := u.String()
	if u.Path == "/" && u.RawQuery == "" {
		out = strings.TrimSuffix(out, "/")
	}
	return out
}
