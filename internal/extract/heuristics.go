package extract

import (
	"html"
	"regexp"
	"strings"

	"github.com/sells-group/leads-cli/internal/model"
)

var (
	siteSuffix     = regexp.MustCompile(`(?i)\s*[-–—|]\s*LinkedIn\b.*$`)
	titleSep       = regexp.MustCompile(`\s+[-–—|]\s+`)
	parenthetical  = regexp.MustCompile(`\s*\([^)]*\)`)
	employerInline = regexp.MustCompile(`(?i)^(.+?)\s+(?:at|bei|@)\s+(.+)$`)

	experienceRe = regexp.MustCompile(`(?i)\b(?:Experience|Berufserfahrung)\s*:\s*([^·\n•|]+)`)
	locationRes  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:Location|Standort)\s*:\s*([^·\n•|]+)`),
		regexp.MustCompile(`(?i)\b(?:based in|located in)\s+([^·\n•|.,]+)`),
		regexp.MustCompile(`\b(\p{Lu}[\p{L}]+(?:[\s-]\p{Lu}[\p{L}]+)*,\s*(?:Germany|Deutschland|Austria|Österreich|Switzerland|Schweiz|United Kingdom|UK|United States|USA|France|Netherlands))\b`),
	}

	emailRe       = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe       = regexp.MustCompile(`(?:(?:\+|00)\d{1,3}[\s-]?)?(?:\(?\d{2,5}\)?[\s/-]?)?\d{3,4}[\s-]?\d{3,4}`)
	urlRe         = regexp.MustCompile(`(?i)\bhttps?://[\w.-]+\.[a-z]{2,}(?:/[\w\-./?%&=]*)?|\bwww\.[\w-]+(?:\.[\w-]+)*\.[a-z]{2,}\b`)
	followersRe   = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s?[KMB]?\+?)\s+followers?\b`)
	connectionsRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?\s?[KMB]?\+?)\s+(?:connections?|Kontakte)\b`)

	boilerplate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)View [^.!?\n]{1,200}?['’]s profile on LinkedIn[^.!?\n]*[.!?]`),
		regexp.MustCompile(`(?i)View [^.!?\n]{1,200}? profile on LinkedIn, a professional community of [^.!?\n]*[.!?]`),
		regexp.MustCompile(`(?i)Sehen Sie sich das Profil von [^.!?\n]{1,200}? auf LinkedIn[^.!?\n]*[.!?]`),
	}
)

// socialHosts are never taken as a personal website.
var socialHosts = []string{"linkedin.com", "twitter.com", "x.com", "facebook.com", "instagram.com", "youtube.com", "medium.com", "xing.com"}

// Heuristic extracts what it can from a result without any model call.
func Heuristic(item model.SearchItem) model.RawProfile {
	meta := item.Meta
	segs := titleSegments(item.Title)
	if len(segs) == 0 {
		segs = titleSegments(meta["og:title"])
	}

	raw := model.RawProfile{ProfileURL: strings.TrimSpace(item.URL)}

	raw.Name = nameFromMeta(meta)
	if raw.Name == "" && len(segs) > 0 {
		raw.Name = plausible(parenthetical.ReplaceAllString(segs[0], ""))
	}

	if len(segs) > 1 {
		raw.Title, raw.Company = splitHeadline(segs[1])
		if raw.Company == "" && len(segs) > 2 {
			raw.Company = segs[2]
		}
	}

	desc := cleanText(meta["og:description"])
	snippet := cleanText(item.Snippet)
	text := strings.TrimSpace(desc + "\n" + snippet)

	if raw.Company == "" {
		raw.Company = firstGroup(text, experienceRe)
	}
	raw.Location = firstGroup(text, locationRes...)
	raw.Email = emailRe.FindString(text)
	raw.Phone = findPhone(text)
	raw.Website = findWebsite(text)
	raw.Followers = firstGroup(text, followersRe)
	raw.Connections = firstGroup(text, connectionsRe)

	raw.Summary = desc
	if raw.Summary == "" {
		raw.Summary = snippet
	}
	return raw
}

// titleSegments splits a result title on its separators after dropping the
// site suffix: "Jane Doe - CEO - Acme | LinkedIn" -> [Jane Doe, CEO, Acme].
func titleSegments(title string) []string {
	t := siteSuffix.ReplaceAllString(html.UnescapeString(title), "")
	var out []string
	for _, p := range titleSep.Split(t, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nameFromMeta(meta map[string]string) string {
	first := strings.TrimSpace(meta["profile:first_name"])
	last := strings.TrimSpace(meta["profile:last_name"])
	if first != "" && last != "" {
		return first + " " + last
	}
	return ""
}

// splitHeadline separates "CTO at Acme" into title and employer.
func splitHeadline(h string) (title, company string) {
	h = strings.TrimSpace(h)
	if m := employerInline.FindStringSubmatch(h); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return h, ""
}

func plausible(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= 2 || len(s) >= 200 || strings.Contains(strings.ToLower(s), "linkedin") {
		return ""
	}
	return s
}

func cleanText(s string) string {
	s = html.UnescapeString(s)
	s = strings.NewReplacer("\t", " ", "\u00a0", " ").Replace(s)
	for _, re := range boilerplate {
		s = re.ReplaceAllString(s, " ")
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func firstGroup(text string, res ...*regexp.Regexp) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			v := strings.Trim(strings.TrimSpace(m[1]), ".,;:")
			if len(v) > 1 && len(v) < 100 {
				return v
			}
		}
	}
	return ""
}

func findPhone(text string) string {
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 7 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

func findWebsite(text string) string {
	for _, u := range urlRe.FindAllString(text, -1) {
		lower := strings.ToLower(u)
		social := false
		for _, h := range socialHosts {
			if strings.Contains(lower, h) {
				social = true
				break
			}
		}
		if !social {
			return strings.TrimRight(u, ".,;")
		}
	}
	return ""
}
