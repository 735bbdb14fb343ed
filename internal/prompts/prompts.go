// Package prompts holds the LLM prompt catalogue embedded in the binary.
package prompts

import (
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Prompt names.
const (
	CompanyResearch   = "company_research"
	ProfileExtraction = "profile_extraction"
)

//go:embed prompts.yaml
var catalogYAML []byte

// Prompt is one catalogue entry.
type Prompt struct {
	Name        string  `yaml:"-"`
	System      string  `yaml:"system"`
	Template    string  `yaml:"template"`
	Schema      string  `yaml:"schema"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	tmpl *template.Template
}

// Catalog maps prompt names to prompts.
type Catalog struct {
	prompts map[string]*Prompt
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalogue, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// Parse reads a catalogue document.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Prompts map[string]*Prompt `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "prompts: parse catalogue")
	}
	if len(doc.Prompts) == 0 {
		return nil, eris.New("prompts: catalogue is empty")
	}
	for name, p := range doc.Prompts {
		if strings.TrimSpace(p.Template) == "" {
			return nil, eris.Errorf("prompts: %s has no template", name)
		}
		t, err := template.New(name).Option("missingkey=error").Parse(p.Template)
		if err != nil {
			return nil, eris.Wrapf(err, "prompts: parse template %s", name)
		}
		p.Name = name
		p.tmpl = t
	}
	return &Catalog{prompts: doc.Prompts}, nil
}

// Get returns the named prompt.
func (c *Catalog) Get(name string) (*Prompt, error) {
	p, ok := c.prompts[name]
	if !ok {
		return nil, eris.Errorf("prompts: unknown prompt %q", name)
	}
	return p, nil
}

// Render executes the prompt template with data.
func (p *Prompt) Render(data any) (string, error) {
	var b strings.Builder
	if err := p.tmpl.Execute(&b, data); err != nil {
		return "", eris.Wrapf(err, "prompts: render %s", p.Name)
	}
	return strings.TrimSpace(b.String()), nil
}

var fenced = regexp.MustCompile("(?s)```(?:json)?\\s*\n(.*?)\n\\s*```")

// ExtractJSON returns the JSON object in a model reply: the whole reply
// when it parses, else the first fenced block, else the span from the
// first '{' to the last '}'.
func ExtractJSON(reply string) ([]byte, bool) {
	s := strings.TrimSpace(reply)
	if s == "" {
		return nil, false
	}
	if strings.HasPrefix(s, "{") && json.Valid([]byte(s)) {
		return []byte(s), true
	}
	if m := fenced.FindStringSubmatch(s); m != nil {
		if body := strings.TrimSpace(m[1]); json.Valid([]byte(body)) {
			return []byte(body), true
		}
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start >= 0 && end > start && json.Valid([]byte(s[start:end+1])) {
		return []byte(s[start : end+1]), true
	}
	return nil, false
}
