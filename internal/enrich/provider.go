package enrich

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/prompts"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/trace"
	"github.com/sells-group/leads-cli/pkg/anthropic"
	"github.com/sells-group/leads-cli/pkg/openai"
	"github.com/sells-group/leads-cli/pkg/perplexity"
)

const traceCaller = "enrich.provider"

// Provider researches one company and returns the raw payload JSON. The
// domain may be empty.
type Provider interface {
	Enrich(ctx context.Context, name, domain string) ([]byte, error)
}

// NewProvider builds the provider selected by enrich.provider.
func NewProvider(cfg *config.Config, rec *trace.Recorder) (Provider, error) {
	switch cfg.Enrich.Provider {
	case "", "stub":
		return StubProvider{}, nil
	case "perplexity":
		opts := []perplexity.Option{perplexity.WithModel(cfg.Perplexity.Model)}
		if cfg.Perplexity.BaseURL != "" {
			opts = append(opts, perplexity.WithBaseURL(cfg.Perplexity.BaseURL))
		}
		return NewPerplexityProvider(perplexity.NewClient(cfg.Perplexity.Key, opts...), cfg.Perplexity.Model, rec), nil
	case "anthropic":
		p, err := NewAnthropicProvider(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, rec)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "openai":
		client := openai.NewClient(cfg.OpenAI.Key, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		p, err := NewOpenAIProvider(client, cfg.OpenAI.Model, rec)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, eris.Errorf("enrich: unknown provider %q", cfg.Enrich.Provider)
	}
}

// StubProvider returns a fixed, mostly empty payload. It lets the
// enrichment flow run offline.
type StubProvider struct{}

func (StubProvider) Enrich(_ context.Context, name, domain string) ([]byte, error) {
	no := false
	p := model.EnrichmentPayload{
		Company:          name,
		Industries:       []string{},
		Locations:        []string{},
		Multinational:    &no,
		BusinessModel:    []string{},
		ProductsServices: []string{},
		RecentNews:       []string{},
	}
	if domain != "" {
		site := "https://" + domain
		p.Website = &site
	}
	return json.Marshal(p)
}

type researchInput struct {
	Name   string
	Domain string
}

func render(name, domain string) (*prompts.Prompt, string, error) {
	cat, err := prompts.Default()
	if err != nil {
		return nil, "", err
	}
	p, err := cat.Get(prompts.CompanyResearch)
	if err != nil {
		return nil, "", err
	}
	text, err := p.Render(researchInput{Name: name, Domain: domain})
	return p, text, err
}

// PerplexityProvider runs web-backed research with a JSON schema
// response format.
type PerplexityProvider struct {
	client perplexity.Client
	model  string
	trace  *trace.Recorder
	retry  resilience.RetryConfig
}

// NewPerplexityProvider returns a provider backed by client. An empty
// model leaves the client default in place.
func NewPerplexityProvider(client perplexity.Client, model string, rec *trace.Recorder) *PerplexityProvider {
	return &PerplexityProvider{client: client, model: model, trace: rec, retry: resilience.DefaultRetryConfig()}
}

func (p *PerplexityProvider) Enrich(ctx context.Context, name, domain string) ([]byte, error) {
	pr, text, err := render(name, domain)
	if err != nil {
		return nil, err
	}
	temp := pr.Temperature
	maxTokens := pr.MaxTokens
	req := perplexity.ChatCompletionRequest{
		Model: p.model,
		Messages: []perplexity.Message{
			{Role: "system", Content: pr.System},
			{Role: "user", Content: text},
		},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	if pr.Schema != "" {
		req.ResponseFormat = perplexity.JSONSchemaFormat([]byte(pr.Schema))
	}

	start := time.Now()
	resp, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*perplexity.ChatCompletionResponse, error) {
		return p.client.ChatCompletion(ctx, req)
	})
	call := trace.Call{
		Caller:     traceCaller,
		Provider:   "perplexity",
		Model:      p.model,
		Operation:  "chat.completions",
		PromptName: pr.Name,
		Prompt:     text,
		Duration:   time.Since(start),
		Err:        err,
		Extras:     map[string]any{"company": name},
	}
	if err != nil {
		p.trace.Record(call)
		return nil, eris.Wrapf(err, "enrich: perplexity research for %q", name)
	}
	call.Usage = map[string]int64{
		"prompt_tokens":     int64(resp.Usage.PromptTokens),
		"completion_tokens": int64(resp.Usage.CompletionTokens),
	}
	p.trace.Record(call)

	content := resp.Content()
	if content == "" {
		return nil, eris.Errorf("enrich: perplexity returned no content for %q", name)
	}
	return []byte(content), nil
}

// AnthropicProvider asks a Claude model for the research payload.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	trace  *trace.Recorder
	retry  resilience.RetryConfig
}

// NewAnthropicProvider returns a provider backed by client.
func NewAnthropicProvider(client anthropic.Client, model string, rec *trace.Recorder) (*AnthropicProvider, error) {
	if model == "" {
		return nil, eris.New("enrich: anthropic model is required")
	}
	return &AnthropicProvider{client: client, model: model, trace: rec, retry: resilience.DefaultRetryConfig()}, nil
}

func (p *AnthropicProvider) Enrich(ctx context.Context, name, domain string) ([]byte, error) {
	pr, text, err := render(name, domain)
	if err != nil {
		return nil, err
	}
	temp := pr.Temperature

	start := time.Now()
	resp, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return p.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       p.model,
			MaxTokens:   int64(pr.MaxTokens),
			System:      pr.System,
			Messages:    []anthropic.Message{{Role: "user", Content: text}},
			Temperature: &temp,
		})
	})
	call := trace.Call{
		Caller:     traceCaller,
		Provider:   "anthropic",
		Model:      p.model,
		Operation:  "messages.create",
		PromptName: pr.Name,
		Prompt:     text,
		Duration:   time.Since(start),
		Err:        err,
		Extras:     map[string]any{"company": name},
	}
	if err != nil {
		p.trace.Record(call)
		return nil, eris.Wrapf(err, "enrich: anthropic research for %q", name)
	}
	call.Usage = map[string]int64{"input_tokens": resp.Usage.InputTokens, "output_tokens": resp.Usage.OutputTokens}
	p.trace.Record(call)
	resp.Usage.LogCost(p.model, "enrich")

	content := resp.Text()
	if content == "" {
		return nil, eris.Errorf("enrich: anthropic returned no text for %q", name)
	}
	return []byte(content), nil
}

// OpenAIProvider asks an OpenAI-compatible model for the research payload
// in JSON mode.
type OpenAIProvider struct {
	client openai.Client
	model  string
	trace  *trace.Recorder
	retry  resilience.RetryConfig
}

// NewOpenAIProvider returns a provider backed by client.
func NewOpenAIProvider(client openai.Client, model string, rec *trace.Recorder) (*OpenAIProvider, error) {
	if model == "" {
		return nil, eris.New("enrich: openai model is required")
	}
	return &OpenAIProvider{client: client, model: model, trace: rec, retry: resilience.DefaultRetryConfig()}, nil
}

func (p *OpenAIProvider) Enrich(ctx context.Context, name, domain string) ([]byte, error) {
	pr, text, err := render(name, domain)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*openai.ChatResponse, error) {
		return p.client.Chat(ctx, openai.ChatRequest{
			Model:       p.model,
			System:      pr.System,
			User:        text,
			Temperature: float32(pr.Temperature),
			MaxTokens:   pr.MaxTokens,
			JSON:        true,
		})
	})
	call := trace.Call{
		Caller:     traceCaller,
		Provider:   "openai",
		Model:      p.model,
		Operation:  "chat.completions",
		PromptName: pr.Name,
		Prompt:     text,
		Duration:   time.Since(start),
		Err:        err,
		Extras:     map[string]any{"company": name},
	}
	if err != nil {
		p.trace.Record(call)
		return nil, eris.Wrapf(err, "enrich: openai research for %q", name)
	}
	call.Usage = map[string]int64{
		"prompt_tokens":     int64(resp.PromptTokens),
		"completion_tokens": int64(resp.CompletionTokens),
	}
	p.trace.Record(call)

	if resp.Content == "" {
		return nil, eris.Errorf("enrich: openai returned no content for %q", name)
	}
	return []byte(resp.Content), nil
}
