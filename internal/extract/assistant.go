package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leads-cli/internal/config"
	"github.com/sells-group/leads-cli/internal/model"
	"github.com/sells-group/leads-cli/internal/prompts"
	"github.com/sells-group/leads-cli/internal/resilience"
	"github.com/sells-group/leads-cli/internal/trace"
	"github.com/sells-group/leads-cli/pkg/anthropic"
	"github.com/sells-group/leads-cli/pkg/openai"
)

// NewAssistant builds the configured assistant, or nil when AI extraction
// is disabled.
func NewAssistant(cfg *config.Config, rec *trace.Recorder) (Assistant, error) {
	if !cfg.Extract.AIEnabled {
		return nil, nil
	}
	switch cfg.Extract.Provider {
	case "anthropic":
		a, err := NewAnthropicAssistant(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model, rec)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "openai":
		client := openai.NewClient(cfg.OpenAI.Key, openai.WithBaseURL(cfg.OpenAI.BaseURL))
		a, err := NewOpenAIAssistant(client, cfg.OpenAI.Model, rec)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, eris.Errorf("extract: unknown assistant provider %q", cfg.Extract.Provider)
	}
}

type promptInput struct {
	Name    string
	Title   string
	Summary string
}

func render(item model.SearchItem) (*prompts.Prompt, string, error) {
	cat, err := prompts.Default()
	if err != nil {
		return nil, "", err
	}
	p, err := cat.Get(prompts.ProfileExtraction)
	if err != nil {
		return nil, "", err
	}
	summary := item.Snippet
	if d := item.Meta["og:description"]; d != "" {
		summary = d + "\n" + summary
	}
	text, err := p.Render(promptInput{Name: item.Title, Title: item.Meta["og:title"], Summary: summary})
	return p, text, err
}

// AnthropicAssistant refines results with a Claude model.
type AnthropicAssistant struct {
	client anthropic.Client
	model  string
	trace  *trace.Recorder
	retry  resilience.RetryConfig
}

// NewAnthropicAssistant returns an assistant backed by client.
func NewAnthropicAssistant(client anthropic.Client, model string, rec *trace.Recorder) (*AnthropicAssistant, error) {
	if model == "" {
		return nil, eris.New("extract: anthropic model is required")
	}
	return &AnthropicAssistant{client: client, model: model, trace: rec, retry: resilience.DefaultRetryConfig()}, nil
}

func (a *AnthropicAssistant) Refine(ctx context.Context, item model.SearchItem) (*model.Extraction, error) {
	p, text, err := render(item)
	if err != nil {
		return nil, err
	}
	temp := p.Temperature

	start := time.Now()
	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return a.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:       a.model,
			MaxTokens:   int64(p.MaxTokens),
			System:      p.System,
			Messages:    []anthropic.Message{{Role: "user", Content: text}},
			Temperature: &temp,
		})
	})
	call := trace.Call{
		Caller:     "extract.assistant",
		Provider:   "anthropic",
		Model:      a.model,
		Operation:  "messages.create",
		PromptName: p.Name,
		Prompt:     text,
		Duration:   time.Since(start),
		Err:        err,
	}
	if err != nil {
		a.trace.Record(call)
		return nil, err
	}
	call.Usage = map[string]int64{"input_tokens": resp.Usage.InputTokens, "output_tokens": resp.Usage.OutputTokens}
	a.trace.Record(call)
	resp.Usage.LogCost(a.model, "extract")

	return parseExtraction(resp.Text())
}

// OpenAIAssistant refines results with an OpenAI-compatible model.
type OpenAIAssistant struct {
	client openai.Client
	model  string
	trace  *trace.Recorder
	retry  resilience.RetryConfig
}

// NewOpenAIAssistant returns an assistant backed by client.
func NewOpenAIAssistant(client openai.Client, model string, rec *trace.Recorder) (*OpenAIAssistant, error) {
	if model == "" {
		return nil, eris.New("extract: openai model is required")
	}
	return &OpenAIAssistant{client: client, model: model, trace: rec, retry: resilience.DefaultRetryConfig()}, nil
}

func (a *OpenAIAssistant) Refine(ctx context.Context, item model.SearchItem) (*model.Extraction, error) {
	p, text, err := render(item)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := resilience.DoVal(ctx, a.retry, func(ctx context.Context) (*openai.ChatResponse, error) {
		return a.client.Chat(ctx, openai.ChatRequest{
			Model:       a.model,
			System:      p.System,
			User:        text,
			Temperature: float32(p.Temperature),
			MaxTokens:   p.MaxTokens,
			JSON:        true,
		})
	})
	call := trace.Call{
		Caller:     "extract.assistant",
		Provider:   "openai",
		Model:      a.model,
		Operation:  "chat.completions",
		PromptName: p.Name,
		Prompt:     text,
		Duration:   time.Since(start),
		Err:        err,
	}
	if err != nil {
		a.trace.Record(call)
		return nil, err
	}
	call.Usage = map[string]int64{"prompt_tokens": int64(resp.PromptTokens), "completion_tokens": int64(resp.CompletionTokens)}
	a.trace.Record(call)

	return parseExtraction(resp.Content)
}

// parseExtraction reads the assistant's JSON reply. Values may be strings,
// numbers or null; placeholders such as "n/a" count as empty.
func parseExtraction(reply string) (*model.Extraction, error) {
	body, ok := prompts.ExtractJSON(reply)
	if !ok {
		return nil, eris.New("extract: no JSON object in assistant reply")
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, eris.Wrap(err, "extract: decode assistant reply")
	}
	return &model.Extraction{
		Name:            value(fields["name"]),
		CurrentTitle:    value(fields["current_position"]),
		Company:         value(fields["company"]),
		Location:        value(fields["location"]),
		FollowerCount:   value(fields["follower_count"]),
		ConnectionCount: value(fields["connection_count"]),
	}, nil
}

func value(v any) string {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
	switch strings.ToLower(s) {
	case "", "null", "none", "n/a", "unknown", "...":
		return ""
	}
	if len(s) < 2 || len(s) >= 200 {
		return ""
	}
	return s
}
