// Package cost estimates the USD cost of model and research calls from
// their reported token usage.
package cost

import "strings"

// Rates holds per-provider pricing.
type Rates struct {
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     map[string]ModelRate `yaml:"openai" mapstructure:"openai"`
	Perplexity PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityRate holds Perplexity pricing: a flat request fee plus token
// rates per model.
type PerplexityRate struct {
	PerQuery float64              `yaml:"per_query" mapstructure:"per_query"`
	Models   map[string]ModelRate `yaml:"models" mapstructure:"models"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Tokens computes the cost of input and output tokens at rate.
func Tokens(rate ModelRate, input, output int64) float64 {
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// Call estimates the cost of one traced call. Usage keys follow the
// provider SDKs: input_tokens/output_tokens (Anthropic) or
// prompt_tokens/completion_tokens (OpenAI-compatible APIs). Unknown
// providers and models cost 0.
func (c *Calculator) Call(provider, model string, usage map[string]int64) float64 {
	if c == nil {
		return 0
	}
	in := usage["input_tokens"] + usage["prompt_tokens"]
	out := usage["output_tokens"] + usage["completion_tokens"]

	switch strings.ToLower(provider) {
	case "anthropic":
		rate, ok := c.rates.Anthropic[model]
		if !ok {
			return 0
		}
		return Tokens(rate, in, out)
	case "openai":
		rate, ok := c.rates.OpenAI[model]
		if !ok {
			return 0
		}
		return Tokens(rate, in, out)
	case "perplexity":
		rate := c.rates.Perplexity.Models[model]
		return c.rates.Perplexity.PerQuery + Tokens(rate, in, out)
	default:
		return 0
	}
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 0.80, Output: 4.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		OpenAI: map[string]ModelRate{
			"gpt-4o-mini": {Input: 0.15, Output: 0.60},
			"gpt-4o":      {Input: 2.50, Output: 10.00},
		},
		Perplexity: PerplexityRate{
			PerQuery: 0.005,
			Models: map[string]ModelRate{
				"sonar":     {Input: 1.00, Output: 1.00},
				"sonar-pro": {Input: 3.00, Output: 15.00},
			},
		},
	}
}
