// Package llm provides centralized LLM configuration and client abstractions.
// Extraction runs on the standard tier; email rewrites run on the advanced tier.
package llm

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: classification, extraction, basic summarization
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: query parsing, structured output
	TierStandard ModelTier = "standard"
	// TierAdvanced is for free-text rewriting of outreach drafts
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider (future)
	ProviderOpenAI Provider = "openai"
	// ProviderAnthropic is the Anthropic/Claude provider (future)
	ProviderAnthropic Provider = "anthropic"
)

// DefaultTemperature is used for tiers without an explicit temperature
const DefaultTemperature float32 = 0.1

// Config holds the model configuration for the application
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	Temperatures map[ModelTier]float32
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		// Rewrites run on the advanced tier and need enough variety that
		// identical prompts yield distinct drafts.
		Temperatures: map[ModelTier]float32{
			TierLite:     0.1,
			TierStandard: 0.1,
			TierAdvanced: 0.9,
		},
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// GetTemperature returns the sampling temperature for a tier
func (c *Config) GetTemperature(tier ModelTier) float32 {
	if t, ok := c.Temperatures[tier]; ok {
		return t
	}
	return DefaultTemperature
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := c.clone()
	newConfig.Models[tier] = model
	return newConfig
}

// WithAllModels returns a new Config that uses one model for every tier
func (c *Config) WithAllModels(model string) *Config {
	newConfig := c.clone()
	for _, tier := range []ModelTier{TierLite, TierStandard, TierAdvanced} {
		newConfig.Models[tier] = model
	}
	return newConfig
}

// WithTemperature returns a new Config with a specific temperature for a tier
func (c *Config) WithTemperature(tier ModelTier, temperature float32) *Config {
	newConfig := c.clone()
	newConfig.Temperatures[tier] = temperature
	return newConfig
}

func (c *Config) clone() *Config {
	newConfig := &Config{
		Provider:     c.Provider,
		Models:       make(map[ModelTier]string, len(c.Models)),
		Temperatures: make(map[ModelTier]float32, len(c.Temperatures)),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	for k, v := range c.Temperatures {
		newConfig.Temperatures[k] = v
	}
	return newConfig
}
