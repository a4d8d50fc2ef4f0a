package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// QuestionGen is for up-front interview question generation (quality matters,
	// runs in the background while the candidate waits)
	QuestionGen string `json:"questionGen"`

	// Eval is for per-answer evaluation and follow-up generation (must be fast,
	// the candidate is mid-conversation)
	Eval string `json:"eval"`

	// Review is for the post-interview full review (deep analysis, not blocking)
	Review string `json:"review"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			QuestionGen: getEnvOrDefault("GEMINI_MODEL_QUESTIONS", "gemini-2.0-flash"),
			Eval:        getEnvOrDefault("GEMINI_MODEL_EVAL", "gemini-2.5-flash-preview-05-20"),
			Review:      getEnvOrDefault("GEMINI_MODEL_REVIEW", "gemini-2.0-flash"),
		},
		TimeoutMS: 15000,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
