package config

// AssistantConfig configures the hosted assistant backend.
type AssistantConfig struct {
	// Provider selects the backend: "openai" or "scripted" (local demo).
	Provider    string `envconfig:"PROVIDER" default:"openai"`
	APIKey      string `envconfig:"API_KEY"`
	AssistantID string `envconfig:"ASSISTANT_ID"`
	BaseURL     string `envconfig:"BASE_URL"`
	IndexName   string `envconfig:"INDEX_NAME" default:"Job Hunt Knowledge Base"`
}

// Validate reports the configuration error a request should fail with.
// It is checked per request so the server can start without credentials.
func (a AssistantConfig) Validate() error {
	if a.Provider == "scripted" {
		return nil
	}
	if a.APIKey == "" {
		return configErrors.New(ErrAPIKeyMissing)
	}
	if a.AssistantID == "" {
		return configErrors.New(ErrAssistantMissing)
	}
	return nil
}
