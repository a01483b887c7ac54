package config

import (
	"time"

	"github.com/Abraxas-365/mosaic/pkg/errx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var configErrors = errx.NewRegistry("CONFIG")

var (
	ErrLoad             = configErrors.Register("LOAD", errx.TypeConfiguration, 500, "Failed to load configuration")
	ErrAssistantMissing = configErrors.Register("ASSISTANT_MISSING", errx.TypeConfiguration, 500, "Assistant ID not configured")
	ErrAPIKeyMissing    = configErrors.Register("API_KEY_MISSING", errx.TypeConfiguration, 500, "OpenAI API key not configured")
)

// Config is the root configuration, one struct per concern.
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Email     NotifxConfig
	Resume    ResumeConfig
	Redis     RedisConfig
}

// ServerConfig configures the HTTP surface.
type ServerConfig struct {
	Port               string `envconfig:"PORT" default:"8080"`
	CORSOrigins        string `envconfig:"CORS_ORIGINS" default:"*"`
	AppVersion         string `envconfig:"APP_VERSION" default:"1.0.0"`
	MaxDurationSeconds int    `envconfig:"MAX_DURATION_SECONDS" default:"60"`
	MaxToolRounds      int    `envconfig:"MAX_TOOL_ROUNDS" default:"2"`
	UploadMaxBytes     int    `envconfig:"UPLOAD_MAX_BYTES" default:"20971520"`
}

// MaxDuration is the upper bound on one chat request, stream included.
func (s ServerConfig) MaxDuration() time.Duration {
	return time.Duration(s.MaxDurationSeconds) * time.Second
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		_ = godotenv.Load(f)
	}

	var cfg Config
	sections := []struct {
		prefix string
		target interface{}
	}{
		{"", &cfg.Server},
		{"OPENAI", &cfg.Assistant},
		{"EMAIL", &cfg.Email},
		{"RESUME", &cfg.Resume},
		{"REDIS", &cfg.Redis},
	}
	for _, s := range sections {
		if err := envconfig.Process(s.prefix, s.target); err != nil {
			return nil, configErrors.NewWithCause(ErrLoad, err).WithDetail("section", s.prefix)
		}
	}
	return &cfg, nil
}
