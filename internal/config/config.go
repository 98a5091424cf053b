package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	SessionSecret      string `env:"SESSION_SECRET,required"`
	SessionTTLHours    int    `env:"SESSION_TTL_HOURS" envDefault:"12"`
	RememberTTLHours   int    `env:"REMEMBER_TTL_HOURS" envDefault:"720"`

	IdentityAPIKey  string `env:"IDENTITY_API_KEY"`
	IdentityBaseURL string `env:"IDENTITY_BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`

	AssistantAPIKey  string `env:"ASSISTANT_API_KEY"`
	AssistantBaseURL string `env:"ASSISTANT_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	AssistantModel   string `env:"ASSISTANT_MODEL" envDefault:"deepseek/deepseek-r1:free"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SeedDoctors bool `env:"SEED_DOCTORS" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
