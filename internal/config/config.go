package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DriverCanned = "canned"
	DriverOpenAI = "openai"
	DriverHTTP   = "http"
)

type Config struct {
	Port           string `env:"PORT,default=8080" validate:"required"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=*"`
	DatabaseURL    string `env:"DATABASE_URL"`

	Driver     string        `env:"WIDGET_DRIVER,default=canned" validate:"oneof=canned openai http"`
	ReplyDelay time.Duration `env:"WIDGET_REPLY_DELAY,default=1s" validate:"gte=0"`
	Greeting   string        `env:"WIDGET_GREETING,default=Hi there! What brings you here today?" validate:"required"`
	SessionTTL time.Duration `env:"WIDGET_SESSION_TTL,default=30m" validate:"gt=0"`
	PromptFile string        `env:"WIDGET_PROMPT_FILE"`
	Companies  string        `env:"WIDGET_COMPANIES"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY" validate:"required_if=Driver openai"`
	OpenAIModel  string `env:"OPENAI_MODEL,default=gpt-4o-mini"`

	AssistantURL   string `env:"ASSISTANT_URL" validate:"required_if=Driver http"`
	AssistantToken string `env:"ASSISTANT_TOKEN"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env file loaded: %v", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address; PORT may already be ":8080" or "host:8080".
func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c Config) Origins() []string {
	out := splitList(c.AllowedOrigins)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// CompanyList splits WIDGET_COMPANIES on commas. Empty means any company may
// sign in.
func (c Config) CompanyList() []string {
	return splitList(c.Companies)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
