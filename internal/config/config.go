package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	BotToken   string `yaml:"bot_token"`
	WebhookURL string `yaml:"webhook_url"`
}

type PDFConfig struct {
	// FontPath is a UTF-8 TTF; empty uses the core Helvetica font.
	FontPath string `yaml:"font_path"`
}

type TextGenConfig struct {
	// Provider is "openai" or "gemini".
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	OpenAIKey      string        `yaml:"openai_api_key"`
	OpenAIBaseURL  string        `yaml:"openai_base_url"`
	GeminiKey      string        `yaml:"gemini_api_key"`
	BreakerTimeout time.Duration `yaml:"breaker_timeout"`
	BreakerTrips   uint32        `yaml:"breaker_trips"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
	Tasks struct {
		StrictTransitions bool `yaml:"strict_transitions"`
	} `yaml:"tasks"`
	Email    EmailConfig    `yaml:"email"`
	Telegram TelegramConfig `yaml:"telegram"`
	TextGen  TextGenConfig  `yaml:"textgen"`
	PDF      PDFConfig      `yaml:"pdf"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads the YAML file at path (a missing file is not an error), then
// applies .env and process environment overrides and fills in defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString(&cfg.Database.DSN, "DATABASE_URL")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.TextGen.OpenAIKey, "OPENAI_API_KEY")
	setString(&cfg.TextGen.GeminiKey, "GEMINI_API_KEY")
	setString(&cfg.TextGen.Provider, "TEXTGEN_PROVIDER")
	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.Telegram.WebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.Email.SMTPPassword, "SMTP_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TASKS_STRICT_TRANSITIONS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tasks.StrictTransitions = b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}
	if cfg.TextGen.Provider == "" {
		cfg.TextGen.Provider = "openai"
	}
	if cfg.TextGen.Model == "" {
		switch cfg.TextGen.Provider {
		case "gemini":
			cfg.TextGen.Model = "gemini-2.5-flash"
		default:
			cfg.TextGen.Model = "gpt-5"
		}
	}
	if cfg.TextGen.BreakerTimeout == 0 {
		cfg.TextGen.BreakerTimeout = 30 * time.Second
	}
	if cfg.TextGen.BreakerTrips == 0 {
		cfg.TextGen.BreakerTrips = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
