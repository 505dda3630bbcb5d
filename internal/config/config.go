// Package config loads server configuration from an optional YAML file
// with environment-variable overrides.
//
// PRECEDENCE (lowest to highest): built-in defaults → config.yaml → env
// vars. Secrets (JWT secret, provider API keys) normally arrive via env;
// the YAML file is for the boring knobs you want under version control.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to boot.
type Config struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"dbPath"`

	JWTSecret string `yaml:"jwtSecret"`

	OpenAIAPIKey string `yaml:"openaiAPIKey"`
	OpenAIModel  string `yaml:"openaiModel"`
	GeminiAPIKey string `yaml:"geminiAPIKey"`
	GeminiModel  string `yaml:"geminiModel"`

	// RedisAddr switches the rate limiter to distributed mode when set.
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	// RateLimit requests per RateWindow on the explain endpoint.
	// RateWindow is decoded by UnmarshalYAML below, not by tag.
	RateLimit  int           `yaml:"rateLimit"`
	RateWindow time.Duration `yaml:"-"`
}

// UnmarshalYAML decodes the config mapping, handling rateWindow by hand.
// yaml.v3 has no native time.Duration support: it would reject "1m" and,
// worse, silently read a bare 60 as 60 nanoseconds. Decoding the field as
// a string and running time.ParseDuration gives "1m"/"90s" the obvious
// meaning and makes a unitless value a loud error.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type plain Config // same fields, no methods — avoids recursing into this func
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}

	var raw struct {
		RateWindow string `yaml:"rateWindow"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.RateWindow != "" {
		d, err := time.ParseDuration(raw.RateWindow)
		if err != nil {
			return fmt.Errorf("invalid rateWindow %q (want a duration like \"1m\"): %w", raw.RateWindow, err)
		}
		c.RateWindow = d
	}
	return nil
}

// defaults returns the built-in baseline. 15 requests/minute mirrors the
// quota the product has always enforced on explanations.
func defaults() Config {
	return Config{
		Port:        8080,
		DBPath:      "data/codeinsight.db",
		OpenAIModel: "gpt-4o-mini",
		GeminiModel: "gemini-1.5-flash",
		RateLimit:   15,
		RateWindow:  time.Minute,
	}
}

// Load reads configuration from path. A missing file is not an error —
// everything can come from defaults and env vars.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// fine — run on defaults + env
		case err != nil:
			return cfg, fmt.Errorf("config: reading %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit = n
		}
	}
	if v := os.Getenv("RATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateWindow = d
		}
	}
}

func validate(cfg Config) error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: jwtSecret is required (set JWT_SECRET)")
	}
	if cfg.RateLimit <= 0 || cfg.RateWindow <= 0 {
		return errors.New("config: rateLimit and rateWindow must be positive")
	}
	return nil
}
