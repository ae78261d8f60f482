package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile identifies the signed-in teacher. Saved items and chat sessions
// are scoped by ID; a zero Profile means signed out.
type Profile struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Email string `yaml:"email" json:"email"`
}

func (p Profile) SignedIn() bool {
	return strings.TrimSpace(p.ID) != ""
}

// DisplayName prefers the full name and falls back to the email address,
// mirroring how the account header resolves a label.
func (p Profile) DisplayName() string {
	if strings.TrimSpace(p.Name) != "" {
		return p.Name
	}
	return p.Email
}

type Config struct {
	GeminiAPIKey    string  `yaml:"gemini_api_key"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Theme           string  `yaml:"theme"`
	LogLevel        string  `yaml:"log_level"`
	Profile         Profile `yaml:"profile"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		MaxOutputTokens: 8192,
		Theme:           "midnight",
		LogLevel:        "info",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = 8192
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the key come from the environment without touching the file.
// The YAML file keeps the key in plaintext, same trade-off the browser
// version made with local storage.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("SPARK_API_KEY")); v != "" {
		c.GeminiAPIKey = v
	} else if v := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); v != "" && c.GeminiAPIKey == "" {
		c.GeminiAPIKey = v
	}
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if path == "" {
		return errors.New("no path available for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "spark", "config.yml")
}

// DefaultDataDir holds the sqlite library and the log file.
func DefaultDataDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "spark")
	}
	return filepath.Join(base, "spark")
}
