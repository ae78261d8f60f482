package app

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("DefaultConfig().Model = %q, want %q", cfg.Model, "gemini-2.5-flash")
	}
	if cfg.BaseURL != "https://generativelanguage.googleapis.com/v1beta" {
		t.Fatalf("DefaultConfig().BaseURL = %q", cfg.BaseURL)
	}
	if cfg.MaxOutputTokens != 8192 {
		t.Fatalf("DefaultConfig().MaxOutputTokens = %d, want 8192", cfg.MaxOutputTokens)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	in := DefaultConfig()
	in.GeminiAPIKey = "test-key"
	in.Theme = "paper"
	in.Profile = Profile{ID: "u-1", Name: "مريم", Email: "mariam@example.com"}

	if err := SaveConfig(in, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	out, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if out.GeminiAPIKey != "test-key" || out.Theme != "paper" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.Profile.ID != "u-1" {
		t.Fatalf("profile lost in round trip: %+v", out.Profile)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if cfg.Model != "gemini-2.5-flash" {
		t.Fatalf("missing file should yield defaults, got model %q", cfg.Model)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SPARK_API_KEY", "env-key")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("GeminiAPIKey = %q, want env-key", cfg.GeminiAPIKey)
	}
}

func TestProfileDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{name: "full name wins", profile: Profile{Name: "مينا", Email: "m@x.com"}, want: "مينا"},
		{name: "email fallback", profile: Profile{Email: "m@x.com"}, want: "m@x.com"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.profile.DisplayName(); got != tc.want {
				t.Fatalf("DisplayName() = %q, want %q", got, tc.want)
			}
		})
	}
}
