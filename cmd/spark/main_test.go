package main

import (
	"path/filepath"
	"testing"

	"github.com/uiyyiu/Copy-Spark/internal/app"
)

func TestSetupCommand_WritesConfig(t *testing.T) {
	dir := t.TempDir()
	flagConfig = filepath.Join(dir, "config.yml")
	defer func() { flagConfig = "" }()
	t.Setenv("SPARK_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cmd := setupCmd()
	cmd.SetArgs([]string{"--api-key", "test-key", "--theme", "paper", "--name", "مريم"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg, err := app.LoadConfig(flagConfig)
	if err != nil {
		t.Fatalf("load config back: %v", err)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Fatalf("api key = %q, want %q", cfg.GeminiAPIKey, "test-key")
	}
	if cfg.Theme != "paper" {
		t.Fatalf("theme = %q", cfg.Theme)
	}
	if !cfg.Profile.SignedIn() {
		t.Fatal("profile should be signed in after setting a name")
	}
	if cfg.Profile.DisplayName() != "مريم" {
		t.Fatalf("display name = %q", cfg.Profile.DisplayName())
	}
}

func TestLibraryCommand_EmptyStore(t *testing.T) {
	flagData = t.TempDir()
	flagConfig = filepath.Join(t.TempDir(), "config.yml")
	defer func() { flagData, flagConfig = "", "" }()

	cmd := libraryCmd()
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("library: %v", err)
	}
}
