package app

import (
	"strings"
	"testing"
)

func TestRedactSecrets_ReplacesProvidedValues(t *testing.T) {
	in := `Post "https://example.com/models/x:generateContent?key=AIzaSecret123": dial tcp: timeout`
	out := RedactSecrets(in, "AIzaSecret123")
	if strings.Contains(out, "AIzaSecret123") {
		t.Fatalf("secret leaked: %q", out)
	}
	if !strings.Contains(out, redactedPlaceholder) {
		t.Fatalf("placeholder missing: %q", out)
	}
}

func TestRedactSecrets_UsesEnvValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-secret")
	out := RedactSecrets("token env-secret expired")
	if strings.Contains(out, "env-secret") {
		t.Fatalf("env secret leaked: %q", out)
	}
}

func TestRedactSecrets_NoSecretsPassthrough(t *testing.T) {
	t.Setenv("SPARK_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	in := "nothing to hide"
	if out := RedactSecrets(in); out != in {
		t.Fatalf("got %q, want passthrough", out)
	}
}
