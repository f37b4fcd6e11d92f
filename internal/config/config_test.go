package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		t.Setenv(s.env, "")
	}
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")
}

// TestDefaults verifies default values survive an empty config file.
func TestDefaults(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DEVSPARK_GEMINI_API_KEY", "test-key")

	path := writeTempConfig(t, `{}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("GitHub.BaseURL = %q, want %q", cfg.GitHub.BaseURL, "https://api.github.com")
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, "gemini-2.5-flash")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

// TestFileValues verifies values read from the JSON file are applied.
func TestFileValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DEVSPARK_GEMINI_API_KEY", "test-key")

	path := writeTempConfig(t, `{
		"server.port": 8080,
		"gemini.model": "gemini-2.5-pro",
		"log.level": "debug"
	}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, "gemini-2.5-pro")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
}

// TestEnvOverride verifies environment variables override file values.
func TestEnvOverride(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DEVSPARK_GEMINI_API_KEY", "test-key")
	t.Setenv("DEVSPARK_SERVER_PORT", "9090")

	path := writeTempConfig(t, `{"server.port": 8080}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

// TestSecretsComeFromEnvOnly verifies secrets in the config file are ignored.
func TestSecretsComeFromEnvOnly(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DEVSPARK_GEMINI_API_KEY", "env-key")

	path := writeTempConfig(t, `{"gemini.api_key": "file-key", "github.token": "file-token"}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gemini.APIKey != "env-key" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Gemini.APIKey, "env-key")
	}
	if cfg.GitHub.Token != "" {
		t.Errorf("GitHub.Token = %q, want empty", cfg.GitHub.Token)
	}
}

// TestUnprefixedSecretFallbacks verifies GEMINI_API_KEY and GITHUB_TOKEN work.
func TestUnprefixedSecretFallbacks(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GEMINI_API_KEY", "plain-key")
	t.Setenv("GITHUB_TOKEN", "plain-token")

	path := writeTempConfig(t, `{}`)
	cfg, err := loadWith(newFileBackend(path))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Gemini.APIKey != "plain-key" {
		t.Errorf("Gemini.APIKey = %q, want %q", cfg.Gemini.APIKey, "plain-key")
	}
	if cfg.GitHub.Token != "plain-token" {
		t.Errorf("GitHub.Token = %q, want %q", cfg.GitHub.Token, "plain-token")
	}
}

// TestMissingGeminiKey verifies a clear error when no API key is set anywhere.
func TestMissingGeminiKey(t *testing.T) {
	clearConfigEnv(t)

	path := writeTempConfig(t, `{}`)
	_, err := loadWith(newFileBackend(path))
	if err == nil {
		t.Fatal("expected error for missing Gemini API key")
	}
	if !strings.Contains(err.Error(), "DEVSPARK_GEMINI_API_KEY") {
		t.Errorf("error should name the env var, got: %v", err)
	}
}

// TestSetKeyRejectsSecrets verifies secrets cannot be written to the file.
func TestSetKeyRejectsSecrets(t *testing.T) {
	if err := SetKey("gemini.api_key", "oops"); err == nil {
		t.Fatal("expected error when setting a secret key")
	}
}

// TestSetKeyRejectsUnknown verifies unknown keys are rejected.
func TestSetKeyRejectsUnknown(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := SetKey("nope.nothing", "x"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

// TestFileBackendRoundTrip verifies set/get/delete on the JSON file backend.
func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	b := newFileBackend(path)

	if err := b.SetString("log.level", "debug"); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	if err := b.SetInt("server.port", 7070); err != nil {
		t.Fatalf("SetInt: %v", err)
	}

	// Reload from disk.
	b2 := newFileBackend(path)
	s, ok, err := b2.GetString("log.level")
	if err != nil || !ok || s != "debug" {
		t.Fatalf("GetString = (%q, %v, %v), want (debug, true, nil)", s, ok, err)
	}
	i, ok, err := b2.GetInt("server.port")
	if err != nil || !ok || i != 7070 {
		t.Fatalf("GetInt = (%d, %v, %v), want (7070, true, nil)", i, ok, err)
	}

	if err := b2.Delete("log.level"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	b3 := newFileBackend(path)
	if _, ok, _ := b3.GetString("log.level"); ok {
		t.Fatal("expected log.level to be deleted")
	}
}
