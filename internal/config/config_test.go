package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultsOnMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Relay.ListenAddr != ":3000" {
		t.Errorf("listen addr default = %q", cfg.Relay.ListenAddr)
	}
	if cfg.LLM.Model != "llama3.2:latest" {
		t.Errorf("model default = %q", cfg.LLM.Model)
	}
	if cfg.Auth.CacheTTLMinutes != 60 {
		t.Errorf("cache ttl default = %d", cfg.Auth.CacheTTLMinutes)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written to disk: %v", err)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Workspace = "/ws"
	cfg.LLM.Model = "gpt-4o"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Workspace != "/ws" || loaded.LLM.Model != "gpt-4o" {
		t.Errorf("values lost on round trip: %+v", loaded)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("TUTOR_RELAY_URL", "https://relay.example.com")
	t.Setenv("ALLOWED_EMAILS", "a@x.com, b@x.com ,")
	t.Setenv("ALLOWED_EMAIL_DOMAINS", "@school.edu")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Relay.Credential != "env-token" {
		t.Errorf("credential = %q", cfg.Relay.Credential)
	}
	if cfg.Relay.BaseURL != "https://relay.example.com" {
		t.Errorf("relay url = %q", cfg.Relay.BaseURL)
	}
	if len(cfg.Auth.AllowedEmails) != 2 || cfg.Auth.AllowedEmails[1] != "b@x.com" {
		t.Errorf("emails = %v", cfg.Auth.AllowedEmails)
	}
	if len(cfg.Auth.AllowedDomains) != 1 || cfg.Auth.AllowedDomains[0] != "@school.edu" {
		t.Errorf("domains = %v", cfg.Auth.AllowedDomains)
	}
}

func TestStorageRoot(t *testing.T) {
	cfg := &Config{Workspace: "/ws"}
	if got := cfg.StorageRoot(); got != filepath.Join("/ws", ".data") {
		t.Errorf("storage root = %q", got)
	}
}

func TestSetValueAndGetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "llm.model", "gpt-4o-mini"); err != nil {
		t.Fatal(err)
	}
	got, err := GetValue(path, "llm.model")
	if err != nil {
		t.Fatal(err)
	}
	if got != "gpt-4o-mini" {
		t.Errorf("llm.model = %v", got)
	}
}

func TestSetValueCoercesNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}

	if err := SetValue(path, "llm.max_tokens", "4096"); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LLM.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d", cfg.LLM.MaxTokens)
	}
}

func TestSetValueUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if _, err := Load(path); err != nil {
		t.Fatal(err)
	}
	if err := SetValue(path, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestListValuesMasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.LLM.APIKey = "sk-secret"
	cfg.Relay.Credential = "gh-token"

	flat, err := ListValues(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if flat["llm.api_key"] == "sk-secret" {
		t.Error("api key not masked")
	}
	if flat["relay.credential"] == "gh-token" {
		t.Error("credential not masked")
	}

	unmasked, err := ListValues(cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if unmasked["llm.api_key"] != "sk-secret" {
		t.Errorf("unmasked api key = %v", unmasked["llm.api_key"])
	}
}
