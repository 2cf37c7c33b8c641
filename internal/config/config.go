package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	DataDir   string `json:"data_dir"`
	Workspace string `json:"workspace"`
	LogLevel  string `json:"log_level"`
	Relay     struct {
		BaseURL          string `json:"base_url"`
		ListenAddr       string `json:"listen_addr"`
		Credential       string `json:"credential"`
		SystemPromptPath string `json:"system_prompt_path"`
	} `json:"relay"`
	LLM struct {
		BaseURL     string  `json:"base_url"`
		APIKey      string  `json:"api_key"`
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float32 `json:"temperature"`
	} `json:"llm"`
	Auth struct {
		AllowedEmails   []string `json:"allowed_emails"`
		AllowedDomains  []string `json:"allowed_email_domains"`
		IdentityBaseURL string   `json:"identity_base_url"`
		CacheTTLMinutes int      `json:"cache_ttl_minutes"`
	} `json:"auth"`
}

// StorageRoot is the telemetry system's own storage area inside the
// workspace. Producers suppress events about paths under it.
func (c *Config) StorageRoot() string {
	return filepath.Join(c.Workspace, ".data")
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:   filepath.Join(os.Getenv("HOME"), ".tutorpipe"),
		Workspace: ".",
		LogLevel:  "info",
	}
	cfg.Relay.BaseURL = "http://localhost:3000"
	cfg.Relay.ListenAddr = ":3000"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Model = "llama3.2:latest"
	cfg.LLM.MaxTokens = 2000
	cfg.LLM.Temperature = 0.7
	cfg.Auth.CacheTTLMinutes = 60

	// Load from file if exists, otherwise write defaults
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}

	// Override from env (highest precedence)
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		cfg.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.Relay.Credential = token
	}
	if relayURL := os.Getenv("TUTOR_RELAY_URL"); relayURL != "" {
		cfg.Relay.BaseURL = relayURL
	}
	if emails := os.Getenv("ALLOWED_EMAILS"); emails != "" {
		cfg.Auth.AllowedEmails = splitList(emails)
	}
	if domains := os.Getenv("ALLOWED_EMAIL_DOMAINS"); domains != "" {
		cfg.Auth.AllowedDomains = splitList(domains)
	}

	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Save writes the config as indented JSON, atomically via temp file + rename.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename config: %w", err)
	}
	return nil
}

// ListValues returns the config as a flat dot-separated key map, optionally
// with secret values masked.
func ListValues(cfg *Config, maskSecrets bool) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	flat := Flatten(nested)
	if maskSecrets {
		flat = MaskSecrets(flat)
	}
	return flat, nil
}

// GetValue loads the config at path and returns the value for the
// dot-separated key.
func GetValue(path, key string) (any, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return nil, err
	}
	val, ok := flat[key]
	if !ok {
		return nil, fmt.Errorf("unknown config key: %s", key)
	}
	return val, nil
}

// SetValue loads the config at path, sets the dot-separated key to value,
// and saves it back.
func SetValue(path, key, value string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	flat, err := ListValues(cfg, false)
	if err != nil {
		return err
	}
	if _, ok := flat[key]; !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}
	flat[key] = coerce(flat[key], value)

	nested := Unflatten(flat)
	data, err := json.Marshal(nested)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("apply config value: %w", err)
	}
	return Save(path, cfg)
}

// coerce converts the string form to the existing value's JSON type.
func coerce(existing any, value string) any {
	switch existing.(type) {
	case float64:
		var n float64
		if _, err := fmt.Sscanf(value, "%g", &n); err == nil {
			return n
		}
	case bool:
		return value == "true"
	}
	return value
}
