package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if writeErr := os.WriteFile(path, []byte(content), 0o600); writeErr != nil {
		t.Fatalf("write config file: %v", writeErr)
	}
	return path
}

const validConfig = `
auth:
  api_key: test-secret
llm:
  url: http://localhost:11434
cms:
  url: https://cms.example.com
  token: cms-token
`

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	cfg, loadErr := Load(path)
	if loadErr != nil {
		t.Fatalf("Load() error = %v", loadErr)
	}

	if cfg.Auth.APIKey != "test-secret" {
		t.Errorf("Auth.APIKey = %q, want %q", cfg.Auth.APIKey, "test-secret")
	}
	if cfg.Server.Address != ":8090" {
		t.Errorf("Server.Address default = %q, want %q", cfg.Server.Address, ":8090")
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeoutSeconds*time.Second {
		t.Errorf("Server.ReadTimeout default = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.SnapshotPath != "data/drafts.json" {
		t.Errorf("Store.SnapshotPath default = %q", cfg.Store.SnapshotPath)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model default = %q", cfg.LLM.Model)
	}
	if cfg.Research.MaxResults != 8 {
		t.Errorf("Research.MaxResults default = %d, want 8", cfg.Research.MaxResults)
	}
	if cfg.Redis.CacheTTL != time.Hour {
		t.Errorf("Redis.CacheTTL default = %v, want 1h", cfg.Redis.CacheTTL)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing api key",
			content: `
llm:
  url: http://localhost:11434
cms:
  url: https://cms.example.com
  token: cms-token
`,
		},
		{
			name: "missing llm url",
			content: `
auth:
  api_key: s
cms:
  url: https://cms.example.com
  token: cms-token
`,
		},
		{
			name: "missing cms token",
			content: `
auth:
  api_key: s
llm:
  url: http://localhost:11434
cms:
  url: https://cms.example.com
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.content)
			if _, loadErr := Load(path); loadErr == nil {
				t.Fatal("Load() expected error, got nil")
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	t.Setenv("BLOGSMITH_API_KEY", "env-secret")
	t.Setenv("BLOGSMITH_PORT", "9999")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("CMS_URL", "https://other.example.com")

	cfg, loadErr := Load(path)
	if loadErr != nil {
		t.Fatalf("Load() error = %v", loadErr)
	}

	if cfg.Auth.APIKey != "env-secret" {
		t.Errorf("Auth.APIKey = %q, want env override", cfg.Auth.APIKey)
	}
	if cfg.Server.Address != ":9999" {
		t.Errorf("Server.Address = %q, want :9999", cfg.Server.Address)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true from APP_DEBUG")
	}
	if cfg.CMS.URL != "https://other.example.com" {
		t.Errorf("CMS.URL = %q, want env override", cfg.CMS.URL)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, loadErr := Load(filepath.Join(t.TempDir(), "missing.yaml")); loadErr == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
}
