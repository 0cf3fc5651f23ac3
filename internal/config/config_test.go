package config

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

func minimalConfig() Config {
	var cfg Config
	cfg.HTTP.Port = 8080
	cfg.Repository.BaseURL = "http://alfresco:8080"
	cfg.Engine.BaseURL = "http://opensearch:9200"
	cfg.Cursor.Addrs = []string{"localhost:6379"}
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := minimalConfig()
	cfg.ApplyDefaults()

	if cfg.Indexer.IntervalSec != 60 {
		t.Errorf("Indexer.IntervalSec = %d, want 60", cfg.Indexer.IntervalSec)
	}
	if cfg.Indexer.MaxResults != 100 {
		t.Errorf("Indexer.MaxResults = %d, want 100", cfg.Indexer.MaxResults)
	}
	if cfg.Indexer.SegmentChars != 512 {
		t.Errorf("Indexer.SegmentChars = %d, want 512", cfg.Indexer.SegmentChars)
	}
	if len(cfg.Indexer.IndexableTypes) != 1 || cfg.Indexer.IndexableTypes[0] != "cm:content" {
		t.Errorf("Indexer.IndexableTypes = %v", cfg.Indexer.IndexableTypes)
	}
	if cfg.Engine.IndexName != "alfresco" {
		t.Errorf("Engine.IndexName = %q, want alfresco", cfg.Engine.IndexName)
	}
	if cfg.ACL.EveryoneGroup != "GROUP_EVERYONE" {
		t.Errorf("ACL.EveryoneGroup = %q", cfg.ACL.EveryoneGroup)
	}
	if cfg.Cursor.Key != "mirrordex:cursor" {
		t.Errorf("Cursor.Key = %q", cfg.Cursor.Key)
	}
	if !cfg.EveryoneRead() {
		t.Error("EveryoneRead() = false, want true by default")
	}
}

func TestEveryoneRead_Disabled(t *testing.T) {
	cfg := minimalConfig()
	off := false
	cfg.ACL.EveryoneRead = &off
	if cfg.EveryoneRead() {
		t.Error("EveryoneRead() = true, want false when disabled")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(_ *Config) {}, false},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, true},
		{"missing repository", func(c *Config) { c.Repository.BaseURL = "" }, true},
		{"missing engine", func(c *Config) { c.Engine.BaseURL = "" }, true},
		{"missing cursor addrs", func(c *Config) { c.Cursor.Addrs = nil }, true},
		{"embedding model without key", func(c *Config) { c.Embedding.Model = "text-embedding-3-small" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := minimalConfig()
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("MIRRORDEX_TEST_PASSWORD", "s3cret")
	defer os.Unsetenv("MIRRORDEX_TEST_PASSWORD")

	raw := []byte(`
repository:
  base_url: ${MIRRORDEX_TEST_URL:-http://localhost:8080}
  password: ${MIRRORDEX_TEST_PASSWORD}
`)
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(raw), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cfg.Repository.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q, want default applied", cfg.Repository.BaseURL)
	}
	if cfg.Repository.Password != "s3cret" {
		t.Errorf("Password = %q, want env value", cfg.Repository.Password)
	}
}

func TestGetEnv(t *testing.T) {
	os.Unsetenv("ENV")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	os.Setenv("ENV", "prod")
	defer os.Unsetenv("ENV")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
