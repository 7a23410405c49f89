package config

import (
	"os"
	"path/filepath"
	"testing"

	perrors "crypto-pulse/internal/errors"
)

func TestLoad_CreatesTemplatesOnFirstRun(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("Expected config.toml template to be created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "credentials.toml")); err != nil {
		t.Errorf("Expected credentials.toml template to be created: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "credentials.toml"))
	if err == nil && info.Mode().Perm() != 0600 {
		t.Errorf("Expected credentials file mode 0600, got %v", info.Mode().Perm())
	}

	// Defaults apply on the first run.
	if cfg.Tracking.DefaultWindowDays != 30 {
		t.Errorf("Expected default window 30, got %d", cfg.Tracking.DefaultWindowDays)
	}
	if len(cfg.Tracking.Assets) == 0 {
		t.Error("Expected default tracked assets")
	}
	if cfg.AI.Model != "llama3.2" {
		t.Errorf("Expected default model llama3.2, got %q", cfg.AI.Model)
	}
	if cfg.Database.Path != filepath.Join(dir, "data", "pulse.db") {
		t.Errorf("Unexpected default db path: %q", cfg.Database.Path)
	}
}

func TestLoad_ReadsConfigFile(t *testing.T) {
	dir := t.TempDir()

	content := `
[database]
path = "/tmp/custom.db"

[tracking]
default_window_days = 7

[tracking.assets]
bitcoin = "bitcoin"

[ai]
model = "mistral"
`
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatalf("Writing config failed: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/custom.db" {
		t.Errorf("Expected custom db path, got %q", cfg.Database.Path)
	}
	if cfg.Tracking.DefaultWindowDays != 7 {
		t.Errorf("Expected window 7, got %d", cfg.Tracking.DefaultWindowDays)
	}
	if cfg.AI.Model != "mistral" {
		t.Errorf("Expected model mistral, got %q", cfg.AI.Model)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()

	t.Setenv("NEWSAPI_API_KEY", "env-news-key")
	t.Setenv("CRYPTO_PULSE_DB", "/tmp/env.db")
	t.Setenv("CRYPTO_PULSE_AI_BASE_URL", "http://localhost:9999/v1")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Credentials.NewsAPI.APIKey != "env-news-key" {
		t.Errorf("Expected env news key, got %q", cfg.Credentials.NewsAPI.APIKey)
	}
	if cfg.Database.Path != "/tmp/env.db" {
		t.Errorf("Expected env db path, got %q", cfg.Database.Path)
	}
	if cfg.AI.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("Expected env base url, got %q", cfg.AI.BaseURL)
	}
}

func TestValidate(t *testing.T) {
	valid := &Config{
		Tracking: TrackingConfig{
			Assets:            map[string]string{"bitcoin": "bitcoin"},
			DefaultWindowDays: 30,
		},
		News: NewsConfig{PageSize: 20},
		AI:   AIConfig{MaxRetries: 3, BatchLimit: 5},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	noAssets := *valid
	noAssets.Tracking.Assets = nil
	err := noAssets.Validate()
	if err == nil {
		t.Fatal("Expected error for empty assets")
	}
	var verr *perrors.ValidationError
	if !perrors.As(err, &verr) {
		t.Fatalf("Expected a ValidationError, got %T: %v", err, err)
	}
	if verr.Field != "tracking.assets" {
		t.Errorf("Expected field tracking.assets, got %q", verr.Field)
	}

	badWindow := *valid
	badWindow.Tracking.DefaultWindowDays = 0
	if err := badWindow.Validate(); err == nil {
		t.Error("Expected error for zero default window")
	}

	badPageSize := *valid
	badPageSize.News.PageSize = 101
	if err := badPageSize.Validate(); err == nil {
		t.Error("Expected error for oversize page size")
	}
}

func TestAssetID(t *testing.T) {
	cfg := &Config{Tracking: TrackingConfig{Assets: map[string]string{"bitcoin": "bitcoin-id"}}}

	if id, ok := cfg.AssetID("bitcoin"); !ok || id != "bitcoin-id" {
		t.Errorf("AssetID(bitcoin) = %q, %v", id, ok)
	}
	if _, ok := cfg.AssetID("unknown"); ok {
		t.Error("Expected unknown asset to miss")
	}
}
