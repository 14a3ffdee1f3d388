package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SYNC_ORG_IDENTIFIER", "acme")
	t.Setenv("SYNC_CURSOR_API_KEY", "key_test")
	t.Setenv("SYNC_PORT_DRY_RUN", "true")
}

func TestLoadFromEnvWithDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Org.Identifier != "acme" {
		t.Errorf("org identifier: got %q", cfg.Org.Identifier)
	}
	if cfg.Cursor.BaseURL != "https://api.cursor.com" {
		t.Errorf("cursor base url default: got %q", cfg.Cursor.BaseURL)
	}
	if cfg.Cursor.PageSize != 200 || cfg.Cursor.MaxRetries != 5 {
		t.Errorf("cursor defaults: %+v", cfg.Cursor)
	}
	if cfg.Port.ChunkSize != 300 {
		t.Errorf("port chunk size default: got %d", cfg.Port.ChunkSize)
	}
	if cfg.Cursor.Timeout != 60*time.Second {
		t.Errorf("cursor timeout default: got %s", cfg.Cursor.Timeout)
	}
	if cfg.Database.Enabled() {
		t.Errorf("database must be disabled without a url")
	}
}

func TestLoadMissingRequiredVars(t *testing.T) {
	t.Setenv("SYNC_ORG_IDENTIFIER", "")
	t.Setenv("SYNC_CURSOR_API_KEY", "")
	t.Setenv("SYNC_PORT_DRY_RUN", "true")

	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, name := range []string{"SYNC_ORG_IDENTIFIER", "SYNC_CURSOR_API_KEY"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestLoadRequiresPortCredentialsUnlessDryRun(t *testing.T) {
	t.Setenv("SYNC_ORG_IDENTIFIER", "acme")
	t.Setenv("SYNC_CURSOR_API_KEY", "key_test")
	t.Setenv("SYNC_PORT_DRY_RUN", "false")

	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")}); err == nil {
		t.Fatal("expected an error without port credentials")
	}

	t.Setenv("SYNC_PORT_CLIENT_ID", "cid")
	t.Setenv("SYNC_PORT_CLIENT_SECRET", "secret")
	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")}); err != nil {
		t.Fatalf("load with credentials: %v", err)
	}
}

func TestLoadDryRunOptionWaivesPortCredentials(t *testing.T) {
	t.Setenv("SYNC_ORG_IDENTIFIER", "acme")
	t.Setenv("SYNC_CURSOR_API_KEY", "key_test")
	t.Setenv("SYNC_PORT_DRY_RUN", "false")

	cfg, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env"), DryRun: true})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Port.DryRun {
		t.Fatal("the dry-run option must force port.dry_run")
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SYNC_CURSOR_PAGE_SIZE", "50")

	path := filepath.Join(t.TempDir(), "syncd.yaml")
	content := "cursor:\n  timeout: 30s\n  page_size: 100\nsync:\n  lookback_days: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{ConfigFile: path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Cursor.Timeout != 30*time.Second {
		t.Errorf("duration from yaml: got %s", cfg.Cursor.Timeout)
	}
	if cfg.Sync.LookbackDays != 3 {
		t.Errorf("lookback from yaml: got %d", cfg.Sync.LookbackDays)
	}
	// Environment wins over the file.
	if cfg.Cursor.PageSize != 50 {
		t.Errorf("env override: got %d", cfg.Cursor.PageSize)
	}
}

func TestValidateDatabaseSettings(t *testing.T) {
	cfg := &Config{}
	cfg.Org.Identifier = "acme"
	cfg.Cursor.APIKey = "key"
	cfg.Port.DryRun = true
	cfg.Database.URL = "postgres://localhost/sync"
	cfg.Database.RunMigrations = true

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected an error without a migrations dir")
	}
	cfg.Database.MigrationsDir = "./db/migrations"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}
