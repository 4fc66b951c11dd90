package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := LoadConfig(t.TempDir(), 8002)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ServerPort != 8002 {
		t.Errorf("ServerPort = %d, want 8002", cfg.ServerPort)
	}
	if cfg.SigningKey != DevSigningKey {
		t.Errorf("SigningKey = %q, want dev key", cfg.SigningKey)
	}
	if cfg.SettlementDelay != 2*time.Second {
		t.Errorf("SettlementDelay = %v, want 2s", cfg.SettlementDelay)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "SERVER_PORT=9100\nSIGNING_KEY=file-secret\nSETTLEMENT_DELAY=500ms\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SIGNING_KEY", "env-secret")

	cfg, err := LoadConfig(dir, 8003)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.ServerPort != 9100 {
		t.Errorf("ServerPort = %d, want 9100", cfg.ServerPort)
	}
	if cfg.SigningKey != "env-secret" {
		t.Errorf("SigningKey = %q, environment should win", cfg.SigningKey)
	}
	if cfg.SettlementDelay != 500*time.Millisecond {
		t.Errorf("SettlementDelay = %v, want 500ms", cfg.SettlementDelay)
	}
}

func TestLoadConfigReadsLegacyVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("PORT", "9200")

	cfg, err := LoadConfig(t.TempDir(), 8002)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SigningKey != "legacy-secret" {
		t.Errorf("SigningKey = %q, want the JWT_SECRET value", cfg.SigningKey)
	}
	if cfg.ServerPort != 9200 {
		t.Errorf("ServerPort = %d, want the PORT value", cfg.ServerPort)
	}

	// the current names win when both are set
	t.Setenv("SIGNING_KEY", "current-secret")
	t.Setenv("SERVER_PORT", "9300")
	cfg, err = LoadConfig(t.TempDir(), 8002)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SigningKey != "current-secret" || cfg.ServerPort != 9300 {
		t.Errorf("got %q/%d, want current-secret/9300", cfg.SigningKey, cfg.ServerPort)
	}
}

func TestLoadConfigLegacySecretStillBlocksDevKeyInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", DevSigningKey)
	if _, err := LoadConfig(t.TempDir(), 8002); err == nil {
		t.Fatal("expected the dev key to be rejected in production")
	}
}

func TestLoadConfigRejectsDevKeyInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(t.TempDir(), 8002); err == nil {
		t.Fatal("expected production config with dev key to fail")
	}
}

func TestRedact(t *testing.T) {
	cfg := Config{SigningKey: "s", RedisPassword: "p"}
	r := cfg.Redact()
	if r.SigningKey != "****" || r.RedisPassword != "****" {
		t.Errorf("Redact left secrets: %+v", r)
	}
	if cfg.SigningKey != "s" {
		t.Error("Redact mutated the original")
	}
}
