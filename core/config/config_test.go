package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:    "123:abc",
			AdminIDs: "100, 200,300",
		},
	}
}

func TestParseAdminIDs(t *testing.T) {
	ids, err := ParseAdminIDs("100, 200,,300")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 3 || ids[0] != 100 || ids[1] != 200 || ids[2] != 300 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	if _, err := ParseAdminIDs(""); err == nil {
		t.Fatal("expected error for empty admin list")
	}
	if _, err := ParseAdminIDs("100,abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q, expected longpoll", cfg.Telegram.RunMode)
	}
	if cfg.Catalog.Backend != CatalogBackendFile {
		t.Fatalf("backend = %q, expected file", cfg.Catalog.Backend)
	}
	if cfg.Catalog.Path != "songs.json" {
		t.Fatalf("catalog path = %q", cfg.Catalog.Path)
	}
	if cfg.Media.Dir != "media" {
		t.Fatalf("media dir = %q", cfg.Media.Dir)
	}
}

func TestNormalizeRejectsUnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog.Backend = "sqlite"
	err := Normalize(cfg)
	if err == nil || !strings.Contains(err.Error(), "catalog.backend") {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestNormalizeRequiresAdmins(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AdminIDs = " , "
	if err := Normalize(cfg); err == nil {
		t.Fatal("expected error for blank admin list")
	}
}

func TestAdminIDsAccessor(t *testing.T) {
	cfg := validConfig()
	if err := Normalize(cfg); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	ids := cfg.AdminIDs()
	if len(ids) != 3 || ids[0] != 100 {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
