package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range Keys {
		t.Setenv(envPrefix+strings.ToUpper(key), "")
	}
	return filepath.Join(home, ".config", xdgAppName)
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != DefaultStore || cfg.LogLevel != DefaultLogLevel || cfg.AuthPort != DefaultAuthPort {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.DataDir != dir {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, dir)
	}
	if cfg.LogPath != filepath.Join(dir, "dayplan.log") {
		t.Errorf("LogPath = %q", cfg.LogPath)
	}
	if cfg.Demo || cfg.CalendarSync {
		t.Errorf("booleans should default to false: %+v", cfg)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	isolate(t)

	want := &Config{Store: StoreFile, CalendarSync: true, Notifications: "granted"}
	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if *got != *want {
		t.Errorf("LoadFile() = %+v, want %+v", got, want)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)

	if err := Save(&Config{Store: StoreFile, LogLevel: "INFO", Demo: true, AuthPort: "7000"}); err != nil {
		t.Fatal(err)
	}
	env := "DAYPLAN_LOG_LEVEL=DEBUG\nDAYPLAN_AUTH_PORT=7100\n"
	if err := os.WriteFile(filepath.Join(dir, envFile), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYPLAN_AUTH_PORT", "7200")
	t.Setenv("DAYPLAN_DEMO", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store != StoreFile {
		t.Errorf("Store = %q, want file from config.json", cfg.Store)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %q, want DEBUG from env file", cfg.LogLevel)
	}
	if cfg.AuthPort != "7200" {
		t.Errorf("AuthPort = %q, want 7200 from environment", cfg.AuthPort)
	}
	if cfg.Demo {
		t.Error("Demo = true, want environment override to false")
	}
}

func TestLoadInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("DAYPLAN_STORE", "postgres")
	if _, err := Load(); err == nil {
		t.Fatal("Load() accepted unknown store")
	}
}

func TestSet(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Set("calendar_sync", "true"); err != nil {
		t.Fatal(err)
	}
	if !cfg.CalendarSync {
		t.Error("calendar_sync not set")
	}
	if err := cfg.Set("notifications", "denied"); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Set("demo", "maybe"); err == nil {
		t.Error("Set(demo, maybe) accepted")
	}
	if err := cfg.Set("auth_port", "99999"); err == nil {
		t.Error("Set(auth_port, 99999) accepted")
	}
	if err := cfg.Set("colour", "red"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Set(colour) error = %v, want ErrUnknownKey", err)
	}
}
