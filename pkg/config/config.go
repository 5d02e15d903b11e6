// Package config loads dayplan settings from the JSON config file, an
// optional env file next to it, and DAYPLAN_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	xdgAppName = "dayplan"
	configFile = "config.json"
	envFile    = "dayplan.env"
	envPrefix  = "DAYPLAN_"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

const (
	DefaultStore         = StoreSQLite
	DefaultLogLevel      = "WARN"
	DefaultAuthPort      = "6789"
	DefaultNotifications = "prompt"
)

var ErrUnknownKey = errors.New("unknown config key")

type Config struct {
	DataDir       string `json:"data_dir,omitempty"`
	Store         string `json:"store,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
	LogPath       string `json:"log_path,omitempty"`
	Demo          bool   `json:"demo,omitempty"`
	CalendarSync  bool   `json:"calendar_sync,omitempty"`
	ClientSecrets string `json:"client_secrets,omitempty"`
	AuthPort      string `json:"auth_port,omitempty"`
	Notifications string `json:"notifications,omitempty"`
}

// Keys lists the settings accepted by Set, in display order.
var Keys = []string{
	"data_dir", "store", "log_level", "log_path", "demo",
	"calendar_sync", "client_secrets", "auth_port", "notifications",
}

func GetConfigDir() (string, error) {
	xdgHome, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(xdgHome, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load returns the effective configuration. Precedence is environment, then
// the env file, then config.json, then defaults.
func Load() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	fromJSON, err := LoadFile()
	if err != nil {
		return nil, err
	}

	fromEnvFile, err := godotenv.Read(filepath.Join(dir, envFile))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	layer := func(key, jsonValue, def string) string {
		name := envPrefix + strings.ToUpper(key)
		return coalesce(os.Getenv(name), fromEnvFile[name], jsonValue, def)
	}

	dataDir := layer("data_dir", fromJSON.DataDir, dir)
	cfg := &Config{
		DataDir:       dataDir,
		Store:         layer("store", fromJSON.Store, DefaultStore),
		LogLevel:      layer("log_level", fromJSON.LogLevel, DefaultLogLevel),
		LogPath:       layer("log_path", fromJSON.LogPath, filepath.Join(dataDir, "dayplan.log")),
		ClientSecrets: layer("client_secrets", fromJSON.ClientSecrets, filepath.Join(dir, "credentials.json")),
		AuthPort:      layer("auth_port", fromJSON.AuthPort, DefaultAuthPort),
		Notifications: layer("notifications", fromJSON.Notifications, DefaultNotifications),
	}
	if cfg.Demo, err = parseBool("demo", layer("demo", formatBool(fromJSON.Demo), "")); err != nil {
		return nil, err
	}
	if cfg.CalendarSync, err = parseBool("calendar_sync", layer("calendar_sync", formatBool(fromJSON.CalendarSync), "")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads config.json alone. A missing file yields an empty Config.
func LoadFile() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// Set assigns value to the setting named key.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "data_dir":
		c.DataDir = value
	case "store":
		c.Store = value
	case "log_level":
		c.LogLevel = value
	case "log_path":
		c.LogPath = value
	case "demo":
		c.Demo, err = parseBool(key, value)
	case "calendar_sync":
		c.CalendarSync, err = parseBool(key, value)
	case "client_secrets":
		c.ClientSecrets = value
	case "auth_port":
		c.AuthPort = value
	case "notifications":
		c.Notifications = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the enumerated settings. Empty values are allowed.
func (c *Config) Validate() error {
	switch c.Store {
	case "", StoreSQLite, StoreFile, StoreMemory:
	default:
		return fmt.Errorf("invalid store %q: want sqlite, file or memory", c.Store)
	}
	switch c.Notifications {
	case "", "granted", "denied", "prompt":
	default:
		return fmt.Errorf("invalid notifications policy %q: want granted, denied or prompt", c.Notifications)
	}
	if c.AuthPort != "" {
		if port, err := strconv.Atoi(c.AuthPort); err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid auth port %q", c.AuthPort)
		}
	}
	return nil
}

func parseBool(key, value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return ""
}

func coalesce(args ...string) string {
	for _, s := range args {
		if s != "" {
			return s
		}
	}
	return ""
}
