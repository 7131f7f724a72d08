package app

import (
	"datasources-client/internal/auth"
	"datasources-client/internal/components/configutil"
	"datasources-client/internal/components/db"
	"datasources-client/internal/components/telemetry"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	DefaultBaseUrl    = "https://data-sources.pdap.io/api"
	DefaultConfigName = "datasources.json5"

	EnvBaseUrl = "DATASOURCES_API_BASE_URL"
	EnvApiKey  = "DATASOURCES_API_KEY"
)

type ApiConfig struct {
	BaseUrl           string  `json:"base_url" yaml:"base_url"`
	ApiKey            string  `json:"api_key" yaml:"api_key"`
	TimeoutSeconds    int     `json:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
	UserAgent         string  `json:"user_agent" yaml:"user_agent"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// SessionConfig selects where the session is kept between invocations.
// Backend is one of "sqlite" (default), "redis" or "memory".
type SessionConfig struct {
	Backend  string      `json:"backend" yaml:"backend"`
	Database db.Config   `json:"database" yaml:"database"`
	Redis    RedisConfig `json:"redis" yaml:"redis"`
}

type SearchConfig struct {
	CacheSeconds int `json:"cache_seconds" yaml:"cache_seconds"`
}

type Config struct {
	Api       ApiConfig          `json:"api" yaml:"api"`
	Session   SessionConfig      `json:"session" yaml:"session"`
	Search    SearchConfig       `json:"search" yaml:"search"`
	Github    auth.GithubOptions `json:"github" yaml:"github"`
	Telemetry telemetry.Config   `json:"telemetry" yaml:"telemetry"`
}

// LoadConfig reads the config file at path (and its .local override), applies
// environment overrides and fills in defaults. A missing file is only an error
// when the path was given explicitly.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		err = nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	err = cfg.applyEnv()
	if err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigName
	}
	return filepath.Join(dir, "datasources-client", DefaultConfigName)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "datasources-session.db"
	}
	return filepath.Join(dir, "datasources-client", "session.db")
}

func getEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (c *Config) applyEnv() error {
	if value, ok := getEnv(EnvBaseUrl); ok {
		c.Api.BaseUrl = value
	}
	if value, ok := getEnv(EnvApiKey); ok {
		c.Api.ApiKey = value
	}
	if value, ok := getEnv("DATASOURCES_SEARCH_CACHE_SECONDS"); ok {
		seconds, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("DATASOURCES_SEARCH_CACHE_SECONDS: %w", err)
		}
		c.Search.CacheSeconds = seconds
	}
	if value, ok := getEnv("DATASOURCES_SESSION_BACKEND"); ok {
		c.Session.Backend = value
	}
	if value, ok := getEnv("DATASOURCES_GITHUB_CLIENT_ID"); ok {
		c.Github.ClientID = value
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Api.BaseUrl == "" {
		c.Api.BaseUrl = DefaultBaseUrl
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "sqlite"
	}
	if c.Session.Backend == "sqlite" && c.Session.Database.File == "" && c.Session.Database.Url == "" {
		c.Session.Database.File = defaultSessionFile()
	}
	if c.Session.Backend == "redis" && c.Session.Redis.Addr == "" {
		c.Session.Redis.Addr = "localhost:6379"
	}
}
