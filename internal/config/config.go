// Package config loads application configuration from environment variables
// and an optional config file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable Load reads.
const EnvPrefix = "ARTISTBAN"

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// List sources.
const (
	ListSourceRaw    = "raw"
	ListSourceGitHub = "github"
)

// Config holds the application configuration.
type Config struct {
	ListenAddr  string
	ProxyAddr   string
	ProxyTarget string

	Store       string
	DBPath      string
	RedisURL    string
	RedisPrefix string

	ListSource  string
	ListURL     string
	ListRepo    string
	ListPath    string
	ListRef     string
	GitHubToken string

	WriteURL    string
	APIURL      string
	Account     string
	WriteRate   float64
	HTTPTimeout time.Duration

	ReportRepo  string
	ReportEmail string
	APIAddr     string
}

var defaults = map[string]any{
	"listen_addr":  "127.0.0.1:8787",
	"proxy_addr":   "127.0.0.1:8788",
	"proxy_target": "https://spclient.wg.spotify.com",
	"store":        StoreSQLite,
	"db_path":      "artistban.db",
	"redis_url":    "redis://127.0.0.1:6379/0",
	"redis_prefix": "artistban:",
	"list_source":  ListSourceRaw,
	"list_url":     "https://raw.githubusercontent.com/CennoxX/spotify-ai-blocker/refs/heads/main/SpotifyAiArtists.csv",
	"list_repo":    "CennoxX/spotify-ai-blocker",
	"list_path":    "SpotifyAiArtists.csv",
	"list_ref":     "main",
	"github_token": "",
	"write_url":    "https://spclient.wg.spotify.com/collection/v2/write",
	"api_url":      "https://api.spotify.com",
	"account":      "",
	"write_rate":   "2",
	"http_timeout": "30s",
	"report_repo":  "CennoxX/spotify-ai-blocker",
	"report_email": "cesar.bernard@gmx.de",
	"api_addr":     "http://127.0.0.1:8787",
}

// Load reads configuration and returns a validated Config. Every key can be
// set through ARTISTBAN_<KEY>; ARTISTBAN_CONFIG names an optional config file
// whose values environment variables override.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.BindEnv("config"); err != nil {
		return nil, fmt.Errorf("bind config env: %w", err)
	}
	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("http_timeout"))
	if err != nil {
		return nil, fmt.Errorf("%s_HTTP_TIMEOUT has invalid duration %q: %w", EnvPrefix, v.GetString("http_timeout"), err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%s_HTTP_TIMEOUT must be positive, got %s", EnvPrefix, timeout)
	}

	rate, err := strconv.ParseFloat(v.GetString("write_rate"), 64)
	if err != nil {
		return nil, fmt.Errorf("%s_WRITE_RATE has invalid number %q: %w", EnvPrefix, v.GetString("write_rate"), err)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%s_WRITE_RATE must be positive, got %v", EnvPrefix, rate)
	}

	cfg := &Config{
		ListenAddr:  v.GetString("listen_addr"),
		ProxyAddr:   v.GetString("proxy_addr"),
		ProxyTarget: v.GetString("proxy_target"),
		Store:       strings.ToLower(strings.TrimSpace(v.GetString("store"))),
		DBPath:      v.GetString("db_path"),
		RedisURL:    v.GetString("redis_url"),
		RedisPrefix: v.GetString("redis_prefix"),
		ListSource:  strings.ToLower(strings.TrimSpace(v.GetString("list_source"))),
		ListURL:     v.GetString("list_url"),
		ListRepo:    v.GetString("list_repo"),
		ListPath:    v.GetString("list_path"),
		ListRef:     v.GetString("list_ref"),
		GitHubToken: v.GetString("github_token"),
		WriteURL:    v.GetString("write_url"),
		APIURL:      v.GetString("api_url"),
		Account:     strings.TrimSpace(v.GetString("account")),
		WriteRate:   rate,
		HTTPTimeout: timeout,
		ReportRepo:  v.GetString("report_repo"),
		ReportEmail: v.GetString("report_email"),
		APIAddr:     strings.TrimRight(v.GetString("api_addr"), "/"),
	}

	switch cfg.Store {
	case StoreSQLite, StoreRedis:
	default:
		return nil, fmt.Errorf("%s_STORE must be %q or %q, got %q", EnvPrefix, StoreSQLite, StoreRedis, cfg.Store)
	}
	switch cfg.ListSource {
	case ListSourceRaw, ListSourceGitHub:
	default:
		return nil, fmt.Errorf("%s_LIST_SOURCE must be %q or %q, got %q", EnvPrefix, ListSourceRaw, ListSourceGitHub, cfg.ListSource)
	}

	return cfg, nil
}
