package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"translingo/internal/provider"
)

// Provider names used as keys in Config.Providers.
const (
	ProviderDeepL          = "deepl"
	ProviderLLM            = "llm"
	ProviderMyMemory       = "mymemory"
	ProviderLibreTranslate = "libretranslate"
)

const (
	defaultConfigPath      = "config.json"
	defaultServerAddress   = ":8090"
	defaultStorage         = "memory"
	defaultHistoryLimit    = 10
	defaultProviderTimeout = 10
	defaultMinWorkers      = 2
	defaultMaxWorkers      = 32
	defaultQueueSize       = 64
	defaultWorkerIdle      = 1
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`

	// Kind selects the chat model backend of the llm provider: openai, claude or gemini.
	Kind  string `json:"kind"`
	Email string `json:"email"`
}

type BasicConfig struct {
	ServerAddress          string `json:"server_address"`
	Storage                string `json:"storage"`
	HistoryLimit           int    `json:"history_limit"`
	ProviderTimeoutSeconds int    `json:"provider_timeout_seconds"`
	ExternalDetection      bool   `json:"external_detection"`
	LogLevel               string `json:"log_level"`
	LogFormat              string `json:"log_format"`

	// Worker pool running translations; the idle timeout is in minutes.
	MinWorkers        int `json:"min_workers"`
	MaxWorkers        int `json:"max_workers"`
	QueueSize         int `json:"queue_size"`
	WorkerIdleTimeout int `json:"worker_idle_timeout"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// Default returns the configuration used when no file is present:
// in-memory history and the two keyless providers.
func Default() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			ProviderMyMemory:       {BaseURL: provider.DefaultMyMemoryURL},
			ProviderLibreTranslate: {BaseURL: provider.DefaultLibreTranslateURL},
		},
		Databases: map[string]DatabaseConfig{
			"sqlite3": {DSN: "data/translingo.db"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the provided path (defaults to config.json)
// and applies TRANSLINGO_* environment overrides. A missing default file is
// not an error; an explicitly named one is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	var cfg *Config
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		cfg = &Config{}
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		cfg.resolvePaths(filepath.Dir(absPath))
	case errors.Is(err, os.ErrNotExist) && !explicit:
		cfg = Default()
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports configuration that cannot be started.
func (c *Config) Validate() error {
	switch c.BasicConfig.Storage {
	case "memory", "redis":
	case "sqlite", "sqlite3", "mysql", "postgres":
		if _, ok := c.Databases[c.BasicConfig.Storage]; !ok {
			return fmt.Errorf("database config for %s not found", c.BasicConfig.Storage)
		}
	default:
		return fmt.Errorf("unsupported storage %q", c.BasicConfig.Storage)
	}
	if llm, ok := c.Providers[ProviderLLM]; ok && llm.APIKey != "" {
		switch llm.Kind {
		case "openai", "claude", "gemini":
		default:
			return fmt.Errorf("llm provider kind %q must be openai, claude or gemini", llm.Kind)
		}
	}
	return nil
}

// Provider returns the named provider section, or a zero value.
func (c *Config) Provider(name string) ProviderConfig {
	if c == nil || c.Providers == nil {
		return ProviderConfig{}
	}
	return c.Providers[name]
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = defaultServerAddress
	}
	if c.BasicConfig.Storage == "" {
		c.BasicConfig.Storage = defaultStorage
	}
	c.BasicConfig.Storage = strings.ToLower(c.BasicConfig.Storage)
	if c.BasicConfig.HistoryLimit <= 0 {
		c.BasicConfig.HistoryLimit = defaultHistoryLimit
	}
	if c.BasicConfig.ProviderTimeoutSeconds <= 0 {
		c.BasicConfig.ProviderTimeoutSeconds = defaultProviderTimeout
	}
	if c.BasicConfig.MinWorkers <= 0 {
		c.BasicConfig.MinWorkers = defaultMinWorkers
	}
	if c.BasicConfig.MaxWorkers <= 0 {
		c.BasicConfig.MaxWorkers = defaultMaxWorkers
	}
	if c.BasicConfig.MaxWorkers < c.BasicConfig.MinWorkers {
		c.BasicConfig.MaxWorkers = c.BasicConfig.MinWorkers
	}
	if c.BasicConfig.QueueSize <= 0 {
		c.BasicConfig.QueueSize = defaultQueueSize
	}
	if c.BasicConfig.WorkerIdleTimeout <= 0 {
		c.BasicConfig.WorkerIdleTimeout = defaultWorkerIdle
	}
	if c.BasicConfig.LogLevel == "" {
		c.BasicConfig.LogLevel = "info"
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	if llm, ok := c.Providers[ProviderLLM]; ok && llm.Kind == "" {
		llm.Kind = "openai"
		c.Providers[ProviderLLM] = llm
	}
}

// resolvePaths makes a relative sqlite DSN relative to the config file.
func (c *Config) resolvePaths(dir string) {
	for _, name := range []string{"sqlite", "sqlite3"} {
		db, ok := c.Databases[name]
		if !ok || db.DSN == "" || db.DSN == ":memory:" || strings.HasPrefix(db.DSN, "file:") {
			continue
		}
		if !filepath.IsAbs(db.DSN) {
			db.DSN = filepath.Join(dir, db.DSN)
			c.Databases[name] = db
		}
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("TRANSLINGO_ADDR"); v != "" {
		c.BasicConfig.ServerAddress = v
	}
	if v := getenv("TRANSLINGO_STORAGE"); v != "" {
		c.BasicConfig.Storage = v
	}
	if v := getenv("TRANSLINGO_LOG_LEVEL"); v != "" {
		c.BasicConfig.LogLevel = v
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	set := func(provider string, update func(*ProviderConfig)) {
		p := c.Providers[provider]
		update(&p)
		c.Providers[provider] = p
	}
	if v := getenv("TRANSLINGO_DEEPL_KEY"); v != "" {
		set(ProviderDeepL, func(p *ProviderConfig) { p.APIKey = v })
	}
	if v := getenv("TRANSLINGO_LLM_KEY"); v != "" {
		set(ProviderLLM, func(p *ProviderConfig) { p.APIKey = v })
	}
	if v := getenv("TRANSLINGO_LLM_KIND"); v != "" {
		set(ProviderLLM, func(p *ProviderConfig) { p.Kind = strings.ToLower(v) })
	}
	if v := getenv("TRANSLINGO_MYMEMORY_EMAIL"); v != "" {
		set(ProviderMyMemory, func(p *ProviderConfig) { p.Email = v })
	}
	if v := getenv("TRANSLINGO_LIBRETRANSLATE_URL"); v != "" {
		set(ProviderLibreTranslate, func(p *ProviderConfig) { p.BaseURL = v })
	}
	if v := getenv("TRANSLINGO_LIBRETRANSLATE_KEY"); v != "" {
		set(ProviderLibreTranslate, func(p *ProviderConfig) { p.APIKey = v })
	}
}
