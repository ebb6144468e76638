package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	// Provider selects which entry of Providers serves generation requests.
	Provider string `json:"provider"`
	// HistoryNamespace partitions history entries per deployment.
	HistoryNamespace string `json:"history_namespace"`
	TemplateGlob     string `json:"template_glob"`
	TokenTTLHours    int    `json:"token_ttl_hours"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Username string `json:"username"`
	Password string `json:"password"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
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

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// Load reads configuration from the provided path (defaults to config.json).
// A missing file is not an error; environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	var cfg Config
	file, err := os.Open(absPath)
	if err == nil {
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if strings.ContainsAny(cfg.BasicConfig.HistoryNamespace, " /:") {
		return nil, fmt.Errorf("history_namespace %q must not contain spaces, slashes or colons", cfg.BasicConfig.HistoryNamespace)
	}
	return &cfg, nil
}

func (cfg *Config) applyEnv() {
	if cfg.Providers == nil {
		cfg.Providers = make(map[string]ProviderConfig)
	}
	for provider, env := range map[string]string{
		"gemini": "GEMINI_API_KEY",
		"openai": "OPENAI_API_KEY",
		"claude": "CLAUDE_API_KEY",
	} {
		if key := os.Getenv(env); key != "" {
			pc := cfg.Providers[provider]
			pc.APIKey = key
			cfg.Providers[provider] = pc
		}
	}
	if dsn := os.Getenv("SQLITE_DSN"); dsn != "" {
		if cfg.Databases == nil {
			cfg.Databases = make(map[string]DatabaseConfig)
		}
		dc := cfg.Databases["sqlite3"]
		dc.DSN = dsn
		cfg.Databases["sqlite3"] = dc
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		host, port, ok := strings.Cut(addr, ":")
		cfg.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				cfg.Redis.Port = p
			}
		}
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	if ns := os.Getenv("HISTORY_NAMESPACE"); ns != "" {
		cfg.BasicConfig.HistoryNamespace = ns
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.BasicConfig.ServerAddress = ":" + strings.TrimPrefix(port, ":")
	}
}

func (cfg *Config) applyDefaults() {
	if cfg.BasicConfig.ServerAddress == "" {
		cfg.BasicConfig.ServerAddress = ":8090"
	}
	if cfg.BasicConfig.Provider == "" {
		cfg.BasicConfig.Provider = "gemini"
	}
	if cfg.BasicConfig.HistoryNamespace == "" {
		cfg.BasicConfig.HistoryNamespace = "default_app"
	}
	if cfg.BasicConfig.TemplateGlob == "" {
		cfg.BasicConfig.TemplateGlob = "web/templates/*.html"
	}
	if cfg.BasicConfig.TokenTTLHours <= 0 {
		cfg.BasicConfig.TokenTTLHours = 24
	}
	if cfg.Databases == nil {
		cfg.Databases = make(map[string]DatabaseConfig)
	}
	if _, ok := cfg.Databases["sqlite3"]; !ok {
		cfg.Databases["sqlite3"] = DatabaseConfig{DSN: "./data/promptdesk.db"}
	}
}
