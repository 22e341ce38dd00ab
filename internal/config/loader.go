package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"edgellm/internal/generation"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir   string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file"`
	// Engine selects the native engine: "llama" or "scripted".
	Engine       string `json:"engine" yaml:"engine" toml:"engine"`
	LlamaCtx     int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`
	MaxTokens    int    `json:"max_tokens" yaml:"max_tokens" toml:"max_tokens"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`

	Thresholds generation.Thresholds `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
}

const (
	DefaultAddr      = "127.0.0.1:8080"
	DefaultModelsDir = "~/models/edgellm"
	DefaultEngine    = "llama"
	DefaultLlamaCtx  = 2048
	DefaultMaxTokens = 512
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// FromEnv fills unset fields from EDGELLM_* variables. getenv is usually
// os.Getenv.
func (c Config) FromEnv(getenv func(string) string) Config {
	str := func(dst *string, key string) {
		if *dst == "" {
			*dst = getenv(key)
		}
	}
	num := func(dst *int, key string) {
		if *dst != 0 {
			return
		}
		if n, err := strconv.Atoi(getenv(key)); err == nil {
			*dst = n
		}
	}
	str(&c.Addr, "EDGELLM_ADDR")
	str(&c.ModelsDir, "EDGELLM_MODELS_DIR")
	str(&c.CatalogFile, "EDGELLM_CATALOG_FILE")
	str(&c.Engine, "EDGELLM_ENGINE")
	str(&c.LogLevel, "EDGELLM_LOG_LEVEL")
	str(&c.LogFormat, "EDGELLM_LOG_FORMAT")
	num(&c.LlamaCtx, "EDGELLM_LLAMA_CTX")
	num(&c.LlamaThreads, "EDGELLM_LLAMA_THREADS")
	num(&c.MaxTokens, "EDGELLM_MAX_TOKENS")
	return c
}

// WithDefaults replaces zero values with the shipped defaults.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	if c.LlamaCtx <= 0 {
		c.LlamaCtx = DefaultLlamaCtx
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	c.Thresholds = c.Thresholds.WithDefaults()
	return c
}
