// Package config loads docchat configuration from the environment,
// optionally overlaid by a YAML config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies a completion backend.
type Provider string

const (
	ProviderAzure   Provider = "azure"
	ProviderOpenAI  Provider = "openai"
	ProviderOllama  Provider = "ollama"
	ProviderBedrock Provider = "bedrock"
)

// SearchProvider identifies a search-index backend. Empty disables retrieval.
type SearchProvider string

const (
	SearchDisabled SearchProvider = ""
	SearchAzure    SearchProvider = "azure"
	SearchSurreal  SearchProvider = "surreal"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Port string

	// Completion provider
	LLMProvider   Provider
	AzureEndpoint string
	AzureAPIKey   string
	Deployment    string
	EmbedDeploy   string
	OpenAIAPIKey  string
	OllamaHost    string
	OllamaModel   string
	BedrockModel  string
	AWSRegion     string

	// Durable conversation store (optional; empty disables the tier)
	RedisURL string

	// Retrieval (optional; SearchDisabled turns retrieval off)
	SearchProvider      SearchProvider
	AzureSearchEndpoint string
	AzureSearchAPIKey   string
	AzureSearchIndex    string

	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string

	// Basic auth
	AuthUsername string
	AuthPassword string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
// Unset optional values fall back to working defaults.
func Load() Config {
	return Config{
		Port: getEnv("DOCCHAT_PORT", "5000"),

		LLMProvider:   Provider(getEnv("LLM_PROVIDER", "azure")),
		AzureEndpoint: getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:   getEnv("AZURE_OPENAI_API_KEY", ""),
		Deployment:    getEnv("DEPLOYMENT_NAME", "gpt-5-chat"),
		EmbedDeploy:   getEnv("EMBEDDING_DEPLOYMENT", "text-embedding-3-small"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OllamaHost:    getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),
		BedrockModel:  getEnv("BEDROCK_MODEL", "anthropic.claude-3-haiku-20240307-v1:0"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),

		RedisURL: getEnv("REDIS_URL", ""),

		SearchProvider:      SearchProvider(getEnv("SEARCH_PROVIDER", defaultSearchProvider())),
		AzureSearchEndpoint: getEnv("AZURE_SEARCH_ENDPOINT", ""),
		AzureSearchAPIKey:   getEnv("AZURE_SEARCH_API_KEY", ""),
		AzureSearchIndex:    getEnv("AZURE_SEARCH_INDEX", ""),

		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "docchat"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "documents"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),

		AuthUsername: getEnv("AUTH_USERNAME", "admin"),
		AuthPassword: getEnv("AUTH_PASSWORD", "changeme"),

		LogFile:  getEnv("DOCCHAT_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("DOCCHAT_LOG_LEVEL", "INFO")),
	}
}

// defaultSearchProvider enables Azure search implicitly when the full
// endpoint/key/index triple is present, so retrieval can be configured
// from those three variables alone.
func defaultSearchProvider() string {
	if os.Getenv("AZURE_SEARCH_ENDPOINT") != "" &&
		os.Getenv("AZURE_SEARCH_API_KEY") != "" &&
		os.Getenv("AZURE_SEARCH_INDEX") != "" {
		return string(SearchAzure)
	}
	return string(SearchDisabled)
}

// fileConfig is the YAML overlay shape. Only non-empty fields override
// the environment.
type fileConfig struct {
	Port          string `yaml:"port"`
	LLMProvider   string `yaml:"llm_provider"`
	AzureEndpoint string `yaml:"azure_openai_endpoint"`
	AzureAPIKey   string `yaml:"azure_openai_api_key"`
	Deployment    string `yaml:"deployment_name"`
	EmbedDeploy   string `yaml:"embedding_deployment"`
	RedisURL      string `yaml:"redis_url"`

	SearchProvider      string `yaml:"search_provider"`
	AzureSearchEndpoint string `yaml:"azure_search_endpoint"`
	AzureSearchAPIKey   string `yaml:"azure_search_api_key"`
	AzureSearchIndex    string `yaml:"azure_search_index"`

	AuthUsername string `yaml:"auth_username"`
	AuthPassword string `yaml:"auth_password"`

	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"`
}

// LoadFile loads configuration from the environment and overlays values
// from the given YAML file.
func LoadFile(path string) (Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	overlay(&cfg.Port, fc.Port)
	if fc.LLMProvider != "" {
		cfg.LLMProvider = Provider(fc.LLMProvider)
	}
	overlay(&cfg.AzureEndpoint, fc.AzureEndpoint)
	overlay(&cfg.AzureAPIKey, fc.AzureAPIKey)
	overlay(&cfg.Deployment, fc.Deployment)
	overlay(&cfg.EmbedDeploy, fc.EmbedDeploy)
	overlay(&cfg.RedisURL, fc.RedisURL)
	if fc.SearchProvider != "" {
		cfg.SearchProvider = SearchProvider(fc.SearchProvider)
	}
	overlay(&cfg.AzureSearchEndpoint, fc.AzureSearchEndpoint)
	overlay(&cfg.AzureSearchAPIKey, fc.AzureSearchAPIKey)
	overlay(&cfg.AzureSearchIndex, fc.AzureSearchIndex)
	overlay(&cfg.AuthUsername, fc.AuthUsername)
	overlay(&cfg.AuthPassword, fc.AuthPassword)
	overlay(&cfg.LogFile, fc.LogFile)
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}

	return cfg, nil
}

func overlay(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
