// Package config holds the application configuration: tool settings from an
// optional yaml file, secrets and overrides from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds global configuration.
type Config struct {
	// Auth (environment only)
	AuthUsername  string `yaml:"-"`
	AuthPassword  string `yaml:"-"`
	SessionSecret string `yaml:"-"`

	// API keys (environment only)
	AnthropicAPIKey string `yaml:"-"`
	VoyageAIAPIKey  string `yaml:"-"`

	// Models
	AnthropicModel string `yaml:"anthropic_model"`
	EmbeddingModel string `yaml:"embedding_model"`

	// Store paths
	LocalVectorDBPath   string `yaml:"local_vector_db_path"`
	LocalImageStorePath string `yaml:"local_image_store_path"`

	// Ingestion
	MaxTokens         int      `yaml:"max_tokens"`
	Overlap           int      `yaml:"overlap"`
	AttachmentFolders []string `yaml:"attachment_folders"`

	// Retrieval / chat
	RAGClosestChunks int    `yaml:"rag_closest_chunks"`
	SystemMessage    string `yaml:"system_message"`

	// Optional embedding cache
	RedisURL string `yaml:"redis_url"`

	LogLevel string `yaml:"log_level"`
}

const defaultSystemMessage = `You are a helpful assistant that helps users explore and understand their personal notes. Structure your responses clearly using proper spacing and Markdown formatting.

Use proper Markdown formatting:
- Bold for emphasis using **text**
- Code blocks with ` + "```" + `language
- Lists with - or numbers
- Quote blocks with >

Keep responses clear and well-organized, and always link to the relevant notes when discussing their content.
`

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingModel:      "voyage-3",
		AnthropicModel:      "claude-sonnet-4-5",
		LocalVectorDBPath:   "data/vector.json",
		LocalImageStorePath: "data/images.json",
		MaxTokens:           1000,
		Overlap:             100,
		AttachmentFolders:   []string{"Z - Attachements"},
		RAGClosestChunks:    10,
		SystemMessage:       defaultSystemMessage,
		LogLevel:            "info",
	}
}

// Load reads config from the yaml file at path (defaults when it does not
// exist) and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.AuthUsername, "AUTH_USERNAME")
	setString(&c.AuthPassword, "AUTH_PASSWORD")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.VoyageAIAPIKey, "VOYAGE_AI_API_KEY")
	setString(&c.AnthropicModel, "ANTHROPIC_MODEL")
	setString(&c.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&c.LocalVectorDBPath, "LOCAL_VECTOR_DB_PATH")
	setString(&c.LocalImageStorePath, "LOCAL_IMAGE_STORE_PATH")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setInt(&c.RAGClosestChunks, "RAG_CLOSEST_CHUNKS")
	setInt(&c.MaxTokens, "MAX_TOKENS")
	setInt(&c.Overlap, "OVERLAP")
}

// ValidateIngest checks the credentials the ingest command needs.
func (c *Config) ValidateIngest() error {
	if c.VoyageAIAPIKey == "" {
		return fmt.Errorf("VOYAGE_AI_API_KEY environment variable not set")
	}
	return nil
}

// ValidateServe checks the credentials the serve command needs.
func (c *Config) ValidateServe() error {
	var missing []string
	for _, v := range []struct{ name, value string }{
		{"AUTH_USERNAME", c.AuthUsername},
		{"AUTH_PASSWORD", c.AuthPassword},
		{"SESSION_SECRET", c.SessionSecret},
		{"ANTHROPIC_API_KEY", c.AnthropicAPIKey},
		{"VOYAGE_AI_API_KEY", c.VoyageAIAPIKey},
	} {
		if v.value == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// SlogLevel maps the configured log level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
