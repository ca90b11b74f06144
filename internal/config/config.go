package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-agent/")
	v.AddConfigPath("$HOME/.mail-agent")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_AGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Schedule defaults
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.interval_hours", 6)
	v.SetDefault("schedule.retry_cooldown", "5m")
	v.SetDefault("schedule.tick_timeout", "30m")

	// Scan defaults
	v.SetDefault("scan.folder", "INBOX")
	v.SetDefault("scan.recent_limit", 100)
	v.SetDefault("scan.unread_limit", 50)
	v.SetDefault("scan.retention_days", 30)

	// Mailbox defaults
	v.SetDefault("mailbox.timeout", "120s")
	v.SetDefault("mailbox.spam_folders", []string{"[Gmail]/Spam", "Spam", "Junk", "Junk E-mail"})
	v.SetDefault("mailbox.trash_folders", []string{"[Gmail]/Trash", "Trash", "Deleted Items", "Deleted"})

	// Pattern defaults
	v.SetDefault("patterns.dir", "configs/patterns")

	// Summarization defaults
	v.SetDefault("summarize.tiers", []string{"ollama", "openrouter", "gemini", "deepseek"})
	v.SetDefault("summarize.message_delay", "1s")
	v.SetDefault("summarize.rate_limit_backoff", "45s")
	v.SetDefault("summarize.max_body_chars", 1500)

	// OpenRouter defaults
	v.SetDefault("openrouter.api_key", "")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "z-ai/glm-4.5-air:free")
	v.SetDefault("openrouter.max_tokens", 300)
	v.SetDefault("openrouter.temperature", 0.3)
	v.SetDefault("openrouter.timeout", "60s")

	// DeepSeek defaults
	v.SetDefault("deepseek.api_key", "")
	v.SetDefault("deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("deepseek.model", "deepseek-chat")
	v.SetDefault("deepseek.max_tokens", 300)
	v.SetDefault("deepseek.temperature", 0.3)
	v.SetDefault("deepseek.timeout", "60s")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 300)
	v.SetDefault("gemini.temperature", 0.3)

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 300)
	v.SetDefault("bedrock.temperature", 0.3)
	v.SetDefault("bedrock.top_p", 0.9)

	// Ollama defaults
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "qwen2.5:3b")
	v.SetDefault("ollama.timeout", "60s")

	// Telegram defaults
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)

	// Report defaults
	v.SetDefault("report.always_send", false)
	v.SetDefault("report.max_emails_per_report", 20)

	// Store defaults
	v.SetDefault("store.type", "memory")
	v.SetDefault("store.sqlite_path", "/data/mail_agent.db")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/mail_agent")
	v.SetDefault("store.retention_days", 30)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets a 64-bit integer value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
