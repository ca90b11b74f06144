package config

import (
	"fmt"
	"time"
)

// AccountConfig represents one mailbox account to process
type AccountConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	IMAPHost string `mapstructure:"imap_host"`
	IMAPPort int    `mapstructure:"imap_port"`
	Enabled  bool   `mapstructure:"enabled"`
}

// ScanConfig represents the two-pass scan parameters
type ScanConfig struct {
	Folder        string
	RecentLimit   int
	UnreadLimit   int
	RetentionDays int
}

// MailboxConfig represents IMAP session parameters shared by all accounts
type MailboxConfig struct {
	Timeout      time.Duration
	SpamFolders  []string
	TrashFolders []string
}

// SummarizeConfig represents the tier chain parameters
type SummarizeConfig struct {
	Tiers            []string
	MessageDelay     time.Duration
	RateLimitBackoff time.Duration
	MaxBodyChars     int
}

// OpenRouterConfig represents the configuration for the OpenRouter tier
type OpenRouterConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DeepSeekConfig represents the configuration for the DeepSeek tier
type DeepSeekConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// GeminiConfig represents the configuration for the Gemini tier
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// BedrockConfig represents the configuration for the Bedrock tier
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OllamaConfig represents the configuration for the local Ollama tier
type OllamaConfig struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// TelegramConfig represents the operator report channel
type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

// ReportConfig represents report delivery parameters
type ReportConfig struct {
	AlwaysSend         bool
	MaxEmailsPerReport int
}

// ScheduleConfig represents the periodic run parameters
type ScheduleConfig struct {
	Enabled       bool
	Interval      time.Duration
	RetryCooldown time.Duration
	TickTimeout   time.Duration
}

// GetAccounts returns the configured mailbox accounts
func (c *Config) GetAccounts() ([]AccountConfig, error) {
	var accounts []AccountConfig
	if err := c.v.UnmarshalKey("accounts", &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

// GetScan returns the scan configuration
func (c *Config) GetScan() ScanConfig {
	return ScanConfig{
		Folder:        c.GetString("scan.folder"),
		RecentLimit:   c.GetInt("scan.recent_limit"),
		UnreadLimit:   c.GetInt("scan.unread_limit"),
		RetentionDays: c.GetInt("scan.retention_days"),
	}
}

// GetMailbox returns the mailbox configuration
func (c *Config) GetMailbox() (MailboxConfig, error) {
	timeout, err := c.GetDuration("mailbox.timeout")
	if err != nil {
		return MailboxConfig{}, fmt.Errorf("invalid mailbox timeout: %w", err)
	}
	return MailboxConfig{
		Timeout:      timeout,
		SpamFolders:  c.GetStringSlice("mailbox.spam_folders"),
		TrashFolders: c.GetStringSlice("mailbox.trash_folders"),
	}, nil
}

// GetSummarize returns the tier chain configuration
func (c *Config) GetSummarize() (SummarizeConfig, error) {
	delay, err := c.GetDuration("summarize.message_delay")
	if err != nil {
		return SummarizeConfig{}, fmt.Errorf("invalid message delay: %w", err)
	}
	backoff, err := c.GetDuration("summarize.rate_limit_backoff")
	if err != nil {
		return SummarizeConfig{}, fmt.Errorf("invalid rate limit backoff: %w", err)
	}
	return SummarizeConfig{
		Tiers:            c.GetStringSlice("summarize.tiers"),
		MessageDelay:     delay,
		RateLimitBackoff: backoff,
		MaxBodyChars:     c.GetInt("summarize.max_body_chars"),
	}, nil
}

// GetOpenRouter returns the OpenRouter configuration
func (c *Config) GetOpenRouter() (OpenRouterConfig, error) {
	timeout, err := c.GetDuration("openrouter.timeout")
	if err != nil {
		return OpenRouterConfig{}, fmt.Errorf("invalid openrouter timeout: %w", err)
	}
	return OpenRouterConfig{
		APIKey:      c.GetString("openrouter.api_key"),
		BaseURL:     c.GetString("openrouter.base_url"),
		Model:       c.GetString("openrouter.model"),
		MaxTokens:   c.GetInt("openrouter.max_tokens"),
		Temperature: float32(c.GetFloat64("openrouter.temperature")),
		Timeout:     timeout,
	}, nil
}

// GetDeepSeek returns the DeepSeek configuration
func (c *Config) GetDeepSeek() (DeepSeekConfig, error) {
	timeout, err := c.GetDuration("deepseek.timeout")
	if err != nil {
		return DeepSeekConfig{}, fmt.Errorf("invalid deepseek timeout: %w", err)
	}
	return DeepSeekConfig{
		APIKey:      c.GetString("deepseek.api_key"),
		BaseURL:     c.GetString("deepseek.base_url"),
		Model:       c.GetString("deepseek.model"),
		MaxTokens:   c.GetInt("deepseek.max_tokens"),
		Temperature: float32(c.GetFloat64("deepseek.temperature")),
		Timeout:     timeout,
	}, nil
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		Model:       c.GetString("gemini.model"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetOllama returns the Ollama configuration
func (c *Config) GetOllama() (OllamaConfig, error) {
	timeout, err := c.GetDuration("ollama.timeout")
	if err != nil {
		return OllamaConfig{}, fmt.Errorf("invalid ollama timeout: %w", err)
	}
	return OllamaConfig{
		URL:     c.GetString("ollama.url"),
		Model:   c.GetString("ollama.model"),
		Timeout: timeout,
	}, nil
}

// GetTelegram returns the Telegram configuration
func (c *Config) GetTelegram() TelegramConfig {
	return TelegramConfig{
		BotToken: c.GetString("telegram.bot_token"),
		ChatID:   c.GetInt64("telegram.chat_id"),
	}
}

// GetReport returns the report configuration
func (c *Config) GetReport() ReportConfig {
	return ReportConfig{
		AlwaysSend:         c.GetBool("report.always_send"),
		MaxEmailsPerReport: c.GetInt("report.max_emails_per_report"),
	}
}

// GetSchedule returns the schedule configuration
func (c *Config) GetSchedule() (ScheduleConfig, error) {
	cooldown, err := c.GetDuration("schedule.retry_cooldown")
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("invalid retry cooldown: %w", err)
	}
	tickTimeout, err := c.GetDuration("schedule.tick_timeout")
	if err != nil {
		return ScheduleConfig{}, fmt.Errorf("invalid tick timeout: %w", err)
	}
	return ScheduleConfig{
		Enabled:       c.GetBool("schedule.enabled"),
		Interval:      time.Duration(c.GetInt("schedule.interval_hours")) * time.Hour,
		RetryCooldown: cooldown,
		TickTimeout:   tickTimeout,
	}, nil
}
