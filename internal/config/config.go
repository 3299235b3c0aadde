package config

import (
	"fmt"
	"strings"
	"time"
)

// DefaultTranscribeHint biases whisper away from looping on repeated filler
const DefaultTranscribeHint = "If there is any repetition then move to next conversation."

type Config struct {
	YouTube     YouTubeConfig     `yaml:"youtube"`
	Channels    ChannelsConfig    `yaml:"channels"`
	Poll        PollConfig        `yaml:"poll"`
	YTDLP       YTDLPConfig       `yaml:"ytdlp"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	FFmpeg      FFmpegConfig      `yaml:"ffmpeg"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Notify      NotifyConfig      `yaml:"notify"`
	Email       EmailConfig       `yaml:"email"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Dedup       DedupConfig       `yaml:"dedup"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type YouTubeConfig struct {
	APIKey       string        `yaml:"api_key"`
	APIBaseURL   string        `yaml:"api_base_url"`
	SiteBaseURL  string        `yaml:"site_base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	RequestsPerS float64       `yaml:"requests_per_second"`
	Subscribe    bool          `yaml:"subscribe"`
	OAuthToken   string        `yaml:"oauth_token"`
}

type ChannelsConfig struct {
	Names []string `yaml:"names"`
	File  string   `yaml:"file"`
	Watch bool     `yaml:"watch"`
}

type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
}

type YTDLPConfig struct {
	BinaryPath string `yaml:"binary_path"`
	Format     string `yaml:"format"`
}

type WhisperConfig struct {
	ModelPath  string `yaml:"model_path"`
	BinaryPath string `yaml:"binary_path"`
	Language   string `yaml:"language"`
	Prompt     string `yaml:"prompt"`
	Translate  *bool  `yaml:"translate"`
	Threads    int    `yaml:"threads"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	SampleRate int    `yaml:"sample_rate"`
}

type PathsConfig struct {
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type GeminiConfig struct {
	Model     string   `yaml:"model"`
	APIKeys   []string `yaml:"api_keys"`
	MaxTokens int32    `yaml:"max_tokens"`
}

type NotifyConfig struct {
	Channel      string `yaml:"channel"`
	Recipient    string `yaml:"recipient"`
	Initial      *bool  `yaml:"initial"`
	ExcerptChars int    `yaml:"excerpt_chars"`
	AttachReport bool   `yaml:"attach_report"`
}

type EmailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	BaseURL  string `yaml:"base_url"`
}

type DedupConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	RedisURL    string `yaml:"redis_url"`
	RedisPrefix string `yaml:"redis_prefix"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// NotifyInitial reports whether the bootstrap pass sends one notification per
// channel for the item that is current at startup.
func (c *Config) NotifyInitial() bool {
	return c.Notify.Initial == nil || *c.Notify.Initial
}

// TranslateTranscripts reports whether whisper runs with translation enabled.
func (c *Config) TranslateTranscripts() bool {
	return c.Whisper.Translate == nil || *c.Whisper.Translate
}

func (c *Config) Validate() error {
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.Whisper.BinaryPath == "" {
		return fmt.Errorf("whisper.binary_path is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	switch c.Notify.Channel {
	case "":
		c.Notify.Channel = "email"
	case "email", "telegram":
	default:
		return fmt.Errorf("notify.channel %q is not supported", c.Notify.Channel)
	}

	switch c.Dedup.Backend {
	case "":
		c.Dedup.Backend = "memory"
	case "memory":
	case "sqlite":
		if c.Dedup.SQLitePath == "" {
			c.Dedup.SQLitePath = "data/dedup.db"
		}
	case "redis":
		if c.Dedup.RedisURL == "" {
			return fmt.Errorf("dedup.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("dedup.backend %q is not supported", c.Dedup.Backend)
	}

	if c.YouTube.Subscribe && c.YouTube.OAuthToken == "" {
		return fmt.Errorf("youtube.oauth_token is required when youtube.subscribe is on")
	}

	if c.Poll.Interval < 0 {
		return fmt.Errorf("poll.interval must not be negative")
	}
	if c.Poll.Interval == 0 {
		c.Poll.Interval = time.Minute
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if strings.TrimSpace(c.Whisper.Prompt) == "" {
		c.Whisper.Prompt = DefaultTranscribeHint
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.YTDLP.BinaryPath == "" {
		c.YTDLP.BinaryPath = "yt-dlp"
	}
	if c.YTDLP.Format == "" {
		c.YTDLP.Format = "bestaudio/best"
	}
	if c.YouTube.APIBaseURL == "" {
		c.YouTube.APIBaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if c.YouTube.SiteBaseURL == "" {
		c.YouTube.SiteBaseURL = "https://www.youtube.com"
	}
	if c.YouTube.Timeout == 0 {
		c.YouTube.Timeout = 20 * time.Second
	}
	if c.YouTube.RequestsPerS <= 0 {
		c.YouTube.RequestsPerS = 2
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.MaxTokens == 0 {
		c.Gemini.MaxTokens = 512
	}
	if c.Notify.ExcerptChars == 0 {
		c.Notify.ExcerptChars = 1500
	}
	if c.Email.Host == "" {
		c.Email.Host = "smtp.gmail.com"
	}
	if c.Email.Port == 0 {
		c.Email.Port = 587
	}
	if c.Telegram.BaseURL == "" {
		c.Telegram.BaseURL = "https://api.telegram.org"
	}
	if c.Dedup.RedisPrefix == "" {
		c.Dedup.RedisPrefix = "digest:latest"
	}

	return nil
}
