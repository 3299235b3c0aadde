package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	youtubeAPIKeyEnv     = "YOUTUBE_API_KEY"
	youtubeOAuthTokenEnv = "YOUTUBE_OAUTH_TOKEN"
	geminiAPIKeysEnv     = "GEMINI_API_KEYS"
	emailSenderEnv       = "EMAIL_SENDER"
	emailPasswordEnv     = "EMAIL_PASSWORD"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	dedupRedisURLEnv     = "DEDUP_REDIS_URL"
	notifyRecipientEnv   = "NOTIFY_RECIPIENT"
)

// Load reads the YAML file at path, applies .env and environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	// .env is optional, the process environment may already carry everything
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(youtubeAPIKeyEnv); v != "" {
		c.YouTube.APIKey = v
	}
	if v := os.Getenv(youtubeOAuthTokenEnv); v != "" {
		c.YouTube.OAuthToken = v
	}
	if v := os.Getenv(geminiAPIKeysEnv); v != "" {
		c.Gemini.APIKeys = splitList(v)
	}
	if v := os.Getenv(emailSenderEnv); v != "" {
		c.Email.Sender = v
	}
	if v := os.Getenv(emailPasswordEnv); v != "" {
		c.Email.Password = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv(dedupRedisURLEnv); v != "" {
		c.Dedup.RedisURL = v
	}
	if v := os.Getenv(notifyRecipientEnv); v != "" {
		c.Notify.Recipient = v
	}
}

// ReadChannelFile returns the channel names listed in path, one per line.
// Blank lines and lines starting with '#' are ignored.
func ReadChannelFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open channel file: %w", err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read channel file: %w", err)
	}
	return names, nil
}

// SplitNames turns a comma separated list into trimmed, non-empty names.
func SplitNames(raw string) []string {
	return splitList(raw)
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
