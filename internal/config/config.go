package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config aggregates every setting the bot needs.
type Config struct {
	Server ServerConfig
	Bot    BotConfig
	ImgBB  ImgBBConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	bot, err := loadBotConfig()
	if err != nil {
		return nil, err
	}

	imgbb, err := loadImgBBConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Bot: bot, ImgBB: imgbb}, nil
}

// ServerConfig describes the webhook HTTP listener.
type ServerConfig struct {
	Addr string
}

// loadServerConfig parses the listen address.
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// BotConfig describes the Telegram side of the relay.
type BotConfig struct {
	Token      string
	WebhookURL string
	SessionTTL int // seconds, 0 keeps sessions until consumed
}

// WebhookEnabled reports whether updates should arrive over HTTP instead of
// long polling.
func (c BotConfig) WebhookEnabled() bool {
	return c.WebhookURL != ""
}

func loadBotConfig() (BotConfig, error) {
	token := strings.TrimSpace(os.Getenv("BOT_TOKEN"))
	if token == "" {
		return BotConfig{}, fmt.Errorf("BOT_TOKEN environment variable is required")
	}

	ttl := 0
	if override, err := parseOptionalIntEnv("SESSION_TTL"); err != nil {
		return BotConfig{}, err
	} else if override != nil && *override > 0 {
		ttl = *override
	}

	return BotConfig{
		Token:      token,
		WebhookURL: strings.TrimRight(strings.TrimSpace(os.Getenv("WEBHOOK_URL")), "/"),
		SessionTTL: ttl,
	}, nil
}

// ImgBBConfig describes access to the image-hosting API.
type ImgBBConfig struct {
	APIKey  string
	BaseURL string
	Timeout int // seconds
}

func loadImgBBConfig() (ImgBBConfig, error) {
	key := strings.TrimSpace(os.Getenv("IMGBB_API_KEY"))
	if key == "" {
		return ImgBBConfig{}, fmt.Errorf("IMGBB_API_KEY environment variable is required")
	}

	timeout := 180
	if override, err := parseOptionalIntEnv("UPLOAD_TIMEOUT"); err != nil {
		return ImgBBConfig{}, err
	} else if override != nil && *override > 0 {
		timeout = *override
	}

	return ImgBBConfig{
		APIKey:  key,
		BaseURL: getEnvOrDefault("IMGBB_API_URL", "https://api.imgbb.com/1/upload"),
		Timeout: timeout,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
