package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SMTPConfig configures the email alert channel.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	ToEmail   string
}

// TelegramConfig configures the Telegram alert channel.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

type Config struct {
	DBPath        string
	CheckInterval time.Duration
	CheckDelay    time.Duration
	Renderer      string // "chrome" or "static"
	Port          string
	SMTP          *SMTPConfig // nil if email alerts are not configured
	Telegram      *TelegramConfig
}

// Load reads configuration from the environment, loading .env first if
// present. Missing values fall back to defaults; missing channel configs
// simply disable that channel.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		DBPath:        os.Getenv("ITEMWATCH_DB_PATH"),
		CheckInterval: 6 * time.Hour,
		CheckDelay:    5 * time.Second,
		Renderer:      "chrome",
		Port:          "8080",
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		cfg.DBPath = filepath.Join(home, ".itemwatch", "data.db")
	}

	if val := os.Getenv("ITEMWATCH_CHECK_INTERVAL_HOURS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.CheckInterval = time.Duration(parsed) * time.Hour
		}
	}

	if val := os.Getenv("ITEMWATCH_DELAY_SECONDS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			cfg.CheckDelay = time.Duration(parsed) * time.Second
		}
	}

	if val := os.Getenv("ITEMWATCH_RENDERER"); val == "static" || val == "chrome" {
		cfg.Renderer = val
	}

	if val := os.Getenv("PORT"); val != "" {
		cfg.Port = val
	}

	if host := os.Getenv("SMTP_HOST"); host != "" {
		port := 587
		if val := os.Getenv("SMTP_PORT"); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil {
				port = parsed
			}
		}
		cfg.SMTP = &SMTPConfig{
			Host:      host,
			Port:      port,
			Username:  os.Getenv("SMTP_USERNAME"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			FromEmail: os.Getenv("SMTP_FROM_EMAIL"),
			ToEmail:   os.Getenv("ALERT_TO_EMAIL"),
		}
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram = &TelegramConfig{
			BotToken: token,
			ChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		}
	}

	return cfg
}
