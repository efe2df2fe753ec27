package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Telegram Bot configuration
	BotToken string

	// Roster: comma-separated key:telegramID:displayName entries
	RosterSpec string

	// Weather configuration (optional; broadcast and /weather disable
	// themselves without an API key)
	WeatherAPIKey    string
	WeatherCity      string
	WeatherUnits     string
	WeatherLang      string
	WeatherChannelID int64

	// OpenAI persona configuration (optional)
	OpenAIAPIBase string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Lunch menu
	LunchMenu []string

	// Storage
	DataDir string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{}

	// Required configurations
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN environment variable is required")
	}
	cfg.BotToken = botToken

	rosterSpec := os.Getenv("ROSTER")
	if rosterSpec == "" {
		return nil, fmt.Errorf("ROSTER environment variable is required")
	}
	cfg.RosterSpec = rosterSpec

	// Optional configurations with defaults
	cfg.WeatherAPIKey = os.Getenv("WEATHER_API_KEY")
	cfg.WeatherCity = getEnvWithDefault("WEATHER_DEFAULT_CITY", "Seoul")
	cfg.WeatherUnits = getEnvWithDefault("WEATHER_UNITS", "metric")
	cfg.WeatherLang = getEnvWithDefault("WEATHER_LANG", "kr")

	if raw := os.Getenv("WEATHER_CHANNEL_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("WEATHER_CHANNEL_ID must be a chat id: %v", err)
		}
		cfg.WeatherChannelID = id
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIAPIBase = getEnvWithDefault("OPENAI_API_BASE", "https://api.openai.com/v1")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4o-mini")

	menuStr := getEnvWithDefault("LUNCH_MENU", "국밥,김치찌개,돈까스,칼국수,비빔밥,냉면")
	for _, item := range strings.Split(menuStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			cfg.LunchMenu = append(cfg.LunchMenu, item)
		}
	}

	cfg.DataDir = getEnvWithDefault("DATA_DIR", "./data")

	// Log configuration with sensitive data redacted
	logCfg := *cfg
	logCfg.BotToken = redact(logCfg.BotToken)
	logCfg.WeatherAPIKey = redact(logCfg.WeatherAPIKey)
	logCfg.OpenAIAPIKey = redact(logCfg.OpenAIAPIKey)
	log.Printf("Configuration loaded: %+v", logCfg)
	return cfg, nil
}

func redact(s string) string {
	if len(s) > 8 {
		return s[:8] + "...REDACTED..."
	}
	return s
}

// getEnvWithDefault returns the value of the environment variable or the
// default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
