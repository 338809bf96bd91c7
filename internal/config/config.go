package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	BotToken string
	AdminIDs map[int64]bool

	// Payments
	UPIID      string
	PayeeName  string
	MinDeposit int

	// Numbers
	NumberLease    time.Duration
	PaymentTimeout time.Duration

	// Cleanup
	SweepInterval time.Duration

	// Database
	DBPath string
}

func Load() *Config {
	cfg := &Config{
		// Telegram
		BotToken: getEnv("BOT_TOKEN", ""),

		// Payments
		UPIID:      getEnv("UPI_ID", ""),
		PayeeName:  getEnv("PAYEE_NAME", "Virtual Numbers"),
		MinDeposit: getEnvInt("MIN_DEPOSIT", 100),

		// Numbers
		NumberLease:    time.Duration(getEnvInt("NUMBER_DURATION", 600)) * time.Second,
		PaymentTimeout: time.Duration(getEnvInt("PAYMENT_TIMEOUT", 1800)) * time.Second,

		// Cleanup
		SweepInterval: time.Duration(getEnvInt("CLEANUP_INTERVAL", 300)) * time.Second,

		// Database
		DBPath: getEnv("DB_PATH", "./numshop.db"),
	}

	// Parse admin IDs
	cfg.AdminIDs = make(map[int64]bool)
	adminIDs := getEnv("ADMIN_IDS", "")
	for _, idStr := range strings.Split(adminIDs, ",") {
		idStr = strings.TrimSpace(idStr)
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			cfg.AdminIDs[id] = true
		}
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
