// Package config loads scraper configuration from the environment, with an
// optional .env file for local runs (the portal credentials should never be
// committed or passed on the command line).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default portal endpoints. These track the current portal version; the -dir
// offline mode bypasses them entirely.
const (
	DefaultLoginURL = "https://mysuccess.carleton.ca/Shibboleth.sso/Login?entityID=http://cufed.carleton.ca/adfs/services/trust&target=https://mysuccess.carleton.ca/secure/sso.htm"
	DefaultBoardURL = "https://mysuccess.carleton.ca/myAccount/co-op/coopjobs.htm"
)

// Config carries everything the scrape command needs.
type Config struct {
	Username string
	Password string

	LoginURL string
	BoardURL string

	StorageKind string
	StorageDSN  string

	MetricsBackend string

	// NavTimeout bounds each portal navigation (login, board, posting tabs).
	NavTimeout time.Duration

	Headless bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is merged in first when present; a missing file is not an error.
func Load() (*Config, error) {
	// godotenv never overrides variables already set in the real environment.
	_ = godotenv.Load()

	return &Config{
		Username:       getEnvString("COOP_USERNAME", ""),
		Password:       getEnvString("COOP_PASSWORD", ""),
		LoginURL:       getEnvString("COOP_LOGIN_URL", DefaultLoginURL),
		BoardURL:       getEnvString("COOP_BOARD_URL", DefaultBoardURL),
		StorageKind:    getEnvString("COOP_STORAGE", ""),
		StorageDSN:     getEnvString("COOP_DSN", ""),
		MetricsBackend: getEnvString("METRICS_BACKEND", "none"),
		NavTimeout:     getEnvDuration("COOP_NAV_TIMEOUT", 30*time.Second),
		Headless:       getEnvBool("COOP_HEADLESS", true),
	}, nil
}

// RequireCredentials fails when the portal credentials are unset. Only the
// browser-driven scrape path needs them; offline modes do not.
func (c *Config) RequireCredentials() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("config: COOP_USERNAME and COOP_PASSWORD must be set (e.g. in .env)")
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
