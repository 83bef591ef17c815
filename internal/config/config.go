package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds ambient settings shared by the one-shot runner and the server.
type Config struct {
	// Browser settings
	ChromePath string
	Headless   bool
	UserAgent  string

	// Input and storage
	InputFile      string
	DataDir        string
	PublicURLBase  string
	MaxRecordBytes int

	// Timeouts (milliseconds)
	NavigationTimeoutMS int
	MarkerTimeoutMS     int

	// Logging
	LogLevel string
	LogFile  string

	// Server settings
	BindAddr         string
	PortCandidates   []string
	PortAutoFallback bool
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads ambient configuration from environment variables and an
// optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	cfg := &Config{
		ChromePath:          getEnvOrDefault("SNAPSHOT_CHROME_PATH", ""),
		Headless:            getEnvBoolOrDefault("SNAPSHOT_HEADLESS", true),
		UserAgent:           getEnvOrDefault("SNAPSHOT_USER_AGENT", defaultUserAgent),
		InputFile:           getEnvOrDefault("SNAPSHOT_INPUT_FILE", "INPUT.json"),
		DataDir:             getEnvOrDefault("SNAPSHOT_DATA_DIR", "./snapshot_data"),
		PublicURLBase:       getEnvOrDefault("SNAPSHOT_PUBLIC_URL_BASE", ""),
		MaxRecordBytes:      getEnvIntOrDefault("SNAPSHOT_MAX_RECORD_BYTES", 9_000_000),
		NavigationTimeoutMS: getEnvIntOrDefault("SNAPSHOT_NAVIGATION_TIMEOUT_MS", 60_000),
		MarkerTimeoutMS:     getEnvIntOrDefault("SNAPSHOT_MARKER_TIMEOUT_MS", 30_000),
		LogLevel:            getEnvOrDefault("SNAPSHOT_LOG_LEVEL", "info"),
		LogFile:             getEnvOrDefault("SNAPSHOT_LOG_FILE", "logs/snapshot.log"),
		BindAddr:            getEnvOrDefault("SNAPSHOT_BIND_ADDR", "127.0.0.1:8980"),
		PortCandidates:      []string{"127.0.0.1:8980", "127.0.0.1:8981", "127.0.0.1:8982"},
		PortAutoFallback:    getEnvBoolOrDefault("SNAPSHOT_PORT_AUTO_FALLBACK", true),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
