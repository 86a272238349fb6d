package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/hass-hotkeys/internal/actions"
)

// LogFileOff disables the log file when set as HOTKEYS_LOG_FILE.
const LogFileOff = "off"

// Config holds process settings. The action document (host, token,
// bindings) lives in config.yaml inside ConfigDir; everything here comes
// from the environment.
type Config struct {
	ConfigDir  string // directory holding config.yaml (default: <user config dir>/hass_hotkeys)
	ConfigFile string // derived: ConfigDir/config.yaml

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // path to log.txt, empty => disabled

	HandshakeTimeout time.Duration // websocket handshake timeout (ex: 10s)
	Secure           bool          // true => wss://
	WatchConfig      bool          // warn when config.yaml changes on disk

	// Control server
	ListenAddr      string        // ex: "127.0.0.1:8765", empty => disabled
	AllowedCIDRS    []string      // IPs/CIDRs allowed to reach the control server
	ShutdownTimeout time.Duration // ex: 5s

	// Redis (dispatch history)
	RedisAddr           string        // ex: "localhost:6379", empty => history disabled
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	HistorySize         int           // entries kept in history
}

// Load reads settings from the environment, after applying envFile when it
// exists (a missing file is ignored).
func Load(envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	dir := getenv("HOTKEYS_CONFIG_DIR", "")
	if dir == "" {
		def, err := actions.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = def
	}

	cfg := &Config{
		ConfigDir:  dir,
		ConfigFile: filepath.Join(dir, actions.FileName),

		// Logging
		LogLevel:  getenv("HOTKEYS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("HOTKEYS_PRETTY_LOG", true),
		LogFile:   logFile(getenv("HOTKEYS_LOG_FILE", ""), dir),

		// Session
		HandshakeTimeout: mustDuration("HOTKEYS_HANDSHAKE_TIMEOUT", 10*time.Second),
		Secure:           mustBool("HOTKEYS_SECURE", false),
		WatchConfig:      mustBool("HOTKEYS_WATCH_CONFIG", true),

		// Control server
		ListenAddr:      getenv("HOTKEYS_LISTEN_ADDR", ""),
		AllowedCIDRS:    splitAndTrim(getenv("HOTKEYS_ALLOWED_CIDRS", "127.0.0.1,::1")),
		ShutdownTimeout: mustDuration("HOTKEYS_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Redis settings
		RedisAddr:           getenv("HOTKEYS_REDIS_ADDR", ""),
		RedisUser:           getenv("HOTKEYS_REDIS_USERNAME", ""),
		RedisPassword:       getenv("HOTKEYS_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("HOTKEYS_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 4),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 10*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
		HistorySize:         getenvInt("HOTKEYS_HISTORY_SIZE", 100),
	}

	if cfg.HistorySize <= 0 {
		return nil, fmt.Errorf("HOTKEYS_HISTORY_SIZE must be > 0, got %d", cfg.HistorySize)
	}

	return cfg, nil
}

// HistoryEnabled reports whether dispatch history is kept in Redis.
func (c *Config) HistoryEnabled() bool { return c.RedisAddr != "" }

// ControlEnabled reports whether the local control server runs.
func (c *Config) ControlEnabled() bool { return c.ListenAddr != "" }

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if c.RedisPassword != "" {
		c.RedisPassword = "***REDACTED***"
	}
	return c
}

// logFile resolves HOTKEYS_LOG_FILE. By default log.txt sits next to the
// config directory.
func logFile(v, dir string) string {
	switch v {
	case LogFileOff:
		return ""
	case "":
		return filepath.Join(filepath.Dir(dir), "log.txt")
	default:
		return v
	}
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
