package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOTKEYS_CONFIG_DIR", filepath.Join(dir, "hass_hotkeys"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ConfigFile != filepath.Join(dir, "hass_hotkeys", "config.yaml") {
		t.Errorf("ConfigFile = %v", cfg.ConfigFile)
	}
	if cfg.LogFile != filepath.Join(dir, "log.txt") {
		t.Errorf("LogFile = %v, want log.txt next to the config dir", cfg.LogFile)
	}
	if cfg.LogLevel != "info" || !cfg.PrettyLog {
		t.Errorf("logging defaults = %q/%v", cfg.LogLevel, cfg.PrettyLog)
	}
	if cfg.HandshakeTimeout != 10*time.Second {
		t.Errorf("HandshakeTimeout = %v", cfg.HandshakeTimeout)
	}
	if cfg.ControlEnabled() || cfg.HistoryEnabled() {
		t.Errorf("control server and history must be off by default")
	}
	if !reflect.DeepEqual(cfg.AllowedCIDRS, []string{"127.0.0.1", "::1"}) {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if cfg.HistorySize != 100 {
		t.Errorf("HistorySize = %v", cfg.HistorySize)
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "HOTKEYS_LISTEN_ADDR=127.0.0.1:8765\nHOTKEYS_REDIS_ADDR=localhost:6379\nHOTKEYS_REDIS_PASSWORD=secret\nHOTKEYS_LOG_FILE=off\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("HOTKEYS_CONFIG_DIR", dir)

	// godotenv never overrides variables that are already set; register
	// cleanups so the loaded values don't leak into other tests.
	for _, k := range []string{"HOTKEYS_LISTEN_ADDR", "HOTKEYS_REDIS_ADDR", "HOTKEYS_REDIS_PASSWORD", "HOTKEYS_LOG_FILE"} {
		t.Setenv(k, "")
		if err := os.Unsetenv(k); err != nil {
			t.Fatalf("unset %s: %v", k, err)
		}
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:8765" || !cfg.ControlEnabled() {
		t.Errorf("ListenAddr = %v", cfg.ListenAddr)
	}
	if !cfg.HistoryEnabled() {
		t.Errorf("history should be enabled")
	}
	if cfg.LogFile != "" {
		t.Errorf("LogFile = %v, want disabled", cfg.LogFile)
	}
	if got := cfg.Redacted().RedisPassword; got != "***REDACTED***" {
		t.Errorf("Redacted() password = %v", got)
	}
	if cfg.RedisPassword != "secret" {
		t.Errorf("Redacted() must not modify the original")
	}
}

func TestLoadMissingDotEnvIgnored(t *testing.T) {
	t.Setenv("HOTKEYS_CONFIG_DIR", t.TempDir())
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadRejectsHistorySize(t *testing.T) {
	t.Setenv("HOTKEYS_CONFIG_DIR", t.TempDir())
	t.Setenv("HOTKEYS_HISTORY_SIZE", "-1")
	if _, err := Load(""); err == nil {
		t.Fatalf("Load() should reject a negative history size")
	}
}

func TestLogFile(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		dir      string
		expected string
	}{
		{name: "default", value: "", dir: "/home/u/.config/hass_hotkeys", expected: "/home/u/.config/log.txt"},
		{name: "off", value: "off", dir: "/x/y", expected: ""},
		{name: "explicit", value: "/var/log/hotkeys.log", dir: "/x/y", expected: "/var/log/hotkeys.log"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := logFile(tt.value, tt.dir); got != tt.expected {
				t.Errorf("logFile() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetenvInt(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      int
		expected int
	}{
		{name: "valid integer", key: "TEST_INT", value: "42", def: 1, expected: 42},
		{name: "invalid integer uses default", key: "TEST_INT_INVALID", value: "not_a_number", def: 7, expected: 7},
		{name: "missing variable uses default", key: "TEST_INT_MISSING", value: "", def: 3, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := getenvInt(tt.key, tt.def); got != tt.expected {
				t.Errorf("getenvInt() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected []string
	}{
		{name: "single value", value: "value1", expected: []string{"value1"}},
		{name: "multiple values", value: "value1, value2, value3", expected: []string{"value1", "value2", "value3"}},
		{name: "quoted values", value: `"10.0.0.0/8", '::1'`, expected: []string{"10.0.0.0/8", "::1"}},
		{name: "empty parts dropped", value: "a,, ,b", expected: []string{"a", "b"}},
		{name: "empty", value: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitAndTrim(tt.value)
			if len(got) != len(tt.expected) {
				t.Fatalf("splitAndTrim() length = %v, want %v", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
