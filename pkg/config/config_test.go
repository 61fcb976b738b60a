package config

import (
	"os"
	"path/filepath"
	"testing"
)

func initTemp(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	if err := Init(filepath.Join(tempDir, "config.toml")); err != nil {
		t.Fatalf("Failed to initialize config: %v", err)
	}
	return tempDir
}

// TestGetConfigDir validates config directory access
func TestGetConfigDir(t *testing.T) {
	initTemp(t)

	configDir := GetConfigDir()
	if configDir == "" {
		t.Fatal("Config directory should not be empty")
	}

	if _, err := os.Stat(configDir); err != nil {
		t.Errorf("Config directory should exist: %v", err)
	}
}

// TestInitWithCustomPath validates custom config path
func TestInitWithCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	customConfigPath := filepath.Join(tempDir, "custom", "path", "config.toml")

	if err := Init(customConfigPath); err != nil {
		t.Fatalf("Failed to initialize with custom path: %v", err)
	}

	expectedDir := filepath.Join(tempDir, "custom", "path")
	if GetConfigDir() != expectedDir {
		t.Errorf("Expected config dir %s, got %s", expectedDir, GetConfigDir())
	}
	if GetConfigFilePath() != customConfigPath {
		t.Errorf("Expected config file %s, got %s", customConfigPath, GetConfigFilePath())
	}
}

// TestCredentialsPathStructure validates credentials live under the config dir
func TestCredentialsPathStructure(t *testing.T) {
	tempDir := initTemp(t)

	credsPath := GetCredentialsPath()
	if !filepath.IsAbs(credsPath) {
		t.Error("Credentials path should be absolute")
	}
	if filepath.Dir(credsPath) != tempDir {
		t.Errorf("Credentials path %s should be under config dir %s", credsPath, tempDir)
	}
}

// TestDefaults validates the documented defaults
func TestDefaults(t *testing.T) {
	initTemp(t)

	stringCases := map[string]string{
		"api.base_url":  "http://localhost:8080",
		"web.base_url":  "http://localhost:3000",
		"output.format": "text",
		"log.level":     "info",
	}
	for key, want := range stringCases {
		if got := GetString(key); got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}

	intCases := map[string]int{
		"api.timeout":          30,
		"api.rate_limit":       10,
		"api.rate_burst":       20,
		"api.breaker_failures": 5,
		"upload.max_files":     10,
		"upload.max_file_mb":   10,
	}
	for key, want := range intCases {
		if got := GetInt(key); got != want {
			t.Errorf("%s: expected %d, got %d", key, want, got)
		}
	}
}

// TestUserConfigOverridesDefaults validates the TOML file is read
func TestUserConfigOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "config.toml")
	content := "[api]\nbase_url = \"https://api.wayfarer.travel\"\ntimeout = 5\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if got := GetString("api.base_url"); got != "https://api.wayfarer.travel" {
		t.Errorf("Expected overridden base URL, got %s", got)
	}
	if got := GetInt("api.timeout"); got != 5 {
		t.Errorf("Expected overridden timeout 5, got %d", got)
	}
	// Untouched keys keep their defaults
	if got := GetInt("upload.max_files"); got != 10 {
		t.Errorf("Expected default max files 10, got %d", got)
	}
}

// TestEnvOverride validates WAYFARER_* environment variables
func TestEnvOverride(t *testing.T) {
	t.Setenv("WAYFARER_API_BASE_URL", "http://env.example:9000")
	initTemp(t)

	if got := GetString("api.base_url"); got != "http://env.example:9000" {
		t.Errorf("Expected env base URL, got %s", got)
	}
}

// TestSetIsInMemory validates Set does not touch the config file
func TestSetIsInMemory(t *testing.T) {
	initTemp(t)

	Set("output.format", "json")
	if GetString("output.format") != "json" {
		t.Error("Set should change the value for this process")
	}
	if _, err := os.Stat(GetConfigFilePath()); !os.IsNotExist(err) {
		t.Error("Set should not create the config file")
	}
}

// TestSetStringPersists validates SetString writes the user config
func TestSetStringPersists(t *testing.T) {
	initTemp(t)

	if err := SetString("web.base_url", "https://wayfarer.travel"); err != nil {
		t.Fatalf("SetString failed: %v", err)
	}

	data, err := os.ReadFile(GetConfigFilePath())
	if err != nil {
		t.Fatalf("Config file should exist: %v", err)
	}
	if len(data) == 0 {
		t.Error("Config file should not be empty")
	}
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wsURL   string
		want    string
	}{
		{"derived http", "http://localhost:8080", "", "ws://localhost:8080/api/v1/ws"},
		{"derived https", "https://api.wayfarer.travel", "", "wss://api.wayfarer.travel/api/v1/ws"},
		{"derived with trailing slash", "https://api.wayfarer.travel/", "", "wss://api.wayfarer.travel/api/v1/ws"},
		{"explicit wins", "http://localhost:8080", "wss://push.wayfarer.travel/socket", "wss://push.wayfarer.travel/socket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initTemp(t)
			Set("api.base_url", tt.baseURL)
			Set("ws.url", tt.wsURL)

			if got := WebSocketURL(); got != tt.want {
				t.Errorf("WebSocketURL() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestLogFileExpandsTilde validates path expansion
func TestLogFileExpandsTilde(t *testing.T) {
	initTemp(t)
	Set("log.file", "~/wayfarer.log")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := GetString("log.file"); got != filepath.Join(home, "wayfarer.log") {
		t.Errorf("Expected tilde expansion, got %s", got)
	}
}
