package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if config.TargetURL != DefaultTargetURL {
		t.Errorf("Expected TargetURL to be %q, got %q", DefaultTargetURL, config.TargetURL)
	}

	if config.Browser.ViewportWidth != 1920 {
		t.Errorf("Expected ViewportWidth to be 1920, got %d", config.Browser.ViewportWidth)
	}

	if config.Browser.ViewportHeight != 1080 {
		t.Errorf("Expected ViewportHeight to be 1080, got %d", config.Browser.ViewportHeight)
	}

	if config.Browser.LaunchTimeout.Std() != 60*time.Second {
		t.Errorf("Expected LaunchTimeout to be 60s, got %v", config.Browser.LaunchTimeout.Std())
	}

	if config.Fulfillment.NavigationTimeout.Std() != 60*time.Second {
		t.Errorf("Expected NavigationTimeout to be 60s, got %v", config.Fulfillment.NavigationTimeout.Std())
	}

	if config.Fulfillment.SelectorWait.Std() != 5*time.Second {
		t.Errorf("Expected SelectorWait to be 5s, got %v", config.Fulfillment.SelectorWait.Std())
	}

	if !config.Browser.Headless {
		t.Error("Expected Headless to be true")
	}

	if config.ForceSimulation {
		t.Error("Expected ForceSimulation to be false")
	}

	if config.API.TrustProxy {
		t.Error("Expected TrustProxy to be false")
	}

	if len(config.Selectors.Input) != 4 {
		t.Errorf("Expected 4 input selector candidates, got %d", len(config.Selectors.Input))
	}

	if len(config.Selectors.Submit) != 8 {
		t.Errorf("Expected 8 submit selector candidates, got %d", len(config.Selectors.Submit))
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.yaml")

	config := DefaultConfig()
	config.TargetURL = "https://example.com/claim"
	config.Fulfillment.MaxConcurrent = 7
	config.Fulfillment.SettleDelay = Duration(1500 * time.Millisecond)
	config.Browser.Headless = false

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.TargetURL != config.TargetURL {
		t.Errorf("Expected TargetURL to be '%s', got '%s'", config.TargetURL, loadedConfig.TargetURL)
	}

	if loadedConfig.Fulfillment.MaxConcurrent != 7 {
		t.Errorf("Expected MaxConcurrent to be 7, got %d", loadedConfig.Fulfillment.MaxConcurrent)
	}

	if loadedConfig.Fulfillment.SettleDelay.Std() != 1500*time.Millisecond {
		t.Errorf("Expected SettleDelay to be 1.5s, got %v", loadedConfig.Fulfillment.SettleDelay.Std())
	}

	if loadedConfig.Browser.Headless {
		t.Error("Expected Headless to be false after reload")
	}

	if got := loadedConfig.Selectors.Submit[2]; got.CSS != "button" || got.Text != "Submit" {
		t.Errorf("Expected text selector to survive round trip, got %+v", got)
	}
}

func TestLoadConfigCreatesDefaultIfMissing(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "new-config.yaml")

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config == nil {
		t.Fatal("LoadConfig returned nil")
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created automatically")
	}

	if config.Challenge.Resolver != "wait" {
		t.Errorf("Expected default resolver to be 'wait', got '%s'", config.Challenge.Resolver)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid-config.yaml")

	invalidYAML := "invalid: yaml: content: [unclosed"
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("Failed to write invalid YAML: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error when loading invalid YAML, got nil")
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad-duration.yaml")

	content := "fulfillment:\n  settle_delay: soon\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	if _, err := LoadConfig(configPath); err == nil {
		t.Error("Expected error for unparseable duration, got nil")
	}
}

func TestLoadConfigScalarSelectors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "selectors.yaml")

	content := `selectors:
  input:
    - "#player-id"
  submit:
    - css: button
      text: Send
    - "button.go"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(config.Selectors.Input) != 1 || config.Selectors.Input[0].CSS != "#player-id" {
		t.Errorf("Unexpected input selectors: %+v", config.Selectors.Input)
	}
	if len(config.Selectors.Submit) != 2 {
		t.Fatalf("Expected 2 submit selectors, got %d", len(config.Selectors.Submit))
	}
	if config.Selectors.Submit[0].Text != "Send" {
		t.Errorf("Expected text matcher 'Send', got %q", config.Selectors.Submit[0].Text)
	}
	if config.Selectors.Submit[1].CSS != "button.go" {
		t.Errorf("Expected scalar selector 'button.go', got %q", config.Selectors.Submit[1].CSS)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name         string
		env          map[string]string
		wantAddr     string
		wantBinary   string
		wantSimulate bool
		wantStrict   bool
	}{
		{
			name:     "No overrides",
			env:      map[string]string{},
			wantAddr: ":3000",
		},
		{
			name:       "Port and chrome path",
			env:        map[string]string{"PORT": "8080", "CHROME_PATH": "/opt/chrome"},
			wantAddr:   ":8080",
			wantBinary: "/opt/chrome",
		},
		{
			name:         "Simulation needs both switches",
			env:          map[string]string{"RENDER": "true", "SIMULATE_SUCCESS": "true"},
			wantAddr:     ":3000",
			wantSimulate: true,
		},
		{
			name:     "Simulation without render flag",
			env:      map[string]string{"SIMULATE_SUCCESS": "true"},
			wantAddr: ":3000",
		},
		{
			name:       "Strict outcomes",
			env:        map[string]string{"LIKER_STRICT_OUTCOMES": "TRUE"},
			wantAddr:   ":3000",
			wantStrict: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.ApplyEnv(func(key string) string { return tt.env[key] })

			if config.Addr != tt.wantAddr {
				t.Errorf("Addr = %q, expected %q", config.Addr, tt.wantAddr)
			}
			if config.Browser.BinaryPath != tt.wantBinary {
				t.Errorf("BinaryPath = %q, expected %q", config.Browser.BinaryPath, tt.wantBinary)
			}
			if config.ForceSimulation != tt.wantSimulate {
				t.Errorf("ForceSimulation = %v, expected %v", config.ForceSimulation, tt.wantSimulate)
			}
			if config.Fulfillment.StrictOutcomes != tt.wantStrict {
				t.Errorf("StrictOutcomes = %v, expected %v", config.Fulfillment.StrictOutcomes, tt.wantStrict)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"Zero concurrency", func(c *Config) { c.Fulfillment.MaxConcurrent = 0 }, true},
		{"Unknown resolver", func(c *Config) { c.Challenge.Resolver = "click" }, true},
		{"No input selectors", func(c *Config) { c.Selectors.Input = nil }, true},
		{"No submit selectors", func(c *Config) { c.Selectors.Submit = nil }, true},
		{"Empty target without simulation", func(c *Config) { c.TargetURL = "" }, true},
		{"Empty target with simulation", func(c *Config) { c.TargetURL = ""; c.ForceSimulation = true }, false},
		{"Rate limit without window", func(c *Config) { c.API.RateLimitWindow = 0 }, true},
		{"Rate limit disabled", func(c *Config) { c.API.RateLimitRequests = 0; c.API.RateLimitWindow = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
