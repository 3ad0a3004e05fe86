package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"liker/internal/browser"
)

const DefaultTargetURL = "https://freefireinfo.in/claim-100-free-fire-likes-via-uid-for-free/"

type Config struct {
	Addr string `yaml:"addr"`

	TargetURL string `yaml:"target_url"`

	// ForceSimulation skips browser automation and reports assumed success.
	ForceSimulation bool `yaml:"force_simulation"`

	MessagesPath string `yaml:"messages_path"`

	DebugMode bool `yaml:"debug_mode"`

	Logging     LoggingConfig     `yaml:"logging"`
	API         APIConfig         `yaml:"api"`
	Browser     BrowserConfig     `yaml:"browser"`
	Fulfillment FulfillmentConfig `yaml:"fulfillment"`
	Challenge   ChallengeConfig   `yaml:"challenge"`
	Selectors   SelectorConfig    `yaml:"selectors"`

	SuccessPhrases []string `yaml:"success_phrases"`
}

type LoggingConfig struct {
	Mode string `yaml:"mode"`
}

// APIConfig limits the /api routes per client address. Zero Requests
// disables limiting.
type APIConfig struct {
	RateLimitRequests int      `yaml:"rate_limit_requests"`
	RateLimitWindow   Duration `yaml:"rate_limit_window"`
	CORSOrigin        string   `yaml:"cors_origin"`
	// TrustProxy keys clients by X-Forwarded-For/X-Real-IP instead of the
	// socket peer. Enable only behind a proxy that overwrites those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

type BrowserConfig struct {
	BinaryPath     string   `yaml:"binary_path"`
	CandidatePaths []string `yaml:"candidate_paths"`

	Headless       bool     `yaml:"headless"`
	ViewportWidth  int      `yaml:"viewport_width"`
	ViewportHeight int      `yaml:"viewport_height"`
	LaunchTimeout  Duration `yaml:"launch_timeout"`
	Args           []string `yaml:"args"`

	ExtraHeaders map[string]string `yaml:"extra_headers"`
}

type FulfillmentConfig struct {
	MaxConcurrent  int      `yaml:"max_concurrent"`
	AttemptTimeout Duration `yaml:"attempt_timeout"`

	NavigationTimeout Duration `yaml:"navigation_timeout"`
	NetworkIdle       Duration `yaml:"network_idle"`
	SelectorWait      Duration `yaml:"selector_wait"`
	SettleDelay       Duration `yaml:"settle_delay"`

	// StrictOutcomes records stage failures as failed transactions instead of
	// simulated completions.
	StrictOutcomes bool `yaml:"strict_outcomes"`
}

type ChallengeConfig struct {
	Resolver       string   `yaml:"resolver"`
	GraceInterval  Duration `yaml:"grace_interval"`
	ProviderMarker string   `yaml:"provider_marker"`
	Markers        []string `yaml:"markers"`
}

type SelectorConfig struct {
	Input  []browser.Selector `yaml:"input"`
	Submit []browser.Selector `yaml:"submit"`
}

func DefaultConfig() *Config {
	return &Config{
		Addr:            ":3000",
		TargetURL:       DefaultTargetURL,
		ForceSimulation: false,
		DebugMode:       false,
		Logging: LoggingConfig{
			Mode: "production",
		},
		API: APIConfig{
			RateLimitRequests: 100,
			RateLimitWindow:   Duration(15 * time.Minute),
			CORSOrigin:        "*",
			TrustProxy:        false,
		},
		Browser: BrowserConfig{
			CandidatePaths: []string{
				"/usr/bin/google-chrome",
				"/usr/bin/chromium-browser",
				"/usr/bin/chromium",
				"/opt/render/project/.apt/usr/bin/chromium-browser",
				"/opt/render/project/.apt/usr/bin/chromium",
				"/opt/render/project/chrome-linux/chrome",
			},
			Headless:       true,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			LaunchTimeout:  Duration(60 * time.Second),
			Args: []string{
				"no-sandbox",
				"disable-setuid-sandbox",
				"disable-dev-shm-usage",
				"disable-accelerated-2d-canvas",
				"disable-gpu",
				"disable-extensions",
				"disable-sync",
				"disable-background-networking",
				"disable-default-apps",
				"disable-translate",
				"disable-device-discovery-notifications",
				"mute-audio",
				"no-default-browser-check",
				"no-first-run",
				"no-pings",
			},
		},
		Fulfillment: FulfillmentConfig{
			MaxConcurrent:     2,
			AttemptTimeout:    Duration(3 * time.Minute),
			NavigationTimeout: Duration(60 * time.Second),
			NetworkIdle:       Duration(500 * time.Millisecond),
			SelectorWait:      Duration(5 * time.Second),
			SettleDelay:       Duration(5 * time.Second),
			StrictOutcomes:    false,
		},
		Challenge: ChallengeConfig{
			Resolver:       "wait",
			GraceInterval:  Duration(5 * time.Second),
			ProviderMarker: "cloudflare",
			Markers:        []string{"captcha", "challenge", "cf-browser-verification", "turnstile"},
		},
		Selectors: SelectorConfig{
			Input: []browser.Selector{
				{CSS: `input[name="uid"]`},
				{CSS: `input[placeholder*="UID"]`},
				{CSS: `input[type="text"]`},
				{CSS: `form input`},
			},
			Submit: []browser.Selector{
				{CSS: `button[type="submit"]`},
				{CSS: `input[type="submit"]`},
				{CSS: `button`, Text: `Submit`},
				{CSS: `button`, Text: `Claim`},
				{CSS: `button`, Text: `Get`},
				{CSS: `button.submit-button`},
				{CSS: `form button`},
				{CSS: `button`},
			},
		},
		SuccessPhrases: []string{"success", "likes sent", "completed", "thank you"},
	}
}

func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.Save(path); err != nil {
			return nil, err
		}
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays deployment environment variables on top of the file config.
// Forced simulation needs both RENDER=true and SIMULATE_SUCCESS=true.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	if chromePath := getenv("CHROME_PATH"); chromePath != "" {
		c.Browser.BinaryPath = chromePath
	}
	if getenv("RENDER") == "true" && getenv("SIMULATE_SUCCESS") == "true" {
		c.ForceSimulation = true
	}
	if strict := getenv("LIKER_STRICT_OUTCOMES"); strict != "" {
		c.Fulfillment.StrictOutcomes = strings.EqualFold(strict, "true")
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.TargetURL == "" && !c.ForceSimulation {
		return fmt.Errorf("target_url must be set unless force_simulation is enabled")
	}
	if c.Fulfillment.MaxConcurrent < 1 {
		return fmt.Errorf("fulfillment.max_concurrent must be at least 1, got %d", c.Fulfillment.MaxConcurrent)
	}
	if c.API.RateLimitRequests > 0 && c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive when rate limiting is enabled")
	}
	if len(c.Selectors.Input) == 0 {
		return fmt.Errorf("selectors.input must list at least one candidate")
	}
	if len(c.Selectors.Submit) == 0 {
		return fmt.Errorf("selectors.submit must list at least one candidate")
	}
	switch c.Challenge.Resolver {
	case "wait", "disabled":
	default:
		return fmt.Errorf("challenge.resolver must be \"wait\" or \"disabled\", got %q", c.Challenge.Resolver)
	}
	return nil
}
