package main

import (
	"testing"
	"time"

	"liker/internal/config"
)

func TestLaunchOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Browser.BinaryPath = "/usr/local/bin/chrome"

	opts := launchOptions(cfg.Browser)

	if opts.BinaryPath != "/usr/local/bin/chrome" {
		t.Errorf("BinaryPath = %q", opts.BinaryPath)
	}
	if opts.LaunchTimeout != 60*time.Second {
		t.Errorf("LaunchTimeout = %v, want 60s", opts.LaunchTimeout)
	}
	if opts.ViewportWidth != 1920 || opts.ViewportHeight != 1080 {
		t.Errorf("viewport = %dx%d, want 1920x1080", opts.ViewportWidth, opts.ViewportHeight)
	}
	if !opts.Headless {
		t.Error("expected headless launch by default")
	}
	if len(opts.Args) != len(cfg.Browser.Args) || len(opts.CandidatePaths) != 6 {
		t.Errorf("args/candidates not carried over: %d args, %d candidates", len(opts.Args), len(opts.CandidatePaths))
	}
}
