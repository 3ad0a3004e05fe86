package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"liker/internal/logger"
)

var ErrBinaryNotFound = errors.New("no browser executable found")

type LaunchOptions struct {
	// BinaryPath, when set, is the only binary considered.
	BinaryPath     string
	CandidatePaths []string

	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	LaunchTimeout  time.Duration
	// Args are chrome switches without the leading dashes, "name" or "name=value".
	Args []string
}

type RodAcquirer struct {
	opts   LaunchOptions
	logger *logger.Logger

	fileExists func(string) bool
	lookPath   func() (string, bool)
}

func NewRodAcquirer(opts LaunchOptions, log *logger.Logger) *RodAcquirer {
	return &RodAcquirer{
		opts:       opts,
		logger:     log,
		fileExists: fileExists,
		lookPath:   launcher.LookPath,
	}
}

// ProbeBinary resolves the browser executable to launch.
func (a *RodAcquirer) ProbeBinary() (string, error) {
	if a.opts.BinaryPath != "" {
		if !a.fileExists(a.opts.BinaryPath) {
			return "", fmt.Errorf("%w: configured path %s does not exist", ErrBinaryNotFound, a.opts.BinaryPath)
		}
		return a.opts.BinaryPath, nil
	}

	for _, path := range a.opts.CandidatePaths {
		if a.fileExists(path) {
			a.logger.Debug("browser candidate found", "path", path)
			return path, nil
		}
		a.logger.Debug("browser candidate missing", "path", path)
	}

	if path, ok := a.lookPath(); ok {
		return path, nil
	}

	return "", ErrBinaryNotFound
}

func (a *RodAcquirer) Acquire(ctx context.Context) (Handle, error) {
	bin, err := a.ProbeBinary()
	if err != nil {
		return nil, &AcquisitionError{Op: "probe", Err: err}
	}

	a.logger.Info("launching browser", "path", bin, "headless", a.opts.Headless)

	// Disable leakless mode on Windows to prevent deadlock
	// See: https://github.com/go-rod/rod/issues/853
	l := launcher.New().
		Bin(bin).
		Leakless(runtime.GOOS != "windows").
		Headless(a.opts.Headless).
		Set("window-size", fmt.Sprintf("%d,%d", a.opts.ViewportWidth, a.opts.ViewportHeight))
	for _, arg := range a.opts.Args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	url, err := a.launch(ctx, l)
	if err != nil {
		return nil, &AcquisitionError{Op: "launch", Err: err}
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, &AcquisitionError{Op: "connect", Err: err}
	}

	return &rodHandle{
		browser:  b,
		launcher: l,
		width:    a.opts.ViewportWidth,
		height:   a.opts.ViewportHeight,
	}, nil
}

// launch bounds l.Launch by the launch timeout and ctx, killing the process
// if it does not report a control URL in time.
func (a *RodAcquirer) launch(ctx context.Context, l *launcher.Launcher) (string, error) {
	type result struct {
		url string
		err error
	}
	done := make(chan result, 1)
	go func() {
		url, err := l.Launch()
		done <- result{url: url, err: err}
	}()

	timeout := a.opts.LaunchTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("failed to launch browser: %w", res.err)
		}
		return res.url, nil
	case <-timer.C:
		l.Kill()
		go l.Cleanup()
		return "", fmt.Errorf("browser did not start within %v", timeout)
	case <-ctx.Done():
		l.Kill()
		go l.Cleanup()
		return "", ctx.Err()
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
