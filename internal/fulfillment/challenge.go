package fulfillment

import (
	"context"
	"strings"
	"time"

	"liker/internal/browser"
	"liker/internal/logger"
)

// Detector recognises a bot-challenge wall in page content: the provider
// marker plus at least one of the challenge markers.
type Detector struct {
	provider string
	markers  []string
}

func NewDetector(provider string, markers []string) *Detector {
	lowered := make([]string, 0, len(markers))
	for _, marker := range markers {
		lowered = append(lowered, strings.ToLower(marker))
	}
	return &Detector{
		provider: strings.ToLower(provider),
		markers:  lowered,
	}
}

func (d *Detector) Detect(content string) bool {
	content = strings.ToLower(content)
	if d.provider == "" || !strings.Contains(content, d.provider) {
		return false
	}
	return containsAny(content, d.markers)
}

// ChallengeResolver tries to get past a detected challenge wall. It reports
// whether the wall is gone and never returns an error.
type ChallengeResolver interface {
	Resolve(ctx context.Context, page browser.Page) bool
}

// WaitResolver gives an interstitial two grace intervals to clear on its
// own, re-checking the page after each. It does not interact with the wall.
type WaitResolver struct {
	detector *Detector
	grace    time.Duration
	logger   *logger.Logger
}

func NewWaitResolver(detector *Detector, grace time.Duration, log *logger.Logger) *WaitResolver {
	return &WaitResolver{
		detector: detector,
		grace:    grace,
		logger:   log,
	}
}

func (r *WaitResolver) Resolve(ctx context.Context, page browser.Page) bool {
	for check := 1; check <= 2; check++ {
		if err := sleep(ctx, r.grace); err != nil {
			return false
		}

		content, err := page.Content(ctx)
		if err != nil {
			r.logger.Warn("failed to read page while waiting on challenge", "check", check, "error", err)
			return false
		}

		if !r.detector.Detect(content) {
			r.logger.Info("challenge cleared", "check", check)
			return true
		}
	}

	r.logger.Info("challenge still present after grace period")
	return false
}

// DisabledResolver treats every challenge as unresolved.
type DisabledResolver struct{}

func (DisabledResolver) Resolve(context.Context, browser.Page) bool {
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
