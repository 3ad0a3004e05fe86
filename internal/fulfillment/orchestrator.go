// Package fulfillment runs one browser-driven attempt against the target page
// and turns every way it can go wrong into a terminal Outcome.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"liker/internal/browser"
	"liker/internal/config"
	"liker/internal/logger"
	"liker/internal/metrics"
)

type Orchestrator struct {
	config     *config.Config
	acquirer   browser.Acquirer
	detector   *Detector
	resolver   ChallengeResolver
	form       *Form
	classifier *Classifier
	messages   *Messages
	metrics    *metrics.Metrics
	logger     *logger.Logger
}

type Option func(*Orchestrator)

// WithResolver replaces the challenge resolver chosen from config.
func WithResolver(resolver ChallengeResolver) Option {
	return func(o *Orchestrator) {
		o.resolver = resolver
	}
}

func WithMessages(messages *Messages) Option {
	return func(o *Orchestrator) {
		o.messages = messages
	}
}

func NewOrchestrator(cfg *config.Config, acquirer browser.Acquirer, m *metrics.Metrics, log *logger.Logger, opts ...Option) *Orchestrator {
	detector := NewDetector(cfg.Challenge.ProviderMarker, cfg.Challenge.Markers)

	var resolver ChallengeResolver = DisabledResolver{}
	if cfg.Challenge.Resolver == "wait" {
		resolver = NewWaitResolver(detector, cfg.Challenge.GraceInterval.Std(), log)
	}

	o := &Orchestrator{
		config:   cfg,
		acquirer: acquirer,
		detector: detector,
		resolver: resolver,
		form: NewForm(
			cfg.Selectors.Input,
			cfg.Selectors.Submit,
			cfg.Fulfillment.SelectorWait.Std(),
			cfg.Fulfillment.SettleDelay.Std(),
			log,
		),
		classifier: NewClassifier(cfg.SuccessPhrases),
		messages:   DefaultMessages(),
		metrics:    m,
		logger:     log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fulfill runs one attempt for subjectID. It always returns an Outcome with
// Success set; it never panics out and holds no browser after returning.
func (o *Orchestrator) Fulfill(ctx context.Context, subjectID string) (out Outcome) {
	start := time.Now()
	log := o.logger.With("uid", subjectID)

	defer func() {
		o.metrics.ObserveOutcome(string(out.Reason), out.Simulated, time.Since(start))
		log.Info("fulfillment attempt finished",
			"reason", string(out.Reason),
			"simulated", out.Simulated,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()
	defer func() {
		if r := recover(); r != nil {
			log.Error("fulfillment attempt panicked", "panic", r)
			out = o.simulated(ReasonProcessing, fmt.Errorf("panic: %v", r))
		}
	}()

	if o.config.ForceSimulation {
		log.Info("forced simulation, skipping browser automation")
		return Outcome{
			Success:   true,
			Simulated: true,
			Message:   o.messages.T("forced_simulation"),
			Reason:    ReasonForcedSimulation,
		}
	}

	handle, err := o.acquirer.Acquire(ctx)
	if err != nil {
		log.Error("failed to acquire browser", "error", err)
		return o.simulated(ReasonInitialization, err)
	}
	o.metrics.BrowserAcquired()
	defer func() {
		if err := handle.Close(); err != nil {
			log.Warn("failed to close browser", "error", err)
		}
		o.metrics.BrowserReleased()
	}()

	return o.run(ctx, handle, subjectID, log)
}

func (o *Orchestrator) run(ctx context.Context, handle browser.Handle, subjectID string, log *logger.Logger) Outcome {
	page, err := handle.NewPage(ctx)
	if err != nil {
		log.Error("failed to open page", "error", err)
		return o.simulated(ReasonProcessing, err)
	}

	if err := page.SetExtraHeaders(o.config.Browser.ExtraHeaders); err != nil {
		log.Error("failed to set extra headers", "error", err)
		return o.simulated(ReasonProcessing, err)
	}

	navCtx, cancel := context.WithTimeout(ctx, o.config.Fulfillment.NavigationTimeout.Std())
	err = page.Navigate(navCtx, o.config.TargetURL, o.config.Fulfillment.NetworkIdle.Std())
	cancel()
	if err != nil {
		log.Error("navigation failed", "url", o.config.TargetURL, "error", err)
		return o.simulated(ReasonNavigation, err)
	}
	log.Debug("navigated to target", "url", o.config.TargetURL)

	content, err := page.Content(ctx)
	if err != nil {
		log.Error("failed to read page content", "error", err)
		return o.simulated(ReasonProcessing, err)
	}

	if o.detector.Detect(content) {
		log.Info("challenge wall detected")
		if !o.resolver.Resolve(ctx, page) {
			log.Info("challenge unresolved, awaiting manual resolution")
			return o.simulated(ReasonChallenge, nil)
		}
	}

	if err := o.form.FillIdentifier(ctx, page, subjectID); err != nil {
		log.Info("could not fill identifier", "error", err)
		return o.simulated(ReasonInputField, err)
	}

	if err := o.form.Submit(ctx, page); err != nil {
		log.Info("could not submit form", "error", err)
		return o.simulated(ReasonSubmission, err)
	}

	content, err = page.Content(ctx)
	if err != nil {
		log.Error("failed to read result page", "error", err)
		return o.simulated(ReasonProcessing, err)
	}

	actual := o.classifier.Classify(content)
	return Outcome{
		Success:       true,
		Simulated:     !actual,
		Message:       o.messages.T("request_processed"),
		ActualSuccess: &actual,
	}
}

func (o *Orchestrator) simulated(reason Reason, err error) Outcome {
	out := Outcome{
		Success:   true,
		Simulated: true,
		Message:   o.messages.ForReason(reason),
		Reason:    reason,
	}
	if err != nil {
		out.Error = err.Error()
	}
	return out
}
