package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"liker/internal/browser"
	"liker/internal/logger"
)

// Form fills and submits a form whose markup is not known ahead of time,
// trying selector candidates in order.
type Form struct {
	inputs  []browser.Selector
	submits []browser.Selector
	wait    time.Duration
	settle  time.Duration
	logger  *logger.Logger
}

func NewForm(inputs, submits []browser.Selector, wait, settle time.Duration, log *logger.Logger) *Form {
	return &Form{
		inputs:  inputs,
		submits: submits,
		wait:    wait,
		settle:  settle,
		logger:  log,
	}
}

// FillIdentifier types value into the first input candidate that shows up
// within the per-candidate wait.
func (f *Form) FillIdentifier(ctx context.Context, page browser.Page, value string) error {
	matched, err := browser.FirstMatch(ctx, page, f.inputs, f.wait, func(ctx context.Context, el browser.Element) error {
		return el.Type(ctx, value)
	})
	if err != nil {
		f.logMisses("input", err)
		return fmt.Errorf("identifier input: %w", err)
	}

	f.logger.Debug("filled identifier input", "selector", matched.String())
	return nil
}

// Submit clicks the first submit candidate present on the page, then waits
// for the page to settle.
func (f *Form) Submit(ctx context.Context, page browser.Page) error {
	matched, err := browser.FirstMatch(ctx, page, f.submits, 0, func(ctx context.Context, el browser.Element) error {
		return el.Click(ctx)
	})
	if err != nil {
		f.logMisses("submit", err)
		return fmt.Errorf("submit control: %w", err)
	}

	f.logger.Debug("clicked submit control", "selector", matched.String())

	if err := sleep(ctx, f.settle); err != nil {
		return fmt.Errorf("waiting after submit: %w", err)
	}
	return nil
}

func (f *Form) logMisses(kind string, err error) {
	if !browser.IsMiss(err) {
		f.logger.Debug("selector lookup interrupted", "kind", kind, "error", err)
		return
	}
	var matchErr *browser.MatchError
	if !errors.As(err, &matchErr) {
		return
	}
	for _, miss := range matchErr.Misses {
		f.logger.Debug("selector candidate skipped", "kind", kind, "selector", miss.Selector.String(), "error", miss.Err)
	}
}
