package browser

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultActionTimeout bounds the action run on a matched element when the
// lookup itself had no wait.
const DefaultActionTimeout = 5 * time.Second

// Miss records why one candidate was skipped.
type Miss struct {
	Selector Selector
	Err      error
}

// MatchError is returned when every candidate was skipped.
type MatchError struct {
	Misses []Miss
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%v after %d candidates", ErrNoCandidate, len(e.Misses))
}

func (e *MatchError) Unwrap() error {
	return ErrNoCandidate
}

// FirstMatch tries candidates in order. Each one gets up to wait to appear;
// the first whose element is found and whose action succeeds wins. A miss or
// a failed action moves on to the next candidate. Cancellation of ctx stops
// the scan and is returned as is.
func FirstMatch(ctx context.Context, page Page, candidates []Selector, wait time.Duration, action func(ctx context.Context, el Element) error) (Selector, error) {
	actionTimeout := wait
	if actionTimeout <= 0 {
		actionTimeout = DefaultActionTimeout
	}

	var misses []Miss
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return Selector{}, err
		}

		el, err := page.Find(ctx, candidate, wait)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Selector{}, ctxErr
			}
			misses = append(misses, Miss{Selector: candidate, Err: err})
			continue
		}

		actionCtx, cancel := context.WithTimeout(ctx, actionTimeout)
		err = action(actionCtx, el)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Selector{}, ctxErr
			}
			misses = append(misses, Miss{Selector: candidate, Err: err})
			continue
		}

		return candidate, nil
	}

	return Selector{}, &MatchError{Misses: misses}
}

// IsMiss reports whether err only means that nothing matched.
func IsMiss(err error) bool {
	return errors.Is(err, ErrNoCandidate)
}
