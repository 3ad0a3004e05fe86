package tracker

import (
	"context"
	"fmt"

	"liker/internal/logger"
	"liker/internal/metrics"
)

const tokenAuditPrefix = 10

// Intake accepts an externally solved challenge token and force-completes the
// transaction it belongs to. The token itself is trusted, not verified.
type Intake struct {
	store   *Store
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewIntake(store *Store, m *metrics.Metrics, log *logger.Logger) *Intake {
	return &Intake{store: store, metrics: m, logger: log}
}

func (i *Intake) Submit(ctx context.Context, subjectID, transactionID, token string) (Transaction, error) {
	tx, err := i.store.Get(transactionID)
	if err != nil {
		return Transaction{}, err
	}
	if tx.SubjectID != subjectID {
		return Transaction{}, fmt.Errorf("transaction %s: %w", transactionID, ErrSubjectMismatch)
	}

	i.logger.Info("manual challenge solution received",
		"uid", subjectID,
		"transaction_id", transactionID,
		"token_prefix", truncate(token, tokenAuditPrefix),
	)

	if err := i.store.ManualComplete(transactionID); err != nil {
		return Transaction{}, err
	}
	i.metrics.IncrementManualResolutions()

	return i.store.Get(transactionID)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
