// Package tracker keeps the in-memory record of like requests and the running
// totals per subject.
package tracker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"liker/internal/fulfillment"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyTerminal = errors.New("transaction already in a terminal state")
	ErrSubjectMismatch = errors.New("transaction belongs to a different subject")
)

// Store owns every Transaction and Aggregate. It hands out copies only.
type Store struct {
	mu           sync.Mutex
	transactions map[string]*Transaction
	aggregates   map[string]*Aggregate

	now   func() time.Time
	newID func() string
}

func NewStore() *Store {
	return &Store{
		transactions: make(map[string]*Transaction),
		aggregates:   make(map[string]*Aggregate),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// Create records a processing transaction and appends it to the subject's
// aggregate, creating the aggregate on first use. Input is validated upstream.
func (s *Store) Create(subjectID string, quantity int) Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		ID:        s.newID(),
		SubjectID: subjectID,
		Quantity:  quantity,
		Status:    StatusProcessing,
		CreatedAt: s.now(),
	}
	s.transactions[tx.ID] = tx

	agg, ok := s.aggregates[subjectID]
	if !ok {
		agg = &Aggregate{SubjectID: subjectID}
		s.aggregates[subjectID] = agg
	}
	agg.TransactionIDs = append(agg.TransactionIDs, tx.ID)

	return copyTransaction(tx)
}

func (s *Store) Get(id string) (Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return copyTransaction(tx), nil
}

func (s *Store) Aggregate(subjectID string) (Aggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg, ok := s.aggregates[subjectID]
	if !ok {
		return Aggregate{}, fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
	}
	out := *agg
	out.TransactionIDs = append([]string(nil), agg.TransactionIDs...)
	return out, nil
}

// Complete records the outcome, marks the transaction completed and counts
// its quantity toward the subject total.
func (s *Store) Complete(id string, outcome fulfillment.Outcome) error {
	return s.finish(id, func(tx *Transaction) {
		tx.Result = &outcome
		tx.Status = StatusCompleted
	}, true)
}

// Fail marks the transaction failed without counting it. outcome may be nil.
func (s *Store) Fail(id string, errText string, outcome *fulfillment.Outcome) error {
	return s.finish(id, func(tx *Transaction) {
		tx.Result = outcome
		tx.Status = StatusFailed
		tx.Error = errText
	}, false)
}

// ManualComplete completes the transaction on behalf of an external
// resolution, without any fulfillment outcome.
func (s *Store) ManualComplete(id string) error {
	return s.finish(id, func(tx *Transaction) {
		tx.Status = StatusCompleted
		tx.ManualResolution = true
	}, true)
}

func (s *Store) finish(id string, apply func(*Transaction), counted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if tx.Status.Terminal() {
		return fmt.Errorf("transaction %s is %s: %w", id, tx.Status, ErrAlreadyTerminal)
	}

	apply(tx)
	completedAt := s.now()
	tx.CompletedAt = &completedAt

	if counted {
		s.aggregates[tx.SubjectID].CumulativeQuantity += tx.Quantity
	}
	return nil
}

func copyTransaction(tx *Transaction) Transaction {
	out := *tx
	if tx.CompletedAt != nil {
		completedAt := *tx.CompletedAt
		out.CompletedAt = &completedAt
	}
	if tx.Result != nil {
		result := *tx.Result
		out.Result = &result
	}
	return out
}
