// Package httpapi exposes the like service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"liker/internal/logger"
	"liker/internal/metrics"
	"liker/internal/tracker"
)

// Tracker is the subset of the transaction store the handlers need.
type Tracker interface {
	Create(subjectID string, quantity int) tracker.Transaction
	Get(id string) (tracker.Transaction, error)
	Aggregate(subjectID string) (tracker.Aggregate, error)
}

// Dispatcher starts background fulfillment for an accepted transaction.
type Dispatcher interface {
	Dispatch(tx tracker.Transaction)
}

// ManualIntake completes a transaction from an externally solved challenge.
type ManualIntake interface {
	Submit(ctx context.Context, subjectID, transactionID, token string) (tracker.Transaction, error)
}

type Handler struct {
	tracker    Tracker
	dispatcher Dispatcher
	intake     ManualIntake
	metrics    *metrics.Metrics
	logger     *logger.Logger

	started time.Time
	now     func() time.Time
}

func New(t Tracker, d Dispatcher, intake ManualIntake, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		tracker:    t,
		dispatcher: d,
		intake:     intake,
		metrics:    m,
		logger:     log,
		started:    time.Now(),
		now:        time.Now,
	}
}

// Register mounts the public like endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/send-likes", h.handleSendLikes)
	r.Get("/status/{transactionId}", h.handleStatus)
	r.Get("/user/{uid}", h.handleUser)
	r.Post("/manual-captcha", h.handleManualCaptcha)
}

func (h *Handler) handleSendLikes(w http.ResponseWriter, r *http.Request) {
	var req SendLikesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	uid, amount, msg := req.Validate()
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	h.accept(w, uid, amount)
}

// handleDirectLink serves GET /uid={uid}&amount={amount}. The router only
// matches digit amounts; anything else is a 404.
func (h *Handler) handleDirectLink(w http.ResponseWriter, r *http.Request) {
	uid, err := url.PathUnescape(chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, http.StatusBadRequest, msgUIDFormat)
		return
	}
	if uid == "" {
		writeError(w, http.StatusBadRequest, "UID is required")
		return
	}
	if msg := validateUID(uid); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	amount, err := strconv.Atoi(chi.URLParam(r, "amount"))
	if err != nil {
		// Only overflow gets here.
		writeError(w, http.StatusBadRequest, msgAmountRange)
		return
	}
	if msg := validateAmount(amount); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	h.accept(w, uid, amount)
}

func (h *Handler) accept(w http.ResponseWriter, uid string, amount int) {
	tx := h.tracker.Create(uid, amount)
	h.metrics.IncrementTransactionsCreated()

	h.logger.Info("like request accepted",
		"transaction_id", tx.ID,
		"uid", uid,
		"amount", amount,
	)

	writeSuccess(w, http.StatusOK, "Likes are being processed", SendLikesResponse{
		TransactionID: tx.ID,
		UID:           tx.SubjectID,
		Amount:        tx.Quantity,
	})

	h.dispatcher.Dispatch(tx)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	tx, err := h.tracker.Get(chi.URLParam(r, "transactionId"))
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.logger.Error("transaction lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeSuccess(w, http.StatusOK, "", tx)
}

func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request) {
	agg, err := h.tracker.Aggregate(chi.URLParam(r, "uid"))
	if err != nil {
		if errors.Is(err, tracker.ErrNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.logger.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeSuccess(w, http.StatusOK, "", UserResponse{
		UID:              agg.SubjectID,
		TotalLikes:       agg.CumulativeQuantity,
		TransactionCount: agg.TransactionCount(),
	})
}

func (h *Handler) handleManualCaptcha(w http.ResponseWriter, r *http.Request) {
	var req ManualCaptchaRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := req.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tx, err := h.intake.Submit(r.Context(), req.UID, req.TransactionID, req.CaptchaToken)
	switch {
	case err == nil:
	case errors.Is(err, tracker.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found")
		return
	case errors.Is(err, tracker.ErrSubjectMismatch):
		writeError(w, http.StatusBadRequest, "UID does not match transaction")
		return
	case errors.Is(err, tracker.ErrAlreadyTerminal):
		writeError(w, http.StatusConflict, "Transaction already finished")
		return
	default:
		h.logger.Error("manual resolution failed", "transaction_id", req.TransactionID, "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	writeSuccess(w, http.StatusOK, "Manual captcha solution processed successfully", ManualCaptchaResponse{
		TransactionID: tx.ID,
		UID:           tx.SubjectID,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Uptime: h.now().Sub(h.started).Seconds(),
	})
}
