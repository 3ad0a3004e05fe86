package httpapi

import (
	"encoding/json"
	"net/http"
)

// envelope is the body shape shared by every /api response.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type SendLikesResponse struct {
	TransactionID string `json:"transactionId"`
	UID           string `json:"uid"`
	Amount        int    `json:"amount"`
}

type UserResponse struct {
	UID              string `json:"uid"`
	TotalLikes       int    `json:"totalLikes"`
	TransactionCount int    `json:"transactionCount"`
}

type ManualCaptchaResponse struct {
	TransactionID string `json:"transactionId"`
	UID           string `json:"uid"`
}

type HealthResponse struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Status: "success", Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Status: "error", Message: message})
}
