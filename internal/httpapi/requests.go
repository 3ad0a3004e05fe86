package httpapi

import (
	"encoding/json"
	"net/http"
	"unicode/utf8"
)

const (
	minUIDLength = 5
	maxUIDLength = 20
	minAmount    = 1
	maxAmount    = 1000

	maxBodyBytes = 1 << 16
)

const (
	msgRequired    = "UID and amount are required"
	msgUIDFormat   = "Invalid UID format"
	msgAmountRange = "Amount must be between 1 and 1000"
	msgInternal    = "Internal server error"
)

// SendLikesRequest accepts amount as a JSON number or a numeric string.
type SendLikesRequest struct {
	UID    string      `json:"uid"`
	Amount json.Number `json:"amount"`
}

// Validate returns the uid and amount, or a client-facing message.
func (r SendLikesRequest) Validate() (string, int, string) {
	uid := r.UID
	if uid == "" || r.Amount == "" {
		return "", 0, msgRequired
	}
	if msg := validateUID(uid); msg != "" {
		return "", 0, msg
	}

	amount, err := r.Amount.Int64()
	if err != nil || amount < minAmount || amount > maxAmount {
		return "", 0, msgAmountRange
	}
	return uid, int(amount), ""
}

type ManualCaptchaRequest struct {
	UID           string `json:"uid"`
	TransactionID string `json:"transactionId"`
	CaptchaToken  string `json:"captchaToken"`
}

func (r ManualCaptchaRequest) Validate() string {
	if r.UID == "" || r.TransactionID == "" || r.CaptchaToken == "" {
		return "UID, transactionId, and captchaToken are required"
	}
	return ""
}

func validateUID(uid string) string {
	n := utf8.RuneCountInString(uid)
	if n < minUIDLength || n > maxUIDLength {
		return msgUIDFormat
	}
	return ""
}

func validateAmount(amount int) string {
	if amount < minAmount || amount > maxAmount {
		return msgAmountRange
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(body).Decode(v)
}
