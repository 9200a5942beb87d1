package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// UserEnvelope wraps register and OTP-request responses.
type UserEnvelope struct {
	Message string             `json:"message"`
	User    *domain.PublicUser `json:"user,omitempty"`
	OTPSent *bool              `json:"otp_sent,omitempty"`
}

// LoginEnvelope wraps login responses.
type LoginEnvelope struct {
	Message string             `json:"message"`
	Token   string             `json:"token"`
	User    *domain.PublicUser `json:"user"`
}

// ResetTokenEnvelope wraps the forgot-password OTP verification response.
type ResetTokenEnvelope struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken"`
}

// QRCodeEnvelope wraps QR mutations.
type QRCodeEnvelope struct {
	Message string         `json:"message"`
	QRCode  *domain.QRCode `json:"qrCode"`
}

// URLEnvelope carries a redirect target or an uploaded object URL.
type URLEnvelope struct {
	URL string `json:"url"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Message: msg})
}

// decode reads a JSON body into dst and validates it. It writes a 400 and
// returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
