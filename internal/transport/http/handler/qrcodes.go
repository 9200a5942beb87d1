package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qrdesk-api/internal/application/qrcode"
	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/transport/http/middleware"
)

// QRCodeHandler handles QR code management, redirect and analytics endpoints.
type QRCodeHandler struct {
	svc qrcode.Service
}

func NewQRCodeHandler(svc qrcode.Service) *QRCodeHandler { return &QRCodeHandler{svc: svc} }

func (h *QRCodeHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.CreateQRCodeRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := h.svc.Create(r.Context(), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, QRCodeEnvelope{Message: "QR Code created successfully.", QRCode: q})
}

func (h *QRCodeHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req domain.UpdateQRCodeRequest
	if !decode(w, r, &req) {
		return
	}
	q, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), claims.UserID, req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, QRCodeEnvelope{Message: "QR Code updated successfully", QRCode: q})
}

func (h *QRCodeHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	codes, err := h.svc.ListByOwner(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

func (h *QRCodeHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *QRCodeHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.GetPublic(r.Context(), chi.URLParam(r, "shortCode"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// Redirect records a scan and returns the target as {"url": ...} for the
// client to navigate to.
func (h *QRCodeHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "shortCode"), qrcode.RequestMeta{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	})
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, URLEnvelope{URL: target})
}

func (h *QRCodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "QR Code deleted successfully"})
}

func (h *QRCodeHandler) TogglePause(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	q, err := h.svc.TogglePause(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	msg := "QR Code resumed"
	if q.IsPaused {
		msg = "QR Code paused"
	}
	writeJSON(w, http.StatusOK, QRCodeEnvelope{Message: msg, QRCode: q})
}

func (h *QRCodeHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.GetAnalytics(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *QRCodeHandler) RealTimeAnalytics(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.GetRealTimeAnalytics(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *QRCodeHandler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	a, err := h.svc.GetUserScanAnalytics(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
