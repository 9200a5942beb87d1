package handler

import (
	"net/http"

	"github.com/qrdesk-api/internal/application/upload"
	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/transport/http/middleware"
)

const maxUploadMemory = 32 << 20

// UploadHandler relays multipart files to object storage.
type UploadHandler struct {
	svc upload.Service
}

func NewUploadHandler(svc upload.Service) *UploadHandler { return &UploadHandler{svc: svc} }

// Upload returns a handler storing the "file" field under kind's folder.
func (h *UploadHandler) Upload(kind domain.UploadKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer f.Close()

		u, err := h.svc.Upload(r.Context(), upload.Input{
			Kind:        kind,
			UserID:      claims.UserID,
			Reader:      f,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		})
		if err != nil {
			httpError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, URLEnvelope{URL: u.URL})
	}
}

func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	uploads, err := h.svc.List(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}
