package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/qrdesk-api/internal/application/blog"
	"github.com/qrdesk-api/internal/domain"
)

// BlogHandler handles blog post endpoints.
type BlogHandler struct {
	svc blog.Service
}

func NewBlogHandler(svc blog.Service) *BlogHandler { return &BlogHandler{svc: svc} }

func (h *BlogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateBlogPostRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *BlogHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateBlogPostRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "slug"), req)
	if err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *BlogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		httpError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Deleted successfully"})
}
