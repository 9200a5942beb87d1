package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/qrdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockBlogSvc struct{ mock.Mock }

func (m *mockBlogSvc) Create(ctx context.Context, req domain.CreateBlogPostRequest) (*domain.BlogPost, error) {
	args := m.Called(ctx, req)
	if p, _ := args.Get(0).(*domain.BlogPost); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlogSvc) List(ctx context.Context) ([]domain.BlogPost, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.BlogPost), args.Error(1)
}

func (m *mockBlogSvc) Get(ctx context.Context, slug string) (*domain.BlogPost, error) {
	args := m.Called(ctx, slug)
	if p, _ := args.Get(0).(*domain.BlogPost); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlogSvc) Update(ctx context.Context, slug string, req domain.UpdateBlogPostRequest) (*domain.BlogPost, error) {
	args := m.Called(ctx, slug, req)
	if p, _ := args.Get(0).(*domain.BlogPost); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBlogSvc) Delete(ctx context.Context, slug string) error {
	return m.Called(ctx, slug).Error(0)
}

func blogRouter(svc *mockBlogSvc) http.Handler {
	h := NewBlogHandler(svc)
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{slug}", h.Get)
	r.Put("/{slug}", h.Update)
	r.Delete("/{slug}", h.Delete)
	return r
}

func TestCreateBlog_Created(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("Create", mock.Anything, mock.AnythingOfType("domain.CreateBlogPostRequest")).
		Return(&domain.BlogPost{Slug: "hello-world", ContentHTML: "<p>hi</p>\n"}, nil)

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"title":"Hello","slug":"hello-world","description":"d","content":"hi"}`)))

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"slug":"hello-world"`)
}

func TestCreateBlog_BadSlug(t *testing.T) {
	svc := &mockBlogSvc{}

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"title":"Hello","slug":"Hello World","description":"d","content":"hi"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "slug")
}

func TestCreateBlog_DuplicateSlug(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("slug taken: %w", domain.ErrConflict))

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"title":"Hello","slug":"hello","description":"d","content":"hi"}`)))

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestGetBlog_NotFound(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("Get", mock.Anything, "nope").Return(nil, fmt.Errorf("blog post: %w", domain.ErrNotFound))

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListBlog(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("List", mock.Anything).Return([]domain.BlogPost{{Slug: "a"}, {Slug: "b"}}, nil)

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"slug":"b"`)
}

func TestUpdateBlog_PassesSlug(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("Update", mock.Anything, "hello", mock.AnythingOfType("domain.UpdateBlogPostRequest")).
		Return(&domain.BlogPost{Slug: "hello", Title: "New"}, nil)

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/hello", strings.NewReader(`{"title":"New"}`)))

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestDeleteBlog(t *testing.T) {
	svc := &mockBlogSvc{}
	svc.On("Delete", mock.Anything, "hello").Return(nil)

	rr := httptest.NewRecorder()
	blogRouter(svc).ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/hello", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Deleted successfully"}`, rr.Body.String())
}
