package blog

import (
	"context"
	"fmt"
	"time"

	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateBlogPostRequest) (*domain.BlogPost, error)
	List(ctx context.Context) ([]domain.BlogPost, error)
	Get(ctx context.Context, slug string) (*domain.BlogPost, error)
	Update(ctx context.Context, slug string, req domain.UpdateBlogPostRequest) (*domain.BlogPost, error)
	Delete(ctx context.Context, slug string) error
}

type blogStore interface {
	Create(ctx context.Context, p *domain.BlogPost) error
	Get(ctx context.Context, slug string) (*domain.BlogPost, error)
	List(ctx context.Context) ([]domain.BlogPost, error)
	Update(ctx context.Context, p *domain.BlogPost) error
	Delete(ctx context.Context, slug string) error
}

type renderer interface {
	Render(markdown string) (string, error)
}

type service struct {
	repo     blogStore
	renderer renderer
}

func NewService(repo blogStore, r renderer) Service {
	return &service{repo: repo, renderer: r}
}

func (s *service) Create(ctx context.Context, req domain.CreateBlogPostRequest) (*domain.BlogPost, error) {
	html, err := s.render(req.Content)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &domain.BlogPost{
		PostID:        id.New(),
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		Content:       req.Content,
		ContentHTML:   html,
		CoverImageURL: req.CoverImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]domain.BlogPost, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, slug string) (*domain.BlogPost, error) {
	return s.repo.Get(ctx, slug)
}

func (s *service) Update(ctx context.Context, slug string, req domain.UpdateBlogPostRequest) (*domain.BlogPost, error) {
	p, err := s.repo.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CoverImageURL != nil {
		p.CoverImageURL = req.CoverImageURL
	}
	if req.Content != nil {
		html, err := s.render(*req.Content)
		if err != nil {
			return nil, err
		}
		p.Content = *req.Content
		p.ContentHTML = html
	}
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, slug string) error {
	return s.repo.Delete(ctx, slug)
}

func (s *service) render(markdown string) (string, error) {
	html, err := s.renderer.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("render content: %w", domain.ErrBadRequest)
	}
	return html, nil
}
