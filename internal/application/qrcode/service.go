package qrcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/pkg/id"
	"github.com/qrdesk-api/internal/pkg/metrics"
	"github.com/qrdesk-api/internal/pkg/useragent"
	"github.com/qrdesk-api/internal/pkg/validate"
)

// RequestMeta is what the redirect endpoint knows about the scanner.
type RequestMeta struct {
	IP        string
	UserAgent string
	Referrer  string
}

type Service interface {
	Create(ctx context.Context, ownerID string, req domain.CreateQRCodeRequest) (*domain.QRCode, error)
	Update(ctx context.Context, qrID, ownerID string, req domain.UpdateQRCodeRequest) (*domain.QRCode, error)
	Delete(ctx context.Context, qrID, ownerID string) error
	TogglePause(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error)
	Get(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.QRCode, error)
	GetPublic(ctx context.Context, shortCode string) (*domain.PublicQRCode, error)
	Resolve(ctx context.Context, shortCode string, meta RequestMeta) (string, error)
	GetAnalytics(ctx context.Context, qrID, ownerID string) (*Analytics, error)
	GetRealTimeAnalytics(ctx context.Context, qrID, ownerID string) (*RealTimeAnalytics, error)
	GetUserScanAnalytics(ctx context.Context, ownerID string) (*UserScanAnalytics, error)
}

type qrStore interface {
	Create(ctx context.Context, q *domain.QRCode) error
	Get(ctx context.Context, qrID string) (*domain.QRCode, error)
	GetByShortCode(ctx context.Context, shortCode string) (*domain.QRCode, error)
	ListByOwner(ctx context.Context, userID string) ([]domain.QRCode, error)
	Update(ctx context.Context, q *domain.QRCode) error
	SetPaused(ctx context.Context, q *domain.QRCode) error
	IncrementScanCount(ctx context.Context, qrID string) error
	Delete(ctx context.Context, q *domain.QRCode) error
}

type scanStore interface {
	Put(ctx context.Context, ev *domain.ScanEvent) error
	ListByQRCode(ctx context.Context, qrID string) ([]domain.ScanEvent, error)
	ListSince(ctx context.Context, qrID string, since time.Time) ([]domain.ScanEvent, error)
}

type analyticsCache interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type scanPublisher interface {
	PublishScan(ctx context.Context, ev *domain.ScanEvent) error
}

type locator interface {
	Lookup(ip string) domain.Location
}

// ServiceDeps wires the QR service. Cache and Publisher are optional.
type ServiceDeps struct {
	QRRepo        qrStore
	ScanRepo      scanStore
	Locator       locator
	Cache         analyticsCache
	CacheTTL      time.Duration
	Publisher     scanPublisher
	ViewerBaseURL string
}

type service struct {
	repo      qrStore
	scans     scanStore
	locator   locator
	cache     analyticsCache
	cacheTTL  time.Duration
	publisher scanPublisher
	viewer    string
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:      deps.QRRepo,
		scans:     deps.ScanRepo,
		locator:   deps.Locator,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		publisher: deps.Publisher,
		viewer:    deps.ViewerBaseURL,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, ownerID string, req domain.CreateQRCodeRequest) (*domain.QRCode, error) {
	if err := checkContent(req.ContentType, req.TypeData); err != nil {
		return nil, err
	}
	styling := domain.Styling{}
	if req.Styling != nil {
		styling = *req.Styling
	}
	styling = styling.WithDefaults()
	if err := validate.Struct(styling); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
	}
	now := s.now().UTC()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fmt.Errorf("expires_at must be in the future: %w", domain.ErrBadRequest)
	}

	q := &domain.QRCode{
		QRID:        id.New(),
		UserID:      ownerID,
		Name:        req.Name,
		ContentType: req.ContentType,
		TypeData:    req.TypeData,
		Styling:     styling,
		IsDynamic:   req.IsDynamic,
		ExpiresAt:   req.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, step := range shortCodePlan {
		for i := 0; i < step.attempts; i++ {
			code, err := generateShortCode(step.length)
			if err != nil {
				return nil, err
			}
			q.ShortCode = code
			err = s.repo.Create(ctx, q)
			if err == nil {
				return q, nil
			}
			if !errors.Is(err, domain.ErrConflict) {
				return nil, err
			}
			slog.Debug("short code collision", "length", step.length, "attempt", i+1)
		}
	}
	return nil, fmt.Errorf("could not allocate a unique short code: %w", domain.ErrResourceExhausted)
}

func (s *service) Update(ctx context.Context, qrID, ownerID string, req domain.UpdateQRCodeRequest) (*domain.QRCode, error) {
	q, err := s.owned(ctx, qrID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name.Set {
		q.Name = req.Name.Value
	}
	if req.ContentType.Set {
		if req.ContentType.Value == nil {
			return nil, fmt.Errorf("content_type cannot be null: %w", domain.ErrBadRequest)
		}
		q.ContentType = *req.ContentType.Value
	}
	if req.TypeData.Set {
		if req.TypeData.Value == nil {
			return nil, fmt.Errorf("type_data cannot be null: %w", domain.ErrBadRequest)
		}
		q.TypeData = *req.TypeData.Value
	}
	if req.ContentType.Set || req.TypeData.Set {
		if err := checkContent(q.ContentType, q.TypeData); err != nil {
			return nil, err
		}
	}
	if req.Styling.Set {
		styling := domain.Styling{}
		if req.Styling.Value != nil {
			styling = *req.Styling.Value
		}
		styling = styling.WithDefaults()
		if err := validate.Struct(styling); err != nil {
			return nil, fmt.Errorf("%s: %w", err.Error(), domain.ErrBadRequest)
		}
		q.Styling = styling
	}
	if req.IsDynamic.Set {
		if req.IsDynamic.Value == nil {
			return nil, fmt.Errorf("is_dynamic cannot be null: %w", domain.ErrBadRequest)
		}
		q.IsDynamic = *req.IsDynamic.Value
	}
	if req.ExpiresAt.Set {
		q.ExpiresAt = req.ExpiresAt.Value
	}

	q.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	s.invalidate(ctx, q.QRID)
	return q, nil
}

func (s *service) Delete(ctx context.Context, qrID, ownerID string) error {
	q, err := s.owned(ctx, qrID, ownerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, q); err != nil {
		return err
	}
	s.invalidate(ctx, qrID)
	return nil
}

func (s *service) TogglePause(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error) {
	q, err := s.owned(ctx, qrID, ownerID)
	if err != nil {
		return nil, err
	}
	q.IsPaused = !q.IsPaused
	q.UpdatedAt = s.now().UTC()
	if err := s.repo.SetPaused(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *service) Get(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error) {
	return s.owned(ctx, qrID, ownerID)
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]domain.QRCode, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *service) GetPublic(ctx context.Context, shortCode string) (*domain.PublicQRCode, error) {
	q, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	return q.Public(), nil
}

// Resolve checks the code is redirectable, records one scan and returns the
// target URL. No scan is recorded when any check fails.
func (s *service) Resolve(ctx context.Context, shortCode string, meta RequestMeta) (string, error) {
	q, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.RedirectRejections.WithLabelValues("not_found").Inc()
		}
		return "", err
	}
	now := s.now().UTC()
	switch {
	case !q.IsDynamic:
		metrics.RedirectRejections.WithLabelValues("not_dynamic").Inc()
		return "", fmt.Errorf("not a dynamic qr code: %w", domain.ErrBadRequest)
	case q.IsPaused:
		metrics.RedirectRejections.WithLabelValues("paused").Inc()
		return "", fmt.Errorf("qr code is currently paused: %w", domain.ErrForbidden)
	case q.Expired(now):
		metrics.RedirectRejections.WithLabelValues("expired").Inc()
		return "", fmt.Errorf("qr code has expired: %w", domain.ErrGone)
	}

	content, err := domain.DecodeContent(q.ContentType, q.TypeData)
	if err != nil {
		slog.Warn("stored type data does not decode", "qr_id", q.QRID, "content_type", q.ContentType, "err", err)
		content = domain.UnknownContent{Kind: q.ContentType}
	}
	target := content.Target(domain.LinkContext{ShortCode: q.ShortCode, ViewerBaseURL: s.viewer})

	ua := useragent.Parse(meta.UserAgent)
	ev := &domain.ScanEvent{
		QRID:       q.QRID,
		ScanID:     id.NewAt(now),
		IP:         meta.IP,
		UserAgent:  meta.UserAgent,
		DeviceType: ua.DeviceType,
		Browser:    ua.Browser,
		OS:         ua.OS,
		Location:   s.locator.Lookup(meta.IP),
		ScannedAt:  now,
	}
	if meta.Referrer != "" {
		ref := meta.Referrer
		ev.Referrer = &ref
	}
	if err := s.scans.Put(ctx, ev); err != nil {
		return "", err
	}
	if err := s.repo.IncrementScanCount(ctx, q.QRID); err != nil {
		return "", err
	}
	metrics.ScansTotal.WithLabelValues(ev.DeviceType).Inc()
	s.invalidate(ctx, q.QRID)

	if s.publisher != nil {
		if err := s.publisher.PublishScan(ctx, ev); err != nil {
			slog.Warn("failed to publish scan event", "qr_id", q.QRID, "err", err)
		}
	}
	return target, nil
}

func (s *service) GetAnalytics(ctx context.Context, qrID, ownerID string) (*Analytics, error) {
	if _, err := s.owned(ctx, qrID, ownerID); err != nil {
		return nil, err
	}
	key := analyticsKey(qrID)
	if s.cache != nil {
		if raw := s.cache.Get(ctx, key); raw != nil {
			var cached Analytics
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	events, err := s.scans.ListByQRCode(ctx, qrID)
	if err != nil {
		return nil, err
	}
	a := computeAnalytics(events, s.now())

	if s.cache != nil {
		if raw, err := json.Marshal(a); err == nil {
			s.cache.Set(ctx, key, raw, s.cacheTTL)
		}
	}
	return a, nil
}

func (s *service) GetRealTimeAnalytics(ctx context.Context, qrID, ownerID string) (*RealTimeAnalytics, error) {
	if _, err := s.owned(ctx, qrID, ownerID); err != nil {
		return nil, err
	}
	now := s.now()
	events, err := s.scans.ListSince(ctx, qrID, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	return computeRealTime(events, now), nil
}

func (s *service) GetUserScanAnalytics(ctx context.Context, ownerID string) (*UserScanAnalytics, error) {
	codes, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	since := histogramStart(now)
	out := &UserScanAnalytics{
		TotalCodes:    len(codes),
		ScansOverTime: emptyHistogram(now),
	}
	for _, q := range codes {
		out.TotalScans += q.ScanCount
		events, err := s.scans.ListSince(ctx, q.QRID, since)
		if err != nil {
			return nil, err
		}
		out.ScansLast30Day += addToHistogram(out.ScansOverTime, events)
	}
	return out, nil
}

// owned loads a code and checks ownership. A code owned by someone else
// is Forbidden, not NotFound.
func (s *service) owned(ctx context.Context, qrID, ownerID string) (*domain.QRCode, error) {
	q, err := s.repo.Get(ctx, qrID)
	if err != nil {
		return nil, err
	}
	if q.UserID != ownerID {
		return nil, fmt.Errorf("qr code belongs to another user: %w", domain.ErrForbidden)
	}
	return q, nil
}

func (s *service) invalidate(ctx context.Context, qrID string) {
	if s.cache != nil {
		s.cache.Delete(ctx, analyticsKey(qrID))
	}
}

func analyticsKey(qrID string) string {
	return "qr:analytics:" + qrID
}

// checkContent rejects unknown content types and type data that does not
// fit the type's shape.
func checkContent(t domain.ContentType, data map[string]interface{}) error {
	if !domain.KnownContentType(t) {
		return fmt.Errorf("unsupported content type %q: %w", t, domain.ErrBadRequest)
	}
	c, err := domain.DecodeContent(t, data)
	if err != nil {
		return err
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("type_data: %s: %w", err.Error(), domain.ErrBadRequest)
	}
	return nil
}
