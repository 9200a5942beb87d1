package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/pkg/id"
)

// folders maps an upload kind to its object-store prefix.
var folders = map[domain.UploadKind]string{
	domain.UploadLogo:  "qr-image-logo",
	domain.UploadImage: "qr-image",
	domain.UploadPDF:   "qr-pdfs",
	domain.UploadAudio: "qr-audios",
}

// Input is one uploaded file. Reader must be seekable: it is read once to
// hash and size it, then rewound and sent to the object store.
type Input struct {
	Kind        domain.UploadKind
	UserID      string
	Reader      io.ReadSeeker
	Filename    string
	ContentType string
}

type Service interface {
	Upload(ctx context.Context, in Input) (*domain.Upload, error)
	List(ctx context.Context, userID string) ([]domain.Upload, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type uploadStore interface {
	Put(ctx context.Context, u *domain.Upload) error
	ListByUser(ctx context.Context, userID string) ([]domain.Upload, error)
}

type service struct {
	objects objectStore
	repo    uploadStore
}

func NewService(objects objectStore, repo uploadStore) Service {
	return &service{objects: objects, repo: repo}
}

func (s *service) Upload(ctx context.Context, in Input) (*domain.Upload, error) {
	folder, ok := folders[in.Kind]
	if !ok {
		return nil, fmt.Errorf("unsupported upload kind %q: %w", in.Kind, domain.ErrBadRequest)
	}
	if in.Reader == nil {
		return nil, fmt.Errorf("no file uploaded: %w", domain.ErrBadRequest)
	}
	key := fmt.Sprintf("%s/%s/%s%s", folder, in.UserID, uuid.NewString(), extension(in.Filename))

	hasher := sha256.New()
	size, err := io.Copy(hasher, in.Reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if _, err := in.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	url, err := s.objects.Upload(ctx, key, in.Reader, size, in.ContentType)
	if err != nil {
		return nil, err
	}

	u := &domain.Upload{
		UploadID:    id.New(),
		UserID:      in.UserID,
		Kind:        in.Kind,
		Object:      key,
		URL:         url,
		Size:        size,
		ContentType: in.ContentType,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Put(ctx, u); err != nil {
		if derr := s.objects.Delete(ctx, key); derr != nil {
			slog.Warn("failed to remove orphaned upload", "key", key, "err", derr)
		}
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Upload, error) {
	uploads, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Slice(uploads, func(i, j int) bool {
		return uploads[i].CreatedAt.After(uploads[j].CreatedAt)
	})
	return uploads, nil
}

// extension returns the lower-cased extension of the client filename,
// restricted to safe characters so it cannot alter the object key.
func extension(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
