package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/repository"
)

// fakeImageRepo — хранилище изображений в памяти с той же семантикой лимита, что и SQL версия.
type fakeImageRepo struct {
	mu        sync.Mutex
	images    map[string]*models.Image
	updates   map[string]int
	forceFull bool
}

func newFakeImageRepo() *fakeImageRepo {
	return &fakeImageRepo{images: map[string]*models.Image{}, updates: map[string]int{}}
}

func (r *fakeImageRepo) seed(parentType, parentID string, n int) []string {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		img := &models.Image{
			ID: models.NewID(), ParentableType: parentType, ParentableID: parentID,
			SortOrder: i + 1, Path: "images/seed/" + parentID + "/" + models.NewID() + ".webp", IsActive: true,
		}
		r.images[img.ID] = img
		ids = append(ids, img.ID)
	}
	return ids
}

func (r *fakeImageRepo) live(parentType, parentID string) []*models.Image {
	var out []*models.Image
	for _, img := range r.images {
		if img.ParentableType == parentType && img.ParentableID == parentID && img.DeletedAt == nil {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func (r *fakeImageRepo) CountByParent(_ context.Context, parentType, parentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live(parentType, parentID)), nil
}

func (r *fakeImageRepo) ListByParent(_ context.Context, parentType, parentID string) ([]models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Image{}
	for _, img := range r.live(parentType, parentID) {
		out = append(out, *img)
	}
	return out, nil
}

func (r *fakeImageRepo) GetByID(_ context.Context, id string) (*models.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok || img.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	copied := *img
	return &copied, nil
}

func (r *fakeImageRepo) CreateWithinLimit(_ context.Context, image *models.Image, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	live := r.live(image.ParentableType, image.ParentableID)
	if r.forceFull || len(live) >= limit {
		return repository.ErrImageLimitReached
	}
	maxSort := 0
	for _, img := range live {
		maxSort = max(maxSort, img.SortOrder)
	}
	image.SortOrder = maxSort + 1
	image.CreatedAt, image.UpdatedAt = time.Now(), time.Now()
	copied := *image
	r.images[image.ID] = &copied
	return nil
}

func (r *fakeImageRepo) ExistingIDs(_ context.Context, ids []string) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := map[string]struct{}{}
	for _, id := range ids {
		if img, ok := r.images[id]; ok && img.DeletedAt == nil {
			found[id] = struct{}{}
		}
	}
	return found, nil
}

func (r *fakeImageRepo) UpdateSortOrder(_ context.Context, id string, sortOrder int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return repository.ErrNotFound
	}
	img.SortOrder = sortOrder
	r.updates[id] = sortOrder
	return nil
}

func (r *fakeImageRepo) SoftDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok || img.DeletedAt != nil {
		return repository.ErrNotFound
	}
	now := time.Now()
	img.DeletedAt = &now
	return nil
}

func (r *fakeImageRepo) ToggleActive(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok || img.DeletedAt != nil {
		return false, repository.ErrNotFound
	}
	img.IsActive = !img.IsActive
	return img.IsActive, nil
}

// fakeStorage — объектное хранилище в памяти с управляемыми сбоями.
type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	types       map[string]string
	failPut     bool
	failDelete  bool
	loseObjects bool
	deleted     []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Put(_ context.Context, path string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return errors.New("bucket unavailable")
	}
	if !s.loseObjects {
		s.objects[path] = data
		s.types[path] = contentType
	}
	return nil
}

func (s *fakeStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[path]
	return ok, nil
}

func (s *fakeStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, path)
	if s.failDelete {
		return errors.New("bucket unavailable")
	}
	delete(s.objects, path)
	return nil
}

func (s *fakeStorage) URL(path string) string {
	return "https://storage.yandexcloud.net/mebel/" + path
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func uploadFile(name string, data []byte) UploadFile {
	return UploadFile{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}
