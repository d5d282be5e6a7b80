package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mebel-backend/internal/imaging"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/repository"
	"github.com/ignatzorin/mebel-backend/internal/storage"
)

// ImageRepository описывает зависимости ImageService от слоя хранилища.
type ImageRepository interface {
	CountByParent(ctx context.Context, parentType, parentID string) (int, error)
	ListByParent(ctx context.Context, parentType, parentID string) ([]models.Image, error)
	GetByID(ctx context.Context, id string) (*models.Image, error)
	CreateWithinLimit(ctx context.Context, image *models.Image, limit int) error
	ExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)
	UpdateSortOrder(ctx context.Context, id string, sortOrder int) error
	SoftDelete(ctx context.Context, id string) error
	ToggleActive(ctx context.Context, id string) (bool, error)
}

// UploadFile — один файл из multipart формы.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// UploadResult — итог пакетной загрузки.
type UploadResult struct {
	Images         []models.Image
	Errors         []string
	RemainingSlots int
}

// Success — загружен хотя бы один файл.
func (r *UploadResult) Success() bool {
	return len(r.Images) > 0
}

// Message формирует сводку вида «Загружено 2 изображений. Ошибки: a; b».
func (r *UploadResult) Message() string {
	msg := fmt.Sprintf("Загружено %d изображений", len(r.Images))
	if len(r.Errors) > 0 {
		msg += ". Ошибки: " + strings.Join(r.Errors, "; ")
	}
	return msg
}

// ReorderItem — новая позиция одного изображения.
type ReorderItem struct {
	ID        string
	SortOrder int
}

// ImageService управляет изображениями, прикреплёнными к сущностям.
type ImageService struct {
	repo      ImageRepository
	storage   storage.ObjectStorage
	processor *imaging.Processor
	profile   imaging.Profile
}

// NewImageService создаёт сервис изображений.
func NewImageService(repo ImageRepository, store storage.ObjectStorage, processor *imaging.Processor, profile imaging.Profile) *ImageService {
	return &ImageService{repo: repo, storage: store, processor: processor, profile: profile}
}

// Upload загружает до оставшегося числа слотов файлов. Ошибка одного файла
// попадает в результат и не прерывает обработку остальных.
func (s *ImageService) Upload(ctx context.Context, parentType, parentID string, files []UploadFile) (*UploadResult, error) {
	if _, err := storage.ImagePath(parentType, parentID, ""); err != nil {
		return nil, apperror.Validation("Ошибка валидации", map[string][]string{
			"parentable_type": {"недопустимая ссылка на родителя"},
		})
	}

	existing, err := s.repo.CountByParent(ctx, parentType, parentID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось посчитать изображения")
	}

	remaining := models.MaxImagesPerParent - existing
	if remaining <= 0 {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("Достигнуто максимальное количество изображений (%d)", models.MaxImagesPerParent))
	}
	if len(files) > remaining {
		files = files[:remaining]
	}

	result := &UploadResult{Images: []models.Image{}, Errors: []string{}}
	for _, f := range files {
		image, err := s.uploadOne(ctx, parentType, parentID, f)
		if err != nil {
			logger.Log.WithFields(logrus.Fields{
				"parentable_type": parentType,
				"parentable_id":   parentID,
				"file":            f.Name,
			}).WithError(err).Error("images: не удалось загрузить файл")
			imageUploadsTotal.WithLabelValues("error").Inc()
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		imageUploadsTotal.WithLabelValues("ok").Inc()
		imageUploadBytes.Observe(float64(image.Size))
		result.Images = append(result.Images, *image)
	}

	result.RemainingSlots = models.MaxImagesPerParent - existing - len(result.Images)
	return result, nil
}

func (s *ImageService) uploadOne(ctx context.Context, parentType, parentID string, f UploadFile) (*models.Image, error) {
	data, err := readAll(f, s.profile.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	res, err := s.processor.Process(data, f.Name, s.profile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	sum := sha256.Sum256(res.Data)
	filename := models.NewID() + "." + res.Ext
	path, err := storage.ImagePath(parentType, parentID, filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}

	if err := s.storage.Put(ctx, path, res.Data, res.MimeType); err != nil {
		logger.Log.WithError(err).WithField("path", path).Error("images: ошибка записи в хранилище")
		return nil, fmt.Errorf("Не удалось загрузить %s", f.Name)
	}
	if ok, err := s.storage.Exists(ctx, path); err != nil || !ok {
		return nil, fmt.Errorf("Файл не найден после загрузки: %s", f.Name)
	}

	image := &models.Image{
		ID:             models.NewID(),
		Key:            models.NewID(),
		IsActive:       true,
		Hash:           hex.EncodeToString(sum[:]),
		Filename:       filename,
		OriginalName:   f.Name,
		MimeType:       res.MimeType,
		Size:           int64(len(res.Data)),
		Path:           path,
		ParentableType: parentType,
		ParentableID:   parentID,
	}
	if err := s.repo.CreateWithinLimit(ctx, image, models.MaxImagesPerParent); err != nil {
		s.removeOrphan(ctx, path)
		if errors.Is(err, repository.ErrImageLimitReached) {
			return nil, fmt.Errorf("%s: достигнуто максимальное количество изображений (%d)", f.Name, models.MaxImagesPerParent)
		}
		logger.Log.WithError(err).WithField("path", path).Error("images: ошибка записи в БД")
		return nil, fmt.Errorf("%s: не удалось сохранить запись", f.Name)
	}

	image.URL = s.storage.URL(image.Path)
	return image, nil
}

// removeOrphan удаляет объект, для которого не удалось создать запись.
func (s *ImageService) removeOrphan(ctx context.Context, path string) {
	if err := s.storage.Delete(ctx, path); err != nil {
		logger.Log.WithError(err).WithField("path", path).Warn("images: не удалось удалить осиротевший файл")
	}
}

// List возвращает живые изображения сущности.
func (s *ImageService) List(ctx context.Context, parentType, parentID string) ([]models.Image, error) {
	images, err := s.repo.ListByParent(ctx, parentType, parentID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить изображения")
	}
	for i := range images {
		images[i].URL = s.storage.URL(images[i].Path)
	}
	return images, nil
}

// Delete удаляет файл из хранилища и мягко удаляет запись.
// Сбой хранилища только логируется: запись удаляется в любом случае.
func (s *ImageService) Delete(ctx context.Context, id string) error {
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapImageError(err)
	}

	if err := s.storage.Delete(ctx, image.Path); err != nil {
		logger.Log.WithFields(logrus.Fields{"image_id": id, "path": image.Path}).
			WithError(err).Warn("images: не удалось удалить файл из хранилища")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return mapImageError(err)
	}
	return nil
}

// Reorder проверяет весь набор и затем применяет позиции по одной, без общей транзакции.
func (s *ImageService) Reorder(ctx context.Context, items []ReorderItem) error {
	fields := map[string][]string{}
	if len(items) == 0 {
		fields["images"] = []string{"обязательное поле"}
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		if item.SortOrder < 0 {
			key := fmt.Sprintf("images.%d.sort_order", i)
			fields[key] = append(fields[key], "значение должно быть не меньше 0")
		}
		ids = append(ids, item.ID)
	}

	found, err := s.repo.ExistingIDs(ctx, ids)
	if err != nil {
		return apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить изображения")
	}
	for i, item := range items {
		if _, ok := found[item.ID]; !ok {
			key := fmt.Sprintf("images.%d.id", i)
			fields[key] = append(fields[key], "изображение не найдено")
		}
	}
	if len(fields) > 0 {
		return apperror.Validation("Ошибка валидации", fields)
	}

	var failed []string
	for _, item := range items {
		if err := s.repo.UpdateSortOrder(ctx, item.ID, item.SortOrder); err != nil {
			logger.Log.WithError(err).WithField("image_id", item.ID).Error("images: не удалось изменить порядок")
			failed = append(failed, item.ID)
		}
	}
	if len(failed) > 0 {
		return apperror.New(apperror.ErrCodeInternal, "Не удалось обновить порядок: "+strings.Join(failed, ", "))
	}
	return nil
}

// ToggleActive переключает видимость изображения.
func (s *ImageService) ToggleActive(ctx context.Context, id string) (bool, error) {
	active, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return false, mapImageError(err)
	}
	return active, nil
}

func mapImageError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.ErrImageNotFound
	}
	return apperror.Wrap(err, apperror.ErrCodeInternal, "ошибка хранилища изображений")
}

// readAll читает файл, ограничивая объём limit+1 байтами, чтобы превышение было видно обработчику.
func readAll(f UploadFile, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл: %w", err)
	}
	return data, nil
}
