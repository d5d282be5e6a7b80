package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/mebel-backend/internal/imaging"
	"github.com/ignatzorin/mebel-backend/internal/logger"
	"github.com/ignatzorin/mebel-backend/internal/models"
	"github.com/ignatzorin/mebel-backend/internal/pkg/apperror"
	"github.com/ignatzorin/mebel-backend/internal/storage"
)

// LogoResult — сохранённый логотип.
type LogoResult struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// LogoService загружает логотипы брендов и магазинов в каталог logo/.
type LogoService struct {
	storage   storage.ObjectStorage
	processor *imaging.Processor
	profile   imaging.Profile
}

func NewLogoService(store storage.ObjectStorage, processor *imaging.Processor, profile imaging.Profile) *LogoService {
	return &LogoService{storage: store, processor: processor, profile: profile}
}

// Upload обрабатывает и сохраняет логотип.
func (s *LogoService) Upload(ctx context.Context, file UploadFile) (*LogoResult, error) {
	data, err := readAll(file, s.profile.MaxBytes)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	res, err := s.processor.Process(data, file.Name, s.profile)
	if err != nil {
		if isImagingInputError(err) {
			return nil, apperror.Validation("Ошибка валидации", map[string][]string{"file": {err.Error()}})
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "Ошибка загрузки: "+err.Error())
	}

	filename := models.NewID() + "." + res.Ext
	path := storage.LogoPath(filename)
	if err := s.storage.Put(ctx, path, res.Data, res.MimeType); err != nil {
		logger.Log.WithError(err).WithField("path", path).Error("logos: ошибка записи в хранилище")
		return nil, apperror.Wrap(err, apperror.ErrCodeStorage, "Ошибка загрузки логотипа в хранилище")
	}

	logoUploadsTotal.WithLabelValues(string(res.Format)).Inc()
	logger.Log.WithFields(logrus.Fields{
		"path":     path,
		"original": file.Name,
		"format":   res.Format,
		"size":     len(res.Data),
	}).Info("logos: логотип загружен")

	return &LogoResult{URL: s.storage.URL(path), Path: path, Filename: filename}, nil
}

// Delete удаляет логотип. Пути вне logo/ запрещены.
func (s *LogoService) Delete(ctx context.Context, path string) error {
	if !storage.IsLogoPath(path) {
		return apperror.ErrInvalidLogoPath
	}
	if err := s.storage.Delete(ctx, path); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeStorage, "Ошибка удаления: "+err.Error())
	}
	logger.Log.WithField("path", path).Info("logos: логотип удалён")
	return nil
}

func isImagingInputError(err error) bool {
	return errors.Is(err, imaging.ErrEmptyFile) ||
		errors.Is(err, imaging.ErrTooLarge) ||
		errors.Is(err, imaging.ErrUnsupportedType) ||
		errors.Is(err, imaging.ErrDecode)
}
