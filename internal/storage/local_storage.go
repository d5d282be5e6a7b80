package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage складывает файлы на диск. Используется в разработке вместо бакета.
type LocalStorage struct {
	rootPath string
	baseURL  string
}

// NewLocalStorage создаёт файловое хранилище.
func NewLocalStorage(rootPath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}
	return &LocalStorage{rootPath: rootPath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root — каталог, который раздаётся как статика.
func (s *LocalStorage) Root() string {
	return s.rootPath
}

// Put пишет во временный файл и переименовывает, чтобы читатели не видели частично записанный файл.
func (s *LocalStorage) Put(ctx context.Context, path string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("storage: не удалось создать каталог: %w", err)
	}

	tempPath := target + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}
	return nil
}

func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	target, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("storage: не удалось проверить файл: %w", err)
	}
	return !info.IsDir(), nil
}

// Delete удаляет файл из хранилища. Отсутствие файла ошибкой не считается.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(path string) string {
	if strings.HasPrefix(path, "http") {
		return path
	}
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// resolve не позволяет ключу выйти за пределы корня хранилища.
func (s *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if path == "" || filepath.IsAbs(clean) || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(s.rootPath, clean), nil
}
