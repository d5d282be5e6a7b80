package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
)

const (
	ImagesPrefix = "images"
	LogoPrefix   = "logo"
)

var ErrInvalidPath = errors.New("storage: недопустимый путь")

// ObjectStorage — хранилище файлов по относительным ключам вида images/brand/01H.../01H....webp.
type ObjectStorage interface {
	Put(ctx context.Context, path string, data []byte, contentType string) error
	Exists(ctx context.Context, path string) (bool, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}

var segmentPattern = regexp.MustCompile(`^[a-z0-9_]+$`)
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidParentType сообщает, можно ли построить из типа родителя сегмент пути.
func ValidParentType(parentableType string) bool {
	return segmentPattern.MatchString(SnakeCase(ClassBasename(parentableType)))
}

func ValidParentID(parentableID string) bool {
	return idPattern.MatchString(parentableID)
}

// ImagePath строит ключ изображения: images/{snake(basename(type))}/{id}/{filename}.
func ImagePath(parentableType, parentableID, filename string) (string, error) {
	segment := SnakeCase(ClassBasename(parentableType))
	if !segmentPattern.MatchString(segment) || !ValidParentID(parentableID) {
		return "", fmt.Errorf("%w: %s/%s", ErrInvalidPath, parentableType, parentableID)
	}
	return path.Join(ImagesPrefix, segment, parentableID, filename), nil
}

// LogoPath строит ключ логотипа.
func LogoPath(filename string) string {
	return path.Join(LogoPrefix, filename)
}

// IsLogoPath проверяет, что ключ лежит внутри каталога логотипов и не выходит за его пределы.
func IsLogoPath(p string) bool {
	if !strings.HasPrefix(p, LogoPrefix+"/") || strings.Contains(p, "..") {
		return false
	}
	return path.Clean(p) == p && len(p) > len(LogoPrefix)+1
}

// ClassBasename отбрасывает пространство имён: App\Models\MebelProject → MebelProject.
func ClassBasename(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.LastIndexAny(t, `\/.`); i >= 0 {
		return t[i+1:]
	}
	return t
}

// SnakeCase переводит имя в snake_case: MebelProject → mebel_project.
// Слова, разделённые пробелами, склеиваются с заглавной буквы.
func SnakeCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	joined := []rune(strings.Join(words, ""))
	if len(words) == 1 && isLower(s) {
		return s
	}

	var b strings.Builder
	for i, r := range joined {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func isLower(s string) bool {
	for _, r := range s {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return s != ""
}
