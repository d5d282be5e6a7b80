package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gosimple/slug"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

// uniqueSlug строит slug из source и добавляет суффикс -1, -2, … пока он занят.
func uniqueSlug(ctx context.Context, source string, taken func(ctx context.Context, candidate string) (bool, error)) (string, error) {
	base := slug.MakeLang(source, "ru")
	if base == "" {
		base = strings.ToLower(models.NewID())
	}

	candidate := base
	for i := 1; ; i++ {
		exists, err := taken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
