package service

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService — кэш публичных чтений каталога с инвалидацией по префиксу.
// Нулевой *CacheService допустим и ничего не кэширует.
type CacheService struct {
	store *cache.Cache
}

// NewCacheService создаёт кэш с временем жизни записей ttl.
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{store: cache.New(ttl, 2*ttl)}
}

// Get возвращает значение из кэша.
func (cs *CacheService) Get(key string) (interface{}, bool) {
	if cs == nil {
		return nil, false
	}
	return cs.store.Get(key)
}

// Set сохраняет значение с TTL по умолчанию.
func (cs *CacheService) Set(key string, value interface{}) {
	if cs == nil {
		return
	}
	cs.store.SetDefault(key, value)
}

// InvalidateByPrefix удаляет все ключи с заданным префиксом.
func (cs *CacheService) InvalidateByPrefix(prefix string) {
	if cs == nil {
		return
	}
	for key := range cs.store.Items() {
		if strings.HasPrefix(key, prefix) {
			cs.store.Delete(key)
		}
	}
}

// GetOrSet возвращает значение из кэша или вычисляет и сохраняет его.
func GetOrSet[V any](cs *CacheService, key string, fn func() (V, error)) (V, error) {
	if value, found := cs.Get(key); found {
		if typed, ok := value.(V); ok {
			return typed, nil
		}
	}

	value, err := fn()
	if err != nil {
		return value, err
	}
	cs.Set(key, value)
	return value, nil
}
