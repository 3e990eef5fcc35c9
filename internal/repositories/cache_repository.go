package repositories

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss - ключа нет в кеше.
var ErrCacheMiss = errors.New("cache: ключ не найден")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// Incr увеличивает счетчик и при первом увеличении ставит срок жизни.
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)
}
