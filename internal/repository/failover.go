package repository

import (
	"context"
	"sync/atomic"
	"time"

	"odolzhi/internal/domain"
	"odolzhi/internal/models"

	"github.com/rs/zerolog"
)

// FailoverItemCache переключается на резервный кэш при отказе основного
// и пробует вернуться на основной раз в минуту.
type FailoverItemCache struct {
	primary   domain.ItemCache
	fallback  domain.ItemCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

func NewFailoverItemCache(primary, fallback domain.ItemCache, logger *zerolog.Logger) *FailoverItemCache {
	return &FailoverItemCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverItemCache) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary item cache failed, falling back to memory")
	f.isDown.Store(true)
	f.lastCheck.Store(time.Now().UnixNano())
}

func (f *FailoverItemCache) shouldRetryPrimary() bool {
	return time.Since(time.Unix(0, f.lastCheck.Load())) > time.Minute
}

func (f *FailoverItemCache) Get(ctx context.Context, itemID int64) (*models.Item, error) {
	if !f.isDown.Load() {
		item, err := f.primary.Get(ctx, itemID)
		if err == nil {
			return item, nil
		}
		f.markDown(err)
	} else if f.shouldRetryPrimary() {
		item, err := f.primary.Get(ctx, itemID)
		if err == nil {
			f.isDown.Store(false)
			return item, nil
		}
		f.lastCheck.Store(time.Now().UnixNano())
	}

	return f.fallback.Get(ctx, itemID)
}

func (f *FailoverItemCache) Set(ctx context.Context, item *models.Item) error {
	if !f.isDown.Load() {
		if err := f.primary.Set(ctx, item); err != nil {
			f.markDown(err)
		} else {
			return nil
		}
	}
	return f.fallback.Set(ctx, item)
}

func (f *FailoverItemCache) Invalidate(ctx context.Context, itemID int64) error {
	// Инвалидируем оба: после восстановления основного там не должно
	// остаться устаревшей записи.
	var firstErr error
	if err := f.primary.Invalidate(ctx, itemID); err != nil && !f.isDown.Load() {
		f.markDown(err)
		firstErr = err
	}
	if err := f.fallback.Invalidate(ctx, itemID); err != nil && firstErr == nil {
		firstErr = err
	}
	if f.isDown.Load() {
		return nil
	}
	return firstErr
}
