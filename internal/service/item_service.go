package service

import (
	"context"
	"time"

	"odolzhi/internal/clock"
	"odolzhi/internal/database"
	"odolzhi/internal/domain"
	"odolzhi/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	repo   domain.Repository
	cache  domain.ItemCache
	clock  clock.Clock
	logger *zerolog.Logger
}

func NewItemService(repo domain.Repository, cache domain.ItemCache, clk clock.Clock, logger *zerolog.Logger) *ItemService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &ItemService{
		repo:   repo,
		cache:  cache,
		clock:  clk,
		logger: logger,
	}
}

// getItem читает вещь через кэш; промах и ошибки кэша уходят в хранилище.
func (s *ItemService) getItem(ctx context.Context, itemID int64) (*models.Item, error) {
	if s.cache != nil {
		if item, err := s.cache.Get(ctx, itemID); err == nil && item != nil {
			return item, nil
		}
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, item); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", item.ID).Msg("item cache set failed")
		}
	}
	return item, nil
}

func (s *ItemService) invalidate(ctx context.Context, itemID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, itemID); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", itemID).Msg("item cache invalidate failed")
	}
}

func (s *ItemService) GetAll(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	items, err := s.repo.GetItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return items, nil
}

// Get возвращает вещь; владельцу дополнительно отдаются даты последнего и
// следующего подтвержденного бронирования.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemBookingDates, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	result := &models.ItemBookingDates{Item: *item}
	if item.OwnerID != userID {
		return result, nil
	}

	bookings, err := s.repo.GetBookingsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	result.LastBooking = findLastApprovedStart(bookings, now)
	result.NextBooking = findNextApprovedStart(bookings, now)
	return result, nil
}

func (s *ItemService) Search(ctx context.Context, userID int64, text string) ([]*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.SearchItems(ctx, text)
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	if item.RequestID != nil {
		if _, err := s.repo.GetRequestByID(ctx, *item.RequestID); err != nil {
			return nil, err
		}
	}

	item.ID = 0
	item.OwnerID = ownerID
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemService) Update(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != userID {
		// Обновление доступно только владельцу вещи
		return nil, database.ErrNoAccess
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx, itemID)
	return item, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, itemID int64) error {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return err
	}
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != userID {
		return database.ErrNoAccess
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, itemID)
	return nil
}

// findLastApprovedStart — самое позднее начало подтвержденного
// бронирования до now; nil, если таких нет.
func findLastApprovedStart(bookings []*models.Booking, now time.Time) *time.Time {
	var last *time.Time
	for _, b := range bookings {
		if b.Status != models.StatusApproved || !b.Start.Before(now) {
			continue
		}
		if last == nil || b.Start.After(*last) {
			start := b.Start
			last = &start
		}
	}
	return last
}

// findNextApprovedStart — самое раннее начало подтвержденного
// бронирования после now; nil, если таких нет.
func findNextApprovedStart(bookings []*models.Booking, now time.Time) *time.Time {
	var next *time.Time
	for _, b := range bookings {
		if b.Status != models.StatusApproved || !b.Start.After(now) {
			continue
		}
		if next == nil || b.Start.Before(*next) {
			start := b.Start
			next = &start
		}
	}
	return next
}
