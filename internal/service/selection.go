package service

import (
	"context"
	"time"

	"odolzhi/internal/domain"
	"odolzhi/internal/models"
)

// Perspective определяет, с чьей стороны смотрим на бронирования:
// автора бронирования или владельца вещи.
type Perspective int

const (
	ByBooker Perspective = iota
	ByOwner
)

type selectionQuery func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error)

// selectionTable сопоставляет (перспектива, фильтр) одному запросу к
// хранилищу. Каждому фильтру соответствует ровно один запрос, порядок
// всегда по start_date по возрастанию.
var selectionTable = map[Perspective]map[models.SelectionState]selectionQuery{
	ByBooker: {
		models.SelectionAll: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBooker(ctx, userID)
		},
		models.SelectionWaiting: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBookerAndStatus(ctx, userID, models.StatusWaiting)
		},
		models.SelectionRejected: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBookerAndStatus(ctx, userID, models.StatusRejected)
		},
		models.SelectionCurrent: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBookerCurrent(ctx, userID, now)
		},
		models.SelectionPast: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBookerPast(ctx, userID, now)
		},
		models.SelectionFuture: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByBookerFuture(ctx, userID, now)
		},
	},
	ByOwner: {
		models.SelectionAll: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwner(ctx, userID)
		},
		models.SelectionWaiting: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwnerAndStatus(ctx, userID, models.StatusWaiting)
		},
		models.SelectionRejected: func(ctx context.Context, repo domain.Repository, userID int64, _ time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwnerAndStatus(ctx, userID, models.StatusRejected)
		},
		models.SelectionCurrent: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwnerCurrent(ctx, userID, now)
		},
		models.SelectionPast: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwnerPast(ctx, userID, now)
		},
		models.SelectionFuture: func(ctx context.Context, repo domain.Repository, userID int64, now time.Time) ([]*models.Booking, error) {
			return repo.GetBookingsByOwnerFuture(ctx, userID, now)
		},
	},
}

// SelectBookings возвращает бронирования пользователя под фильтром.
// Неизвестный фильтр дает пустой список, не ошибку; nil не возвращается.
func SelectBookings(ctx context.Context, repo domain.Repository, p Perspective, state models.SelectionState, userID int64, now time.Time) ([]*models.Booking, error) {
	byState, ok := selectionTable[p]
	if !ok {
		return []*models.Booking{}, nil
	}
	query, ok := byState[state]
	if !ok {
		return []*models.Booking{}, nil
	}

	bookings, err := query(ctx, repo, userID, now)
	if err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	return bookings, nil
}
