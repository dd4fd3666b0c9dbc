package service

import (
	"context"
	"time"

	"odolzhi/internal/clock"
	"odolzhi/internal/database"
	"odolzhi/internal/domain"
	"odolzhi/internal/events"
	"odolzhi/internal/metrics"
	"odolzhi/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.Repository
	eventBus domain.EventPublisher
	clock    clock.Clock
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.Repository, eventBus domain.EventPublisher, clk clock.Clock, logger *zerolog.Logger) *BookingService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		clock:    clk,
		logger:   logger,
	}
}

// ValidatePeriod проверяет интервал бронирования: конец строго позже
// начала, начало не в прошлом.
func (s *BookingService) ValidatePeriod(start, end time.Time) error {
	if !end.After(start) {
		return database.ErrInvalidPeriod
	}
	if start.Before(s.clock.Now()) {
		return database.ErrInvalidPeriod
	}
	return nil
}

func (s *BookingService) AddBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	booker, err := s.repo.GetUserByID(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == bookerID {
		// Владелец не может бронировать собственную вещь
		return nil, database.ErrNoAccess
	}
	if !item.Available {
		return nil, database.ErrNotAvailable
	}
	if err := s.ValidatePeriod(start, end); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		BookerID:   bookerID,
		BookerName: booker.Name,
		ItemID:     itemID,
		ItemName:   item.Name,
		Start:      start.UTC().Truncate(time.Second),
		End:        end.UTC().Truncate(time.Second),
		Status:     models.StatusWaiting,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, booking)

	return booking, nil
}

func (s *BookingService) ChangeStatus(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// Владение вещью разрешается заново при каждом вызове
	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, database.ErrNoAccess
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approved {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	// Повторный вызов молча перезаписывает прошлое решение.
	if err := s.repo.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecision(status)
	s.publishEvent(eventType, booking)

	return booking, nil
}

func (s *BookingService) GetByID(ctx context.Context, requesterID, bookingID int64) (*models.Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.GetItemByID(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID != requesterID && item.OwnerID != requesterID {
		return nil, database.ErrNoAccess
	}
	return booking, nil
}

func (s *BookingService) GetByBooker(ctx context.Context, bookerID int64, state models.SelectionState) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, bookerID); err != nil {
		return nil, err
	}
	return SelectBookings(ctx, s.repo, ByBooker, state, bookerID, s.clock.Now())
}

func (s *BookingService) GetByOwner(ctx context.Context, ownerID int64, state models.SelectionState) ([]*models.Booking, error) {
	if _, err := s.repo.GetUserByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return SelectBookings(ctx, s.repo, ByOwner, state, ownerID, s.clock.Now())
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		BookerID:  booking.BookerID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}
