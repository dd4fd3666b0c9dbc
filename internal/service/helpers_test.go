package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"odolzhi/internal/clock"
	"odolzhi/internal/database"
	"odolzhi/internal/events"
	"odolzhi/internal/logging"
	"odolzhi/internal/models"
	"odolzhi/internal/repository"
)

// testEnv собирает сервисы поверх настоящей sqlite-базы с подменным временем.
type testEnv struct {
	db       *database.DB
	clock    *clock.MockClock
	bus      *events.EventBus
	bookings *BookingService
	items    *ItemService
	users    *UserService
	requests *RequestService
	comments *CommentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	path := filepath.Join(t.TempDir(), "service.db")
	logger := logging.Nop()
	db, err := database.NewDB(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewMockClock(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
	bus := events.NewEventBus()
	cache := repository.NewMemoryItemCache(time.Minute)

	return &testEnv{
		db:       db,
		clock:    clk,
		bus:      bus,
		bookings: NewBookingService(db, bus, clk, logger),
		items:    NewItemService(db, cache, clk, logger),
		users:    NewUserService(db, logger),
		requests: NewRequestService(db, logger),
		comments: NewCommentService(db, clk, logger),
	}
}

func (e *testEnv) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, e.db.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createItem(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{OwnerID: ownerID, Name: name, Description: name + " description", Available: available}
	require.NoError(t, e.db.CreateItem(context.Background(), item))
	return item
}

// createBooking пишет бронирование напрямую в базу, минуя проверки сервиса,
// чтобы расставлять интервалы в прошлом.
func (e *testEnv) createBooking(t *testing.T, bookerID, itemID int64, start, end time.Time, status string) *models.Booking {
	t.Helper()
	b := &models.Booking{
		BookerID: bookerID,
		ItemID:   itemID,
		Start:    start.UTC().Truncate(time.Second),
		End:      end.UTC().Truncate(time.Second),
		Status:   models.StatusWaiting,
	}
	require.NoError(t, e.db.CreateBooking(context.Background(), b))
	if status != models.StatusWaiting {
		require.NoError(t, e.db.UpdateBookingStatus(context.Background(), b.ID, status))
		b.Status = status
	}
	return b
}

// eventCounter подписывается на тип события и считает доставки.
func (e *testEnv) eventCounter(eventType string) *int {
	count := new(int)
	e.bus.Subscribe(eventType, func(*events.Event) error {
		*count++
		return nil
	})
	return count
}
