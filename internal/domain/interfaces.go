package domain

import (
	"context"
	"time"

	"odolzhi/internal/models"
)

// Repository — контракт хранилища. Реализуется internal/database.
type Repository interface {
	// Бронирования
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
	GetBookingsByBooker(ctx context.Context, bookerID int64) ([]*models.Booking, error)
	GetBookingsByBookerAndStatus(ctx context.Context, bookerID int64, status string) ([]*models.Booking, error)
	GetBookingsByBookerCurrent(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByBookerPast(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByBookerFuture(ctx context.Context, bookerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64) ([]*models.Booking, error)
	GetBookingsByOwnerAndStatus(ctx context.Context, ownerID int64, status string) ([]*models.Booking, error)
	GetBookingsByOwnerCurrent(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByOwnerPast(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByOwnerFuture(ctx context.Context, ownerID int64, now time.Time) ([]*models.Booking, error)
	GetBookingsByItem(ctx context.Context, itemID int64) ([]*models.Booking, error)
	GetAllBookings(ctx context.Context) ([]*models.Booking, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)

	// Вещи
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string) ([]*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	DeleteItem(ctx context.Context, id int64) error
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error)

	// Пользователи
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error

	// Запросы на вещи
	CreateRequest(ctx context.Context, req *models.ItemRequest) error
	GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetAllRequests(ctx context.Context) ([]*models.ItemRequest, error)

	// Отзывы
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}

// ItemCache — сквозной кэш вещей поверх Repository.
type ItemCache interface {
	Get(ctx context.Context, itemID int64) (*models.Item, error)
	Set(ctx context.Context, item *models.Item) error
	Invalidate(ctx context.Context, itemID int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type BookingService interface {
	AddBooking(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	ChangeStatus(ctx context.Context, actorID, bookingID int64, approved bool) (*models.Booking, error)
	GetByID(ctx context.Context, requesterID, bookingID int64) (*models.Booking, error)
	GetByBooker(ctx context.Context, bookerID int64, state models.SelectionState) ([]*models.Booking, error)
	GetByOwner(ctx context.Context, ownerID int64, state models.SelectionState) ([]*models.Booking, error)
}

type ItemService interface {
	GetAll(ctx context.Context, ownerID int64) ([]*models.Item, error)
	Get(ctx context.Context, userID, itemID int64) (*models.ItemBookingDates, error)
	Search(ctx context.Context, userID int64, text string) ([]*models.Item, error)
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, userID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, userID, itemID int64) error
}

type UserService interface {
	GetAll(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, userID int64) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, userID int64, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, userID int64) error
}

type RequestService interface {
	Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error)
	GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error)
	GetAll(ctx context.Context) ([]*models.ItemRequest, error)
	GetByID(ctx context.Context, requestID int64) (*models.ItemRequest, error)
}

type CommentService interface {
	Create(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error)
	GetByItem(ctx context.Context, itemID int64) ([]*models.Comment, error)
}
