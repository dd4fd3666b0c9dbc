package database

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrItemNotFound    = errors.New("item not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrRequestNotFound = errors.New("item request not found")

	// ErrNoAccess — у инициатора нет нужной связи с объектом
	// (не владелец, не автор бронирования).
	ErrNoAccess = errors.New("no access")

	// ErrNotAvailable — вещь закрыта для бронирования.
	ErrNotAvailable = errors.New("item is not available")

	// ErrInvalidPeriod — интервал бронирования нарушает временные правила.
	ErrInvalidPeriod = errors.New("invalid booking period")

	// ErrNoFinishedBooking — отзыв без завершенного бронирования.
	ErrNoFinishedBooking = errors.New("no finished booking for this item")

	// ErrEmailTaken — email уже занят другим пользователем.
	ErrEmailTaken = errors.New("email is already taken")
)
