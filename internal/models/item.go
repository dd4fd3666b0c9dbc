package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	RequestID   *int64    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemBookingDates дополняет вещь датами последнего и следующего
// подтвержденного бронирования (видны только владельцу).
type ItemBookingDates struct {
	Item
	LastBooking *time.Time `json:"last_booking,omitempty"`
	NextBooking *time.Time `json:"next_booking,omitempty"`
}

// ItemPatch описывает частичное обновление вещи. nil-поля не меняются.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}
