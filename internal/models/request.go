package models

import "time"

// ItemRequest — запрос на вещь, которой ни у кого нет в списке.
// Items заполняется вещами, созданными в ответ на запрос.
type ItemRequest struct {
	ID          int64     `json:"id"`
	RequestorID int64     `json:"requestor_id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Items       []*Item   `json:"items,omitempty"`
}
