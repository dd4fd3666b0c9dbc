package models

import (
	"fmt"
	"strings"
)

const (
	StatusWaiting  = "waiting"
	StatusApproved = "approved"
	StatusRejected = "rejected"
	// StatusCanceled зарезервирован: ни один переход его не создает.
	StatusCanceled = "canceled"
)

// SelectionState — фильтр выборки бронирований, не хранится в базе.
type SelectionState string

const (
	SelectionAll      SelectionState = "all"
	SelectionCurrent  SelectionState = "current"
	SelectionPast     SelectionState = "past"
	SelectionFuture   SelectionState = "future"
	SelectionWaiting  SelectionState = "waiting"
	SelectionRejected SelectionState = "rejected"
)

// ParseSelectionState разбирает строку фильтра без учета регистра.
// Пустая строка трактуется как "all".
func ParseSelectionState(s string) (SelectionState, error) {
	switch SelectionState(strings.ToLower(strings.TrimSpace(s))) {
	case "", SelectionAll:
		return SelectionAll, nil
	case SelectionCurrent:
		return SelectionCurrent, nil
	case SelectionPast:
		return SelectionPast, nil
	case SelectionFuture:
		return SelectionFuture, nil
	case SelectionWaiting:
		return SelectionWaiting, nil
	case SelectionRejected:
		return SelectionRejected, nil
	default:
		return "", fmt.Errorf("unknown selection state: %s", s)
	}
}

const (
	// DefaultExportDebounce минимальный интервал между перегенерациями отчета
	DefaultExportDebounce = 30 // секунд

	// DefaultRateLimitRPS значение по умолчанию для ограничения частоты запросов
	DefaultRateLimitRPS = 10

	// DefaultRateLimitBurst разрешенный всплеск запросов
	DefaultRateLimitBurst = 20

	// ItemCacheTTL время жизни кэша вещей
	ItemCacheTTL = 10 * 60 // 10 минут в секундах
)
