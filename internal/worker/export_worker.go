package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"odolzhi/internal/domain"
	"odolzhi/internal/events"
	"odolzhi/internal/export"
	"odolzhi/internal/models"
)

// ExportWorker пересобирает xlsx-отчёт по бронированиям при изменениях.
// События приходят из шины; частые изменения схлопываются дебаунсом.
type ExportWorker struct {
	repo     domain.Repository
	dir      string
	retry    RetryPolicy
	trigger  chan struct{}
	debounce time.Duration
	logger   *zerolog.Logger
}

// NewExportWorker строит воркер с разумными умолчаниями.
func NewExportWorker(repo domain.Repository, dir string, retry RetryPolicy, logger *zerolog.Logger) *ExportWorker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = time.Minute
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}

	return &ExportWorker{
		repo:     repo,
		dir:      dir,
		retry:    retry,
		trigger:  make(chan struct{}, 1),
		debounce: models.DefaultExportDebounce * time.Second,
		logger:   logger,
	}
}

// SubscribeTo вешает воркер на события бронирований.
func (w *ExportWorker) SubscribeTo(bus *events.EventBus) {
	handler := func(*events.Event) error {
		w.Trigger()
		return nil
	}
	bus.Subscribe(events.EventBookingCreated, handler)
	bus.Subscribe(events.EventBookingApproved, handler)
	bus.Subscribe(events.EventBookingRejected, handler)
}

// Trigger помечает отчёт устаревшим. Не блокирует: канал ёмкостью 1.
func (w *ExportWorker) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Run крутит основной цикл до отмены контекста.
func (w *ExportWorker) Run(ctx context.Context) {
	w.logger.Info().Str("dir", w.dir).Msg("export worker: started")
	defer w.logger.Info().Msg("export worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.trigger:
		}

		// Дебаунс: ждём затишья, поглощая повторные сигналы.
		timer := time.NewTimer(w.debounce)
	drain:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-w.trigger:
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(w.debounce)
			case <-timer.C:
				break drain
			}
		}

		w.export(ctx)
	}
}

func (w *ExportWorker) export(ctx context.Context) {
	for attempt := 1; attempt <= w.retry.MaxRetries; attempt++ {
		path, err := w.exportOnce(ctx)
		if err == nil {
			w.logger.Info().Str("path", path).Msg("export worker: report written")
			return
		}

		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("export worker: report failed")
		if attempt == w.retry.MaxRetries {
			w.logger.Error().Err(err).Msg("export worker: giving up")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
}

func (w *ExportWorker) exportOnce(ctx context.Context) (string, error) {
	bookings, err := w.repo.GetAllBookings(ctx)
	if err != nil {
		return "", err
	}
	return export.WriteBookingsReport(w.dir, bookings)
}
