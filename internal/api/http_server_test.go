package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odolzhi/internal/clock"
	"odolzhi/internal/config"
	"odolzhi/internal/database"
	"odolzhi/internal/events"
	"odolzhi/internal/logging"
	"odolzhi/internal/models"
	"odolzhi/internal/repository"
	"odolzhi/internal/service"
)

type testServer struct {
	ts    *httptest.Server
	db    *database.DB
	clock *clock.MockClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.db")
	logger := logging.Nop()
	db, err := database.NewDB(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewMockClock(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
	bus := events.NewEventBus()
	cache := repository.NewMemoryItemCache(time.Minute)

	services := Services{
		Bookings: service.NewBookingService(db, bus, clk, logger),
		Items:    service.NewItemService(db, cache, clk, logger),
		Users:    service.NewUserService(db, logger),
		Requests: service.NewRequestService(db, logger),
		Comments: service.NewCommentService(db, clk, logger),
	}

	cfg := config.APIConfig{Port: 0, RateLimit: config.APIRateLimitConfig{RPS: 1000, Burst: 1000}}
	server := NewHTTPServer(cfg, services, db, t.TempDir(), logger)

	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, db: db, clock: clk}
}

func (s *testServer) do(t *testing.T, method, path string, userID int64, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	require.NoError(t, err)
	if userID != 0 {
		req.Header.Set(headerUserID, fmt.Sprintf("%d", userID))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func (s *testServer) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email}
	require.NoError(t, s.db.CreateUser(context.Background(), user))
	return user
}

func (s *testServer) createItem(t *testing.T, ownerID int64, name string, available bool) *models.Item {
	t.Helper()
	item := &models.Item{OwnerID: ownerID, Name: name, Description: name + " description", Available: available}
	require.NoError(t, s.db.CreateItem(context.Background(), item))
	return item
}

func TestUsersEndpoints(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "ivan", "email": "ivan@example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var user models.User
	decodeInto(t, resp, &user)
	assert.NotZero(t, user.ID)

	// Повторный email — конфликт.
	resp = s.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "clone", "email": "ivan@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "ghost", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/users", 0, map[string]string{"email": "no-name@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/users/9999", 0, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", user.ID), 0, map[string]string{"name": "ivan the second"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.User
	decodeInto(t, resp, &updated)
	assert.Equal(t, "ivan the second", updated.Name)
	assert.Equal(t, "ivan@example.com", updated.Email)

	resp = s.do(t, http.MethodGet, "/users", 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []*models.User
	decodeInto(t, resp, &users)
	assert.Len(t, users, 1)

	resp = s.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", user.ID), 0, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestItemsEndpoints(t *testing.T) {
	s := newTestServer(t)
	owner := s.createUser(t, "owner", "owner@example.com")
	viewer := s.createUser(t, "viewer", "viewer@example.com")

	resp := s.do(t, http.MethodPost, "/items", owner.ID, map[string]any{
		"name": "дрель", "description": "ударная", "available": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var item models.Item
	decodeInto(t, resp, &item)
	require.NotZero(t, item.ID)

	// Без заголовка пользователя — ошибка данных запроса.
	resp = s.do(t, http.MethodPost, "/items", 0, map[string]any{"name": "x", "description": "y", "available": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "пила", "description": "острая"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "available обязателен")

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/items/%d", item.ID), viewer.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/items/search?text=дрель", viewer.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []*models.Item
	decodeInto(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, item.ID, found[0].ID)

	// Чужую вещь не обновить.
	resp = s.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), viewer.ID, map[string]any{"available": false})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", item.ID), owner.ID, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var patched models.Item
	decodeInto(t, resp, &patched)
	assert.False(t, patched.Available)

	resp = s.do(t, http.MethodGet, "/items", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, fmt.Sprintf("/items/%d", item.ID), owner.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestBookingEndpoints(t *testing.T) {
	s := newTestServer(t)
	now := s.clock.Now()

	owner := s.createUser(t, "owner", "owner@example.com")
	booker := s.createUser(t, "booker", "booker@example.com")
	stranger := s.createUser(t, "stranger", "stranger@example.com")
	item := s.createItem(t, owner.ID, "дрель", true)
	closed := s.createItem(t, owner.ID, "пила", false)

	body := map[string]any{
		"item_id": item.ID,
		"start":   now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":     now.Add(48 * time.Hour).Format(time.RFC3339),
	}

	resp := s.do(t, http.MethodPost, "/bookings", booker.ID, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var booking models.Booking
	decodeInto(t, resp, &booking)
	assert.Equal(t, models.StatusWaiting, booking.Status)

	// Владелец не бронирует свое.
	resp = s.do(t, http.MethodPost, "/bookings", owner.ID, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	body["item_id"] = closed.ID
	resp = s.do(t, http.MethodPost, "/bookings", booker.ID, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body["item_id"] = int64(9999)
	resp = s.do(t, http.MethodPost, "/bookings", booker.ID, body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Интервал в прошлом.
	resp = s.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"item_id": item.ID,
		"start":   now.Add(-24 * time.Hour).Format(time.RFC3339),
		"end":     now.Add(24 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Решение принимает только владелец.
	path := fmt.Sprintf("/bookings/%d?approved=true", booking.ID)
	resp = s.do(t, http.MethodPatch, path, booker.ID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(t, http.MethodPatch, path, owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.Booking
	decodeInto(t, resp, &approved)
	assert.Equal(t, models.StatusApproved, approved.Status)

	resp = s.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d", booking.ID), owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "без approved решения нет")

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), stranger.ID, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = s.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), booker.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = s.do(t, http.MethodGet, "/bookings/9999", booker.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBookingSelections(t *testing.T) {
	s := newTestServer(t)
	now := s.clock.Now()

	owner := s.createUser(t, "owner", "owner@example.com")
	booker := s.createUser(t, "booker", "booker@example.com")
	item := s.createItem(t, owner.ID, "дрель", true)

	resp := s.do(t, http.MethodPost, "/bookings", booker.ID, map[string]any{
		"item_id": item.ID,
		"start":   now.Add(24 * time.Hour).Format(time.RFC3339),
		"end":     now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/bookings?state=future", booker.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var bookings []*models.Booking
	decodeInto(t, resp, &bookings)
	assert.Len(t, bookings, 1)

	resp = s.do(t, http.MethodGet, "/bookings?state=past", booker.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookings = nil
	decodeInto(t, resp, &bookings)
	assert.Empty(t, bookings)

	resp = s.do(t, http.MethodGet, "/bookings/owner?state=waiting", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	bookings = nil
	decodeInto(t, resp, &bookings)
	assert.Len(t, bookings, 1)

	// Неизвестный фильтр — ошибка клиента, не пустой список.
	resp = s.do(t, http.MethodGet, "/bookings?state=nonsense", booker.ID, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/bookings?state=all", stranger(t, s).ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func stranger(t *testing.T, s *testServer) *models.User {
	t.Helper()
	return s.createUser(t, "stranger", "stranger@example.com")
}

func TestCommentEndpoints(t *testing.T) {
	s := newTestServer(t)
	now := s.clock.Now()
	ctx := context.Background()

	owner := s.createUser(t, "owner", "owner@example.com")
	booker := s.createUser(t, "booker", "booker@example.com")
	item := s.createItem(t, owner.ID, "дрель", true)

	// Без завершенного бронирования отзыв не принимается.
	resp := s.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "класс"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	finished := &models.Booking{
		BookerID: booker.ID,
		ItemID:   item.ID,
		Start:    now.Add(-48 * time.Hour),
		End:      now.Add(-24 * time.Hour),
		Status:   models.StatusWaiting,
	}
	require.NoError(t, s.db.CreateBooking(ctx, finished))
	require.NoError(t, s.db.UpdateBookingStatus(ctx, finished.ID, models.StatusApproved))

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "класс"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment models.Comment
	decodeInto(t, resp, &comment)
	assert.Equal(t, "booker", comment.AuthorName)

	resp = s.do(t, http.MethodPost, fmt.Sprintf("/items/%d/comment", item.ID), booker.ID, map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/items/%d/comments", item.ID), booker.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []*models.Comment
	decodeInto(t, resp, &comments)
	assert.Len(t, comments, 1)
}

func TestRequestEndpoints(t *testing.T) {
	s := newTestServer(t)

	requestor := s.createUser(t, "requestor", "requestor@example.com")
	owner := s.createUser(t, "owner", "owner@example.com")

	resp := s.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": "нужна дрель"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var req models.ItemRequest
	decodeInto(t, resp, &req)
	require.NotZero(t, req.ID)

	resp = s.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": " "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Вещь в ответ на запрос.
	resp = s.do(t, http.MethodPost, "/items", owner.ID, map[string]any{
		"name": "дрель", "description": "ударная", "available": true, "request_id": req.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/requests", requestor.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var own []*models.ItemRequest
	decodeInto(t, resp, &own)
	require.Len(t, own, 1)
	assert.Len(t, own[0].Items, 1)

	resp = s.do(t, http.MethodGet, "/requests/all", owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", req.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/requests/9999", owner.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndReport(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/reports/bookings.xlsx", 0, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "bookings.xlsx")
}

func TestRateLimit(t *testing.T) {
	s := newTestServerWithRate(t, 1, 2)

	statuses := make(map[int]int)
	for i := 0; i < 5; i++ {
		resp := s.do(t, http.MethodGet, "/healthz", 42, nil)
		statuses[resp.StatusCode]++
	}
	assert.NotZero(t, statuses[http.StatusTooManyRequests], "после burst запросы отбрасываются")
	assert.NotZero(t, statuses[http.StatusOK])
}

func newTestServerWithRate(t *testing.T, rps float64, burst int) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.db")
	logger := logging.Nop()
	db, err := database.NewDB(path, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clk := clock.NewMockClock(time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC))
	services := Services{
		Bookings: service.NewBookingService(db, nil, clk, logger),
		Items:    service.NewItemService(db, nil, clk, logger),
		Users:    service.NewUserService(db, logger),
		Requests: service.NewRequestService(db, logger),
		Comments: service.NewCommentService(db, clk, logger),
	}

	cfg := config.APIConfig{RateLimit: config.APIRateLimitConfig{RPS: rps, Burst: burst}}
	server := NewHTTPServer(cfg, services, db, "", logger)

	ts := httptest.NewServer(server.server.Handler)
	t.Cleanup(ts.Close)

	return &testServer{ts: ts, db: db, clock: clk}
}
