package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"odolzhi/internal/models"
)

func scanRequest(row interface{ Scan(...any) error }) (*models.ItemRequest, error) {
	req := &models.ItemRequest{}
	var createdStr string
	err := row.Scan(&req.ID, &req.RequestorID, &req.Description, &createdStr)
	if err != nil {
		return nil, err
	}
	if req.CreatedAt, err = parseTime(createdStr); err != nil {
		return nil, fmt.Errorf("failed to parse request created_at: %w", err)
	}
	return req, nil
}

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO item_requests (requestor_id, description, created_at) VALUES (?, ?, ?)`,
		req.RequestorID, req.Description, fmtTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	req.ID = id
	req.CreatedAt = now.UTC().Truncate(time.Second)
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query := `SELECT id, requestor_id, description, created_at FROM item_requests WHERE id = ?`
	req, err := scanRequest(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item request: %w", err)
	}
	return req, nil
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...any) ([]*models.ItemRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query item requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.ItemRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// GetRequestsByRequestor возвращает запросы пользователя, новые первыми.
func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	query := `SELECT id, requestor_id, description, created_at FROM item_requests
              WHERE requestor_id = ? ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query, requestorID)
}

func (db *DB) GetAllRequests(ctx context.Context) ([]*models.ItemRequest, error) {
	query := `SELECT id, requestor_id, description, created_at FROM item_requests
              ORDER BY created_at DESC, id DESC`
	return db.queryRequests(ctx, query)
}
