package service

import (
	"context"

	"odolzhi/internal/domain"
	"odolzhi/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	repo   domain.Repository
	logger *zerolog.Logger
}

func NewRequestService(repo domain.Repository, logger *zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, logger: logger}
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	req := &models.ItemRequest{
		RequestorID: userID,
		Description: description,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// GetAllByUser возвращает запросы пользователя, новые первыми, каждый с
// вещами, созданными в ответ.
func (s *RequestService) GetAllByUser(ctx context.Context, userID int64) ([]*models.ItemRequest, error) {
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.repo.GetRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return []*models.ItemRequest{}, nil
	}

	ids := make([]int64, 0, len(requests))
	for _, req := range requests {
		ids = append(ids, req.ID)
	}
	items, err := s.repo.GetItemsByRequestIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]*models.Item)
	for _, item := range items {
		if item.RequestID == nil {
			continue
		}
		byRequest[*item.RequestID] = append(byRequest[*item.RequestID], item)
	}
	for _, req := range requests {
		req.Items = byRequest[req.ID]
	}
	return requests, nil
}

func (s *RequestService) GetAll(ctx context.Context) ([]*models.ItemRequest, error) {
	requests, err := s.repo.GetAllRequests(ctx)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	return requests, nil
}

func (s *RequestService) GetByID(ctx context.Context, requestID int64) (*models.ItemRequest, error) {
	req, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItemsByRequestIDs(ctx, []int64{requestID})
	if err != nil {
		return nil, err
	}
	req.Items = items
	return req, nil
}
