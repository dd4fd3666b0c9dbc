package service

import (
	"context"

	"odolzhi/internal/clock"
	"odolzhi/internal/database"
	"odolzhi/internal/domain"
	"odolzhi/internal/models"

	"github.com/rs/zerolog"
)

type CommentService struct {
	repo   domain.Repository
	clock  clock.Clock
	logger *zerolog.Logger
}

func NewCommentService(repo domain.Repository, clk clock.Clock, logger *zerolog.Logger) *CommentService {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	return &CommentService{repo: repo, clock: clk, logger: logger}
}

// Create принимает отзыв только от пользователя с завершенным
// подтвержденным бронированием этой вещи.
func (s *CommentService) Create(ctx context.Context, userID, itemID int64, text string) (*models.Comment, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}

	finished, err := s.repo.HasFinishedBooking(ctx, userID, itemID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !finished {
		return nil, database.ErrNoFinishedBooking
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   userID,
		AuthorName: user.Name,
		Text:       text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) GetByItem(ctx context.Context, itemID int64) ([]*models.Comment, error) {
	if _, err := s.repo.GetItemByID(ctx, itemID); err != nil {
		return nil, err
	}

	comments, err := s.repo.GetCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}
