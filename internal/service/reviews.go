package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/models"
)

type ReviewService struct {
	DB *gorm.DB
}

func (s *ReviewService) Create(ctx context.Context, review *models.Review) error {
	return s.DB.WithContext(ctx).Create(review).Error
}

func (s *ReviewService) ListByBook(ctx context.Context, bookID uuid.UUID) ([]models.Review, error) {
	var items []models.Review
	if err := s.DB.WithContext(ctx).Where("book_id = ?", bookID).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns (nil, nil) when the review does not exist.
func (s *ReviewService) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&review).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Review{}, "id = ?", id).Error
}
