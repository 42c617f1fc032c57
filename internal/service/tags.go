package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/models"
)

type TagService struct {
	DB *gorm.DB
}

func (s *TagService) List(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// GetByID returns (nil, nil) when the tag does not exist.
func (s *TagService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tag, nil
}

// AddToBook attaches tags to a book, creating missing tags by name.
func (s *TagService) AddToBook(ctx context.Context, book *models.Book, names []string) error {
	db := s.DB.WithContext(ctx)
	for _, name := range names {
		var tag models.Tag
		if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			tag = models.Tag{Name: name}
			if err := db.Create(&tag).Error; err != nil {
				return err
			}
		}
		if err := db.Model(book).Association("Tags").Append(&tag); err != nil {
			return err
		}
	}
	return nil
}

func (s *TagService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Tag{}, "id = ?", id).Error
}
