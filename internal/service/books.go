package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/models"
)

type BookService struct {
	DB *gorm.DB
}

// BookPatch names the fields a book update may touch.
type BookPatch struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

func (s *BookService) List(ctx context.Context, offset, limit int) (int64, []models.Book, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&models.Book{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var items []models.Book
	if err := s.DB.WithContext(ctx).Preload("Tags").
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (s *BookService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Book, error) {
	var items []models.Book
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByID returns (nil, nil) when the book does not exist.
func (s *BookService) GetByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := s.DB.WithContext(ctx).Preload("Tags").Where("id = ?", id).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (s *BookService) Create(ctx context.Context, book *models.Book) error {
	return s.DB.WithContext(ctx).Create(book).Error
}

func (s *BookService) Update(ctx context.Context, book *models.Book, patch BookPatch) error {
	book.Title = patch.Title
	book.Author = patch.Author
	book.Publisher = patch.Publisher
	book.PublishedDate = patch.PublishedDate
	book.PageCount = patch.PageCount
	book.Language = patch.Language
	return s.DB.WithContext(ctx).Save(book).Error
}

func (s *BookService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Delete(&models.Book{}, "id = ?", id).Error
}
