package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/models"
)

// UserService is the user directory: lookups by email plus the few explicit
// mutations the auth flows need. There is deliberately no generic field-map
// update; every mutable field gets its own method so protected columns like
// role and password_hash cannot be mass-assigned.
type UserService struct {
	DB *gorm.DB
}

// FindByEmail returns (nil, nil) when no user carries the email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Exists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *UserService) Create(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Create(user).Error
}

func (s *UserService) MarkVerified(ctx context.Context, user *models.User) error {
	user.IsVerified = true
	return s.DB.WithContext(ctx).Model(user).Update("is_verified", true).Error
}

func (s *UserService) SetPasswordHash(ctx context.Context, user *models.User, passwordHash string) error {
	user.PasswordHash = passwordHash
	return s.DB.WithContext(ctx).Model(user).Update("password_hash", passwordHash).Error
}

func (s *UserService) DeleteByEmail(ctx context.Context, email string) error {
	return s.DB.WithContext(ctx).Where("email = ?", email).Delete(&models.User{}).Error
}
