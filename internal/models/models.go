package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"     json:"uid"`
	Username     string    `gorm:"not null"                 json:"username"`
	Email        string    `gorm:"uniqueIndex;not null"     json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `gorm:"not null;default:user"    json:"role"`
	IsVerified   bool      `gorm:"not null;default:false"   json:"is_verified"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Book struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"  json:"uid"`
	Title         string    `gorm:"not null"              json:"title"`
	Author        string    `gorm:"not null"              json:"author"`
	Publisher     string    `json:"publisher"`
	PublishedDate string    `json:"published_date"`
	PageCount     int       `json:"page_count"`
	Language      string    `json:"language"`
	UserID        uuid.UUID `gorm:"type:uuid;index"       json:"user_uid"`
	Tags          []Tag     `gorm:"many2many:book_tags"   json:"tags,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"  json:"uid"`
	Rating     int       `gorm:"not null"              json:"rating"`
	ReviewText string    `gorm:"not null"              json:"review_text"`
	UserID     uuid.UUID `gorm:"type:uuid;index"       json:"user_uid"`
	BookID     uuid.UUID `gorm:"type:uuid;index"       json:"book_uid"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"uid"`
	Name      string    `gorm:"uniqueIndex;not null"  json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
