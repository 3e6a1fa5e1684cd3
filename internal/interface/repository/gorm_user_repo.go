package repository

import (
	"context"
	"errors"
	"time"

	"farewatch-service/internal/domain/entity"
	"farewatch-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormUserRepository implements the UserRepository interface
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) repository.UserRepository {
	return &GormUserRepository{
		db: db,
	}
}

// Users GORM model for database mapping
type Users struct {
	ID        string  `gorm:"column:id;primaryKey"`
	Email     string  `gorm:"column:email;uniqueIndex;not null"`
	Phone     *string `gorm:"column:phone"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Users) TableName() string {
	return "users"
}

// Create inserts a new user
func (r *GormUserRepository) Create(ctx context.Context, user *entity.User) error {
	row := Users{
		ID:    user.ID,
		Email: user.Email,
	}
	if user.Phone != "" {
		row.Phone = &user.Phone
	}

	result := r.db.WithContext(ctx).Create(&row)
	if result.Error != nil {
		return result.Error
	}

	user.CreatedAt = row.CreatedAt
	user.UpdatedAt = row.UpdatedAt
	return nil
}

// FindByID finds a user by primary id
func (r *GormUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var row Users
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if result.Error != nil {
		return nil, mapNotFound(result.Error)
	}
	return toUserEntity(&row), nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var row Users
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&row)
	if result.Error != nil {
		return nil, mapNotFound(result.Error)
	}
	return toUserEntity(&row), nil
}

func toUserEntity(row *Users) *entity.User {
	user := &entity.User{
		ID:        row.ID,
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if row.Phone != nil {
		user.Phone = *row.Phone
	}
	return user
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}
