package repository

import (
	"context"

	"gorm.io/gorm"

	"conftix/internal/model"
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// EmailTaken reports whether email belongs to a user other than excludeID.
	EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error)
	// UpdateFields applies a column/value map in a single UPDATE. Nil values
	// write NULL, which is how demographic fields are cleared on opt-out.
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	// AllocateSnakeColour sets badge_snake_colour only when it is still NULL,
	// so concurrent first reads cannot re-roll an already assigned colour.
	AllocateSnakeColour(ctx context.Context, id uint, colour string) error
	// AllocateSnakeExtras sets badge_snake_extras only when it is still NULL.
	AllocateSnakeExtras(ctx context.Context, id uint, extras string) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *userRepository) AllocateSnakeColour(ctx context.Context, id uint, colour string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND badge_snake_colour IS NULL", id).
		Update("badge_snake_colour", colour).Error
}

func (r *userRepository) AllocateSnakeExtras(ctx context.Context, id uint, extras string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND badge_snake_extras IS NULL", id).
		Update("badge_snake_extras", extras).Error
}
