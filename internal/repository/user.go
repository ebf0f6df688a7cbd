package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type dbUser struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &dbUser{
		db: db,
	}
}

func (that *dbUser) Create(ctx context.Context, user *entity.User) error {
	model := userFromEntity(user)

	err := that.db.WithContext(ctx).Create(model).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("can't save user: %w", err)
	}

	user.ID = model.ID
	user.CreatedAt = model.CreatedAt

	return nil
}

func (that *dbUser) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var model userModel

	err := that.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return model.toEntity(), nil
}

func (that *dbUser) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var model userModel

	err := that.db.WithContext(ctx).Where("username = ?", username).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return model.toEntity(), nil
}

func (that *dbUser) Update(ctx context.Context, user *entity.User) error {
	updates := map[string]any{
		"username":        user.Username,
		"hashed_password": user.HashedPassword,
		"is_active":       user.IsActive,
	}

	err := that.db.WithContext(ctx).Model(&userModel{ID: user.ID}).Updates(updates).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("can't update user: %w", err)
	}

	return nil
}
