package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type UserService interface {
	GetUserByID(ctx context.Context, userID int64) (*entity.User, error)
	GetUserStats(ctx context.Context, userID int64) (*entity.UserStats, error)

	UpdateUsername(ctx context.Context, userID int64, newUsername string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	DeactivateUser(ctx context.Context, userID int64) error
}

type userRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
}

type userStatsRepo interface {
	StatsByUser(ctx context.Context, userID int64) (*entity.UserStats, error)
}

type statsCache interface {
	Get(ctx context.Context, userID int64) (*entity.UserStats, bool)
	Set(ctx context.Context, userID int64, stats *entity.UserStats)
}

type userService struct {
	logger *slog.Logger

	userRepo  userRepo
	statsRepo userStatsRepo
	cache     statsCache
}

func NewUserService(logger *slog.Logger, userRepo userRepo, statsRepo userStatsRepo, cache statsCache) UserService {
	return &userService{
		logger: logger.With("component", "user_service"),

		userRepo:  userRepo,
		statsRepo: statsRepo,
		cache:     cache,
	}
}

func (that *userService) GetUserByID(ctx context.Context, userID int64) (*entity.User, error) {
	user, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (that *userService) GetUserStats(ctx context.Context, userID int64) (*entity.UserStats, error) {
	if that.cache != nil {
		if stats, ok := that.cache.Get(ctx, userID); ok {
			return stats, nil
		}
	}

	stats, err := that.statsRepo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get user stats: %w", err)
	}

	if that.cache != nil {
		that.cache.Set(ctx, userID, stats)
	}

	return stats, nil
}

// UpdateUsername - the new name must be unique and differ from the current one.
func (that *userService) UpdateUsername(ctx context.Context, userID int64, newUsername string) (*entity.User, error) {
	user, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.Username == newUsername {
		return nil, apperror.ErrSameUsername
	}

	user.Username = newUsername
	if err = that.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	that.logger.Info("username updated", "user_id", userID)

	return user, nil
}

// UpdatePassword - requires confirmation of the current password; a wrong
// confirmation is forbidden rather than a conflict.
func (that *userService) UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(currentPassword)) != nil {
		return apperror.ErrWrongPassword
	}

	if currentPassword == newPassword {
		return apperror.ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.HashedPassword = string(hash)
	if err = that.userRepo.Update(ctx, user); err != nil {
		return err
	}

	that.logger.Info("password updated", "user_id", userID)

	return nil
}

// DeactivateUser - users are never hard-deleted: the account is marked
// inactive and the username anonymized, so finished games keep their
// references.
func (that *userService) DeactivateUser(ctx context.Context, userID int64) error {
	user, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	user.IsActive = false
	user.Username = fmt.Sprintf("deleted_user_%d", userID)

	if err = that.userRepo.Update(ctx, user); err != nil {
		return err
	}

	that.logger.Info("user deactivated", "user_id", userID)

	return nil
}
