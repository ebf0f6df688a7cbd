package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)
	Login(ctx context.Context, username, password string) (string, error)

	GenerateToken(userID int64) (string, error)
	ParseToken(token string) (int64, error)
}

type authUserRepo interface {
	Create(ctx context.Context, user *entity.User) error
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

type authService struct {
	userRepo  authUserRepo
	secretKey []byte
	tokenTTL  time.Duration
}

func NewAuthService(userRepo authUserRepo, secretKey string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

func (that *authService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Username:       username,
		HashedPassword: string(hash),
		IsActive:       true,
	}

	if err = that.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("could not register user: %w", err)
	}

	return user, nil
}

// Login - verifies the credentials and issues an access token. A deactivated
// account fails the same way as unknown credentials.
func (that *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := that.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, apperror.ErrUserNotFound) {
		return "", apperror.ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("could not get user: %w", err)
	}

	if !user.IsActive {
		return "", apperror.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", apperror.ErrInvalidCredentials
	}

	return that.GenerateToken(user.ID)
}

func (that *authService) GenerateToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(that.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *authService) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return that.secretKey, nil
	})
	if err != nil || !token.Valid {
		return 0, apperror.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, apperror.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, apperror.ErrInvalidToken
	}

	return userID, nil
}
