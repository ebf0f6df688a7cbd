package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const testSecret = "test-secret"

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Register_Success", func(t *testing.T) {
		// Given: an empty user repository
		userRepo := newFakeUserRepo()
		auth := NewAuthService(userRepo, testSecret, time.Hour)

		// When: a new user registers
		user, err := auth.Register(ctx, "alice", "password123")

		// Then: the user is active and the password stored only as a hash
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "password123", user.HashedPassword)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("password123")))
	})

	t.Run("Register_DuplicateUsername", func(t *testing.T) {
		// Given: a repository that already holds alice
		userRepo := newFakeUserRepo()
		auth := NewAuthService(userRepo, testSecret, time.Hour)

		_, err := auth.Register(ctx, "alice", "password123")
		require.NoError(t, err)

		// When: a second registration uses the same username
		_, err = auth.Register(ctx, "alice", "different456")

		// Then: it is rejected as taken
		require.ErrorIs(t, err, apperror.ErrUsernameTaken)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Login_Success", func(t *testing.T) {
		// Given: a registered user
		userRepo := newFakeUserRepo()
		auth := NewAuthService(userRepo, testSecret, time.Hour)

		user, err := auth.Register(ctx, "alice", "password123")
		require.NoError(t, err)

		// When: the user logs in with the right credentials
		token, err := auth.Login(ctx, "alice", "password123")

		// Then: the issued token resolves back to the user
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, err := auth.ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	})

	t.Run("Login_WrongPassword", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		auth := NewAuthService(userRepo, testSecret, time.Hour)

		_, err := auth.Register(ctx, "alice", "password123")
		require.NoError(t, err)

		// When: the password is wrong
		_, err = auth.Login(ctx, "alice", "nope")

		// Then: the failure does not say which part was wrong
		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("Login_UnknownUser", func(t *testing.T) {
		auth := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

		// When: the username does not exist
		_, err := auth.Login(ctx, "nobody", "password123")

		// Then: the same invalid credentials error is returned
		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})

	t.Run("Login_DeactivatedUser", func(t *testing.T) {
		// Given: a user whose account was deactivated
		userRepo := newFakeUserRepo()
		auth := NewAuthService(userRepo, testSecret, time.Hour)

		user, err := auth.Register(ctx, "alice", "password123")
		require.NoError(t, err)

		user.IsActive = false
		require.NoError(t, userRepo.Update(ctx, user))

		// When: the deactivated user tries to log in
		_, err = auth.Login(ctx, "alice", "password123")

		// Then: it fails like any bad credential
		require.ErrorIs(t, err, apperror.ErrInvalidCredentials)
	})
}

func TestAuthService_ParseToken(t *testing.T) {
	t.Run("ParseToken_WrongSecret", func(t *testing.T) {
		// Given: a token signed with a different secret
		issuer := NewAuthService(newFakeUserRepo(), "other-secret", time.Hour)
		auth := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

		token, err := issuer.GenerateToken(1)
		require.NoError(t, err)

		// When: the token is parsed against our secret
		_, err = auth.ParseToken(token)

		// Then: it is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidToken)
	})

	t.Run("ParseToken_Expired", func(t *testing.T) {
		// Given: a token that expired immediately
		auth := NewAuthService(newFakeUserRepo(), testSecret, -time.Minute)

		token, err := auth.GenerateToken(1)
		require.NoError(t, err)

		// When: the expired token is parsed
		_, err = auth.ParseToken(token)

		// Then: it is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidToken)
	})

	t.Run("ParseToken_Garbage", func(t *testing.T) {
		auth := NewAuthService(newFakeUserRepo(), testSecret, time.Hour)

		// When: the token is not a JWT at all
		_, err := auth.ParseToken("not-a-token")

		// Then: it is rejected
		require.ErrorIs(t, err, apperror.ErrInvalidToken)
	})
}
