package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// newTestDB - an in-memory sqlite database migrated to the current schema.
// The pool is pinned to a single connection because :memory: databases are
// per-connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))

	return db
}

func createTestUser(t *testing.T, users UserRepository, username string) *entity.User {
	t.Helper()

	user := &entity.User{
		Username:       username,
		HashedPassword: "not-a-real-hash",
		IsActive:       true,
	}
	require.NoError(t, users.Create(context.Background(), user))

	return user
}

// playGame - creates a game between x and o and plays the given positions in
// order, alternating turns. Returns the final state.
func playGame(t *testing.T, games GameRepository, x, o *entity.User, positions []int, now time.Time) *entity.Game {
	t.Helper()

	ctx := context.Background()

	game, err := games.Create(ctx, entity.NewGame(x))
	require.NoError(t, err)

	game, err = games.Mutate(ctx, game.ID, func(game *entity.Game) error {
		return game.Join(o)
	})
	require.NoError(t, err)

	for _, position := range positions {
		position := position
		game, err = games.Mutate(ctx, game.ID, func(game *entity.Game) error {
			mover := game.PlayerBySymbol(game.Board.NextTurn())
			return game.ApplyMove(mover.UserID, position, now)
		})
		require.NoError(t, err)
	}

	return game
}
