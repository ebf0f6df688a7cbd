package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

var (
	xWinsSequence = []int{0, 3, 1, 4, 2}
	drawSequence  = []int{0, 1, 2, 4, 3, 5, 7, 6, 8}
)

func TestGameRepository_Create(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)

	alice := createTestUser(t, users, "alice")

	// When: a new game is created
	game, err := games.Create(ctx, entity.NewGame(alice))

	// Then: it is pending with an empty board and the creator seated as X
	require.NoError(t, err)
	assert.NotZero(t, game.ID)
	assert.Equal(t, entity.StatusPending, game.Status)
	assert.Equal(t, "_________", game.Board.String())
	require.Len(t, game.Players, 1)
	assert.Equal(t, entity.MarkX, game.Players[0].Symbol)
	assert.Equal(t, "alice", game.Players[0].User.Username)
	assert.Nil(t, game.Winner)
}

func TestGameRepository_Mutate(t *testing.T) {
	t.Run("Mutate_Join", func(t *testing.T) {
		ctx := context.Background()
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")

		game, err := games.Create(ctx, entity.NewGame(alice))
		require.NoError(t, err)

		// When: bob joins the pending game
		game, err = games.Mutate(ctx, game.ID, func(game *entity.Game) error {
			return game.Join(bob)
		})

		// Then: the game starts with both seats taken, X before O
		require.NoError(t, err)
		assert.Equal(t, entity.StatusInProgress, game.Status)
		require.Len(t, game.Players, 2)
		assert.Equal(t, "alice", game.Players[0].User.Username)
		assert.Equal(t, entity.MarkX, game.Players[0].Symbol)
		assert.Equal(t, "bob", game.Players[1].User.Username)
		assert.Equal(t, entity.MarkO, game.Players[1].Symbol)
	})

	t.Run("Mutate_RuleViolationRollsBack", func(t *testing.T) {
		ctx := context.Background()
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")

		game, err := games.Create(ctx, entity.NewGame(alice))
		require.NoError(t, err)

		// When: a move is attempted on a game that has not started
		_, err = games.Mutate(ctx, game.ID, func(game *entity.Game) error {
			return game.ApplyMove(alice.ID, 0, time.Now().UTC())
		})

		// Then: the rule error surfaces and the stored game is untouched
		require.ErrorIs(t, err, apperror.ErrGameNotActive)

		stored, err := games.GetByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPending, stored.Status)
		assert.Equal(t, "_________", stored.Board.String())
	})

	t.Run("Mutate_NotFound", func(t *testing.T) {
		ctx := context.Background()
		games := NewGameRepository(newTestDB(t))

		// When: mutating a game that does not exist
		_, err := games.Mutate(ctx, 9999, func(*entity.Game) error { return nil })

		// Then: ErrGameNotFound is returned
		require.ErrorIs(t, err, apperror.ErrGameNotFound)
	})

	t.Run("Mutate_PlayToWin", func(t *testing.T) {
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")

		now := time.Now().UTC()

		// When: X completes the top row
		game := playGame(t, games, alice, bob, xWinsSequence, now)

		// Then: the persisted game is completed with alice as the winner
		assert.Equal(t, entity.StatusCompleted, game.Status)
		assert.Equal(t, entity.ResultXWins, game.Result)
		require.NotNil(t, game.WinnerID)
		assert.Equal(t, alice.ID, *game.WinnerID)
		require.NotNil(t, game.Winner)
		assert.Equal(t, "alice", game.Winner.Username)
		require.NotNil(t, game.FinishedAt)
		assert.WithinDuration(t, now, *game.FinishedAt, time.Second)
	})

	t.Run("Mutate_PlayToDraw", func(t *testing.T) {
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")

		// When: the board fills without a winning line
		game := playGame(t, games, alice, bob, drawSequence, time.Now().UTC())

		// Then: the game is a draw with no winner recorded
		assert.Equal(t, entity.StatusCompleted, game.Status)
		assert.Equal(t, entity.ResultDraw, game.Result)
		assert.Nil(t, game.WinnerID)
		assert.Nil(t, game.Winner)
		require.NotNil(t, game.FinishedAt)
	})
}

func TestGameRepository_Lists(t *testing.T) {
	t.Run("ListPending", func(t *testing.T) {
		ctx := context.Background()
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")
		carol := createTestUser(t, users, "carol")

		// Given: two open games and one finished one
		first, err := games.Create(ctx, entity.NewGame(alice))
		require.NoError(t, err)
		second, err := games.Create(ctx, entity.NewGame(bob))
		require.NoError(t, err)
		playGame(t, games, carol, bob, xWinsSequence, time.Now().UTC())

		// When: the pending games are listed
		pending, err := games.ListPending(ctx)

		// Then: only the open games come back, newest first
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, second.ID, pending[0].ID)
		assert.Equal(t, first.ID, pending[1].ID)
	})

	t.Run("ListCompleted", func(t *testing.T) {
		ctx := context.Background()
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")

		now := time.Now().UTC()

		// Given: two completed games, the second finished later
		older := playGame(t, games, alice, bob, xWinsSequence, now.Add(-time.Hour))
		newer := playGame(t, games, bob, alice, drawSequence, now)

		// When: the completed games are listed
		completed, err := games.ListCompleted(ctx)

		// Then: the most recently finished game is first
		require.NoError(t, err)
		require.Len(t, completed, 2)
		assert.Equal(t, newer.ID, completed[0].ID)
		assert.Equal(t, older.ID, completed[1].ID)
	})

	t.Run("ListCompletedByUser", func(t *testing.T) {
		ctx := context.Background()
		db := newTestDB(t)
		users := NewUserRepository(db)
		games := NewGameRepository(db)

		alice := createTestUser(t, users, "alice")
		bob := createTestUser(t, users, "bob")
		carol := createTestUser(t, users, "carol")

		now := time.Now().UTC()

		// Given: alice finished two games, bob and carol another without her
		aliceWin := playGame(t, games, alice, bob, xWinsSequence, now.Add(-time.Hour))
		aliceDraw := playGame(t, games, carol, alice, drawSequence, now)
		playGame(t, games, bob, carol, xWinsSequence, now)

		// When: alice's history is listed
		history, err := games.ListCompletedByUser(ctx, alice.ID)

		// Then: only her games come back, most recent first
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, aliceDraw.ID, history[0].ID)
		assert.Equal(t, aliceWin.ID, history[1].ID)
	})
}

func TestGameRepository_StatsByUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	games := NewGameRepository(db)

	alice := createTestUser(t, users, "alice")
	bob := createTestUser(t, users, "bob")

	now := time.Now().UTC()

	// Given: alice beat bob once, drew once, and has an open game
	playGame(t, games, alice, bob, xWinsSequence, now)
	playGame(t, games, alice, bob, drawSequence, now)
	_, err := games.Create(ctx, entity.NewGame(alice))
	require.NoError(t, err)

	// When: stats are computed for both players
	aliceStats, err := games.StatsByUser(ctx, alice.ID)
	require.NoError(t, err)
	bobStats, err := games.StatsByUser(ctx, bob.ID)
	require.NoError(t, err)

	// Then: pending games are excluded and the counters add up
	assert.Equal(t, &entity.UserStats{TotalGames: 2, Wins: 1, Losses: 0, Draws: 1}, aliceStats)
	assert.Equal(t, &entity.UserStats{TotalGames: 2, Wins: 0, Losses: 1, Draws: 1}, bobStats)

	assert.Equal(t, aliceStats.TotalGames, aliceStats.Wins+aliceStats.Losses+aliceStats.Draws)
	assert.Equal(t, bobStats.TotalGames, bobStats.Wins+bobStats.Losses+bobStats.Draws)
}
