package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// In-memory stand-ins for the repository and cache dependencies.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*entity.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}}
}

func (that *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, existing := range that.users {
		if existing.Username == user.Username {
			return apperror.ErrUsernameTaken
		}
	}

	that.nextID++
	user.ID = that.nextID

	stored := *user
	that.users[user.ID] = &stored

	return nil
}

func (that *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	user, ok := that.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}

	clone := *user
	return &clone, nil
}

func (that *fakeUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for _, user := range that.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}

	return nil, apperror.ErrUserNotFound
}

func (that *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.users[user.ID]; !ok {
		return apperror.ErrUserNotFound
	}

	for id, existing := range that.users {
		if id != user.ID && existing.Username == user.Username {
			return apperror.ErrUsernameTaken
		}
	}

	stored := *user
	that.users[user.ID] = &stored

	return nil
}

type fakeStatsRepo struct {
	stats *entity.UserStats
	calls int
}

func (that *fakeStatsRepo) StatsByUser(context.Context, int64) (*entity.UserStats, error) {
	that.calls++
	clone := *that.stats
	return &clone, nil
}

type fakeStatsCache struct {
	entries     map[int64]*entity.UserStats
	invalidated []int64
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: map[int64]*entity.UserStats{}}
}

func (that *fakeStatsCache) Get(_ context.Context, userID int64) (*entity.UserStats, bool) {
	stats, ok := that.entries[userID]
	return stats, ok
}

func (that *fakeStatsCache) Set(_ context.Context, userID int64, stats *entity.UserStats) {
	that.entries[userID] = stats
}

func (that *fakeStatsCache) Invalidate(_ context.Context, userIDs ...int64) {
	that.invalidated = append(that.invalidated, userIDs...)
	for _, userID := range userIDs {
		delete(that.entries, userID)
	}
}

type fakeGameRepo struct {
	games  map[int64]*entity.Game
	nextID int64
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{games: map[int64]*entity.Game{}}
}

func (that *fakeGameRepo) Create(_ context.Context, game *entity.Game) (*entity.Game, error) {
	that.nextID++
	game.ID = that.nextID
	that.games[game.ID] = game
	return game, nil
}

func (that *fakeGameRepo) GetByID(_ context.Context, id int64) (*entity.Game, error) {
	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}
	return game, nil
}

func (that *fakeGameRepo) Mutate(ctx context.Context, id int64, apply func(*entity.Game) error) (*entity.Game, error) {
	game, err := that.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err = apply(game); err != nil {
		return nil, err
	}

	return game, nil
}

func (that *fakeGameRepo) ListPending(context.Context) ([]*entity.Game, error) {
	return that.byStatus(entity.StatusPending), nil
}

func (that *fakeGameRepo) ListCompleted(context.Context) ([]*entity.Game, error) {
	return that.byStatus(entity.StatusCompleted), nil
}

func (that *fakeGameRepo) ListCompletedByUser(_ context.Context, userID int64) ([]*entity.Game, error) {
	var games []*entity.Game
	for _, game := range that.byStatus(entity.StatusCompleted) {
		if game.PlayerByUserID(userID) != nil {
			games = append(games, game)
		}
	}
	return games, nil
}

func (that *fakeGameRepo) byStatus(status string) []*entity.Game {
	var games []*entity.Game
	for _, game := range that.games {
		if game.Status == status {
			games = append(games, game)
		}
	}
	return games
}

type fakeNotifier struct {
	notified []*entity.Game
}

func (that *fakeNotifier) NotifyGameUpdated(game *entity.Game) {
	that.notified = append(that.notified, game)
}
