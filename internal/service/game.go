package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type GameService interface {
	CreateGame(ctx context.Context, userID int64) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, userID int64) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, userID int64, position int) (*entity.Game, error)

	GetGameByID(ctx context.Context, gameID int64) (*entity.Game, error)
	GetPendingGames(ctx context.Context) ([]*entity.Game, error)
	GetCompletedGames(ctx context.Context) ([]*entity.Game, error)
	GetUserHistory(ctx context.Context, userID int64) ([]*entity.Game, error)
}

type gameRepo interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	Mutate(ctx context.Context, id int64, apply func(*entity.Game) error) (*entity.Game, error)
	ListPending(ctx context.Context) ([]*entity.Game, error)
	ListCompleted(ctx context.Context) ([]*entity.Game, error)
	ListCompletedByUser(ctx context.Context, userID int64) ([]*entity.Game, error)
}

type gameUserRepo interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
}

type statsInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...int64)
}

// GameNotifier - receives the refreshed aggregate after every successful
// state change, e.g. to fan it out to websocket subscribers.
type GameNotifier interface {
	NotifyGameUpdated(game *entity.Game)
}

type gameService struct {
	logger *slog.Logger

	gameRepo gameRepo
	userRepo gameUserRepo
	stats    statsInvalidator
	notifier GameNotifier
}

func NewGameService(logger *slog.Logger, gameRepo gameRepo, userRepo gameUserRepo, stats statsInvalidator, notifier GameNotifier) GameService {
	return &gameService{
		logger:   logger.With("component", "game_service"),

		gameRepo: gameRepo,
		userRepo: userRepo,
		stats:    stats,
		notifier: notifier,
	}
}

func (that *gameService) CreateGame(ctx context.Context, userID int64) (*entity.Game, error) {
	creator, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get creator: %w", err)
	}

	game, err := that.gameRepo.Create(ctx, entity.NewGame(creator))
	if err != nil {
		return nil, fmt.Errorf("could not create game: %w", err)
	}

	that.logger.Info("game created", "game_id", game.ID, "user_id", userID)

	return game, nil
}

func (that *gameService) JoinGame(ctx context.Context, gameID, userID int64) (*entity.Game, error) {
	joiner, err := that.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get joining user: %w", err)
	}

	game, err := that.gameRepo.Mutate(ctx, gameID, func(game *entity.Game) error {
		return game.Join(joiner)
	})
	if err != nil {
		return nil, err
	}

	that.logger.Info("player joined", "game_id", gameID, "user_id", userID)
	that.afterChange(ctx, game)

	return game, nil
}

func (that *gameService) MakeMove(ctx context.Context, gameID, userID int64, position int) (*entity.Game, error) {
	game, err := that.gameRepo.Mutate(ctx, gameID, func(game *entity.Game) error {
		return game.ApplyMove(userID, position, time.Now().UTC())
	})
	if err != nil {
		return nil, err
	}

	if game.IsCompleted() {
		that.logger.Info("game completed", "game_id", gameID, "result", game.Result)
	}
	that.afterChange(ctx, game)

	return game, nil
}

// afterChange - post-commit side effects; the mutation itself already
// succeeded, so failures here are logged, not surfaced.
func (that *gameService) afterChange(ctx context.Context, game *entity.Game) {
	if game.IsCompleted() && that.stats != nil {
		userIDs := make([]int64, 0, len(game.Players))
		for _, player := range game.Players {
			userIDs = append(userIDs, player.UserID)
		}
		that.stats.Invalidate(ctx, userIDs...)
	}

	if that.notifier != nil {
		that.notifier.NotifyGameUpdated(game)
	}
}

func (that *gameService) GetGameByID(ctx context.Context, gameID int64) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game, nil
}

func (that *gameService) GetPendingGames(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list pending games: %w", err)
	}
	return games, nil
}

func (that *gameService) GetCompletedGames(ctx context.Context) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListCompleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list completed games: %w", err)
	}
	return games, nil
}

func (that *gameService) GetUserHistory(ctx context.Context, userID int64) ([]*entity.Game, error) {
	games, err := that.gameRepo.ListCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not list games of user: %w", err)
	}
	return games, nil
}
