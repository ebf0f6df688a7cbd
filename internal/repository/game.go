package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type GameRepository interface {
	Create(ctx context.Context, game *entity.Game) (*entity.Game, error)
	GetByID(ctx context.Context, id int64) (*entity.Game, error)
	Mutate(ctx context.Context, id int64, apply func(*entity.Game) error) (*entity.Game, error)

	ListPending(ctx context.Context) ([]*entity.Game, error)
	ListCompleted(ctx context.Context) ([]*entity.Game, error)
	ListCompletedByUser(ctx context.Context, userID int64) ([]*entity.Game, error)

	StatsByUser(ctx context.Context, userID int64) (*entity.UserStats, error)
}

type dbGame struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) GameRepository {
	return &dbGame{
		db: db,
	}
}

func (that *dbGame) Create(ctx context.Context, game *entity.Game) (*entity.Game, error) {
	var createdID int64

	err := that.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := &gameModel{}
		model.applyEntity(game)

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("can't save game: %w", err)
		}

		for _, player := range game.Players {
			row := &gamePlayerModel{
				UserID: player.UserID,
				GameID: model.ID,
				Symbol: player.Symbol,
			}
			if err := tx.Create(row).Error; err != nil {
				return fmt.Errorf("can't save game player: %w", err)
			}
		}

		createdID = model.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return that.GetByID(ctx, createdID)
}

func (that *dbGame) GetByID(ctx context.Context, id int64) (*entity.Game, error) {
	return that.getByID(that.db.WithContext(ctx), id)
}

func (that *dbGame) getByID(tx *gorm.DB, id int64) (*entity.Game, error) {
	var model gameModel

	err := tx.Preload("Players.User").Preload("Winner").First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find game: %w", err)
	}

	return model.toEntity()
}

// Mutate - loads the game aggregate inside a transaction, runs apply against
// the in-memory entity and persists the outcome atomically. On postgres the
// game row is locked for the duration of the transaction, so concurrent moves
// against the same game are serialized and a half-applied move is never
// visible. Rule violations from apply roll the transaction back untouched.
func (that *dbGame) Mutate(ctx context.Context, id int64, apply func(*entity.Game) error) (*entity.Game, error) {
	var result *entity.Game

	err := that.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Preload("Players.User").Preload("Winner")
		if tx.Dialector.Name() == "postgres" { // sqlite has no FOR UPDATE
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var model gameModel
		err := query.First(&model, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.ErrGameNotFound
		}
		if err != nil {
			return fmt.Errorf("can't find game: %w", err)
		}

		game, err := model.toEntity()
		if err != nil {
			return err
		}

		knownPlayers := len(game.Players)

		if err = apply(game); err != nil {
			return err
		}

		updates := map[string]any{
			"status":      game.Status,
			"board_state": game.Board.String(),
			"winner_id":   game.WinnerID,
			"finished_at": game.FinishedAt,
		}
		if game.Result != entity.ResultNone {
			updates["result"] = game.Result
		}

		if err = tx.Model(&gameModel{ID: id}).Updates(updates).Error; err != nil {
			return fmt.Errorf("can't update game: %w", err)
		}

		for _, player := range game.Players[knownPlayers:] {
			row := &gamePlayerModel{
				UserID: player.UserID,
				GameID: id,
				Symbol: player.Symbol,
			}
			if err = tx.Create(row).Error; err != nil {
				return fmt.Errorf("can't save game player: %w", err)
			}
		}

		result, err = that.getByID(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (that *dbGame) ListPending(ctx context.Context) ([]*entity.Game, error) {
	var models []gameModel

	err := that.db.WithContext(ctx).
		Preload("Players.User").
		Where("status = ?", entity.StatusPending).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("can't list pending games: %w", err)
	}

	return toEntities(models)
}

func (that *dbGame) ListCompleted(ctx context.Context) ([]*entity.Game, error) {
	var models []gameModel

	err := that.db.WithContext(ctx).
		Preload("Players.User").
		Preload("Winner").
		Where("status = ?", entity.StatusCompleted).
		Order("finished_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("can't list completed games: %w", err)
	}

	return toEntities(models)
}

func (that *dbGame) ListCompletedByUser(ctx context.Context, userID int64) ([]*entity.Game, error) {
	var models []gameModel

	err := that.db.WithContext(ctx).
		Preload("Players.User").
		Preload("Winner").
		Joins("JOIN game_players ON game_players.game_id = games.id").
		Where("game_players.user_id = ? AND games.status = ?", userID, entity.StatusCompleted).
		Order("games.finished_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("can't list games of user: %w", err)
	}

	return toEntities(models)
}

// StatsByUser - counts a user's completed games. Losses are completed games
// with a winner who is someone else; draws are counted apart, so the total
// always equals wins + losses + draws.
func (that *dbGame) StatsByUser(ctx context.Context, userID int64) (*entity.UserStats, error) {
	stats := &entity.UserStats{}

	counts := []struct {
		target    *int64
		condition string
		args      []any
	}{
		{&stats.Wins, "games.winner_id = ?", []any{userID}},
		{&stats.Losses, "games.winner_id IS NOT NULL AND games.winner_id <> ?", []any{userID}},
		{&stats.Draws, "games.result = ?", []any{entity.ResultDraw}},
	}

	for _, count := range counts {
		err := that.completedByUser(ctx, userID).
			Where(count.condition, count.args...).
			Count(count.target).Error
		if err != nil {
			return nil, fmt.Errorf("can't count games: %w", err)
		}
	}

	stats.TotalGames = stats.Wins + stats.Losses + stats.Draws

	return stats, nil
}

func (that *dbGame) completedByUser(ctx context.Context, userID int64) *gorm.DB {
	return that.db.WithContext(ctx).
		Model(&gameModel{}).
		Joins("JOIN game_players ON game_players.game_id = games.id").
		Where("game_players.user_id = ? AND games.status = ?", userID, entity.StatusCompleted)
}

func toEntities(models []gameModel) ([]*entity.Game, error) {
	games := make([]*entity.Game, 0, len(models))
	for i := range models {
		game, err := models[i].toEntity()
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, nil
}
