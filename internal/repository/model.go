package repository

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Database table models. Mapping between rows and entities lives entirely in
// this package; the entities never see a live database handle.

type userModel struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Username       string `gorm:"size:50;uniqueIndex;not null"`
	HashedPassword string `gorm:"not null"`
	IsActive       bool   `gorm:"not null;default:true"`
	CreatedAt      time.Time
}

func (userModel) TableName() string { return "users" }

type gameModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	Status     string `gorm:"size:20;not null;default:'pending'"`
	BoardState string `gorm:"size:9;not null"`
	Result     *string
	WinnerID   *int64
	Winner     *userModel `gorm:"foreignKey:WinnerID"`
	CreatedAt  time.Time
	FinishedAt *time.Time
	Players    []gamePlayerModel `gorm:"foreignKey:GameID"`
}

func (gameModel) TableName() string { return "games" }

type gamePlayerModel struct {
	UserID int64     `gorm:"primaryKey;autoIncrement:false"`
	GameID int64     `gorm:"primaryKey;autoIncrement:false"`
	Symbol string    `gorm:"size:1;not null"`
	User   userModel `gorm:"foreignKey:UserID"`
}

func (gamePlayerModel) TableName() string { return "game_players" }

// AutoMigrate - creates or updates the schema for all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &gameModel{}, &gamePlayerModel{}); err != nil {
		return fmt.Errorf("can't migrate schema: %w", err)
	}

	return nil
}

func (that *userModel) toEntity() *entity.User {
	return &entity.User{
		ID:             that.ID,
		Username:       that.Username,
		HashedPassword: that.HashedPassword,
		IsActive:       that.IsActive,
		CreatedAt:      that.CreatedAt,
	}
}

func userFromEntity(user *entity.User) *userModel {
	return &userModel{
		ID:             user.ID,
		Username:       user.Username,
		HashedPassword: user.HashedPassword,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
	}
}

func (that *gameModel) toEntity() (*entity.Game, error) {
	board, err := entity.ParseBoard(that.BoardState)
	if err != nil {
		return nil, fmt.Errorf("game %d: %w", that.ID, err)
	}

	game := &entity.Game{
		ID:         that.ID,
		Status:     that.Status,
		Board:      board,
		WinnerID:   that.WinnerID,
		CreatedAt:  that.CreatedAt,
		FinishedAt: that.FinishedAt,
	}

	if that.Result != nil {
		game.Result = *that.Result
	}

	if that.Winner != nil {
		game.Winner = that.Winner.toEntity()
	}

	for _, player := range that.Players {
		player := player
		game.Players = append(game.Players, &entity.GamePlayer{
			UserID: player.UserID,
			GameID: player.GameID,
			Symbol: player.Symbol,
			User:   player.User.toEntity(),
		})
	}

	// X seats before O, regardless of row order.
	sort.Slice(game.Players, func(i, j int) bool {
		return game.Players[i].Symbol > game.Players[j].Symbol
	})

	return game, nil
}

func (that *gameModel) applyEntity(game *entity.Game) {
	that.Status = game.Status
	that.BoardState = game.Board.String()
	that.WinnerID = game.WinnerID
	that.FinishedAt = game.FinishedAt

	if game.Result != entity.ResultNone {
		result := game.Result
		that.Result = &result
	}
}
