package entity

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"

	ResultXWins = "x_wins"
	ResultOWins = "o_wins"
	ResultDraw  = "draw"
	ResultNone  = ""

	maxPlayers = 2
)

// GamePlayer - links a user to a game with the mark assigned on entry.
// The first player is always X, the second always O.
type GamePlayer struct {
	UserID int64  `json:"-"`
	GameID int64  `json:"-"`
	Symbol string `json:"symbol"`
	User   *User  `json:"user"`
}

// Game - one game session together with its players. The struct is a plain
// in-memory aggregate; persistence mapping lives in the repository.
type Game struct {
	ID         int64
	Status     string
	Board      Board
	Result     string
	WinnerID   *int64
	Winner     *User
	CreatedAt  time.Time
	FinishedAt *time.Time
	Players    []*GamePlayer
}

// NewGame - a pending game with the creator seated as X and an empty board.
func NewGame(creator *User) *Game {
	return &Game{
		Status: StatusPending,
		Board:  NewBoard(),
		Players: []*GamePlayer{{
			UserID: creator.ID,
			Symbol: MarkX,
			User:   creator,
		}},
	}
}

func (that *Game) IsPending() bool {
	return that.Status == StatusPending
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsCompleted() bool {
	return that.Status == StatusCompleted
}

// PlayerByUserID - returns the seat of the given user, if any.
func (that *Game) PlayerByUserID(userID int64) *GamePlayer {
	for _, player := range that.Players {
		if player.UserID == userID {
			return player
		}
	}
	return nil
}

// PlayerBySymbol - returns the seat holding the given mark, if any.
func (that *Game) PlayerBySymbol(symbol string) *GamePlayer {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player
		}
	}
	return nil
}

// Join - seats user as the O player and starts the game. This is the only
// transition from pending to in_progress.
func (that *Game) Join(user *User) error {
	if !that.IsPending() {
		return apperror.ErrGameNotJoinable
	}

	if len(that.Players) >= maxPlayers {
		return apperror.ErrGameFull
	}

	if that.PlayerByUserID(user.ID) != nil {
		return apperror.ErrAlreadyInGame
	}

	that.Players = append(that.Players, &GamePlayer{
		UserID: user.ID,
		GameID: that.ID,
		Symbol: MarkO,
		User:   user,
	})
	that.Status = StatusInProgress

	return nil
}

// ApplyMove - validates and applies a single move for the given user.
// The checks run in a fixed order so the first violated rule determines
// the error. On a terminal move the game completes exactly once.
func (that *Game) ApplyMove(userID int64, position int, now time.Time) error {
	if !that.IsInProgress() {
		return apperror.ErrGameNotActive
	}

	if position < 0 || position >= BoardCells {
		return apperror.ErrInvalidPosition
	}

	player := that.PlayerByUserID(userID)
	if player == nil {
		return apperror.ErrNotInGame
	}

	if player.Symbol != that.Board.NextTurn() {
		return apperror.ErrNotYourTurn
	}

	if that.Board[position] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that.Board[position] = player.Symbol
	that.settle(now)

	return nil
}

// settle - moves the game to its terminal state when the board has a
// winner or no empty cells remain.
func (that *Game) settle(now time.Time) {
	switch winner := that.Board.Winner(); winner {
	case MarkX:
		that.complete(ResultXWins, that.PlayerBySymbol(MarkX), now)
	case MarkO:
		that.complete(ResultOWins, that.PlayerBySymbol(MarkO), now)
	default:
		if that.Board.IsFull() {
			that.complete(ResultDraw, nil, now)
		}
	}
}

func (that *Game) complete(result string, winner *GamePlayer, now time.Time) {
	that.Status = StatusCompleted
	that.Result = result
	that.FinishedAt = &now

	if winner != nil {
		winnerID := winner.UserID
		that.WinnerID = &winnerID
		that.Winner = winner.User
	}
}
