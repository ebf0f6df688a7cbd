package websocket

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type userPayload struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type playerPayload struct {
	Symbol string      `json:"symbol"`
	User   userPayload `json:"user"`
}

type gamePayload struct {
	ID         int64           `json:"id"`
	Status     string          `json:"status"`
	BoardState string          `json:"board_state"`
	Result     *string         `json:"result"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at"`
	Winner     *userPayload    `json:"winner"`
	Players    []playerPayload `json:"players"`
}

type updateMessage struct {
	Type string      `json:"type"`
	Game gamePayload `json:"game"`
}

func newUpdateMessage(game *entity.Game) updateMessage {
	payload := gamePayload{
		ID:         game.ID,
		Status:     game.Status,
		BoardState: game.Board.String(),
		CreatedAt:  game.CreatedAt,
		FinishedAt: game.FinishedAt,
		Players:    make([]playerPayload, 0, len(game.Players)),
	}

	if game.Result != entity.ResultNone {
		result := game.Result
		payload.Result = &result
	}

	if game.Winner != nil {
		payload.Winner = &userPayload{ID: game.Winner.ID, Username: game.Winner.Username}
	}

	for _, player := range game.Players {
		payload.Players = append(payload.Players, playerPayload{
			Symbol: player.Symbol,
			User:   userPayload{ID: player.User.ID, Username: player.User.Username},
		})
	}

	return updateMessage{
		Type: "game_updated",
		Game: payload,
	}
}
