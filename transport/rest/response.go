package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type playerResponse struct {
	Symbol string      `json:"symbol"`
	User   userSummary `json:"user"`
}

type gameResponse struct {
	ID         int64            `json:"id"`
	Status     string           `json:"status"`
	BoardState string           `json:"board_state"`
	Result     *string          `json:"result"`
	CreatedAt  time.Time        `json:"created_at"`
	FinishedAt *time.Time       `json:"finished_at"`
	Winner     *userSummary     `json:"winner"`
	Players    []playerResponse `json:"players"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func newUserResponse(user *entity.User) userResponse {
	return userResponse{
		ID:       user.ID,
		Username: user.Username,
		IsActive: user.IsActive,
	}
}

func newGameResponse(game *entity.Game) gameResponse {
	response := gameResponse{
		ID:         game.ID,
		Status:     game.Status,
		BoardState: game.Board.String(),
		CreatedAt:  game.CreatedAt,
		FinishedAt: game.FinishedAt,
		Players:    make([]playerResponse, 0, len(game.Players)),
	}

	if game.Result != entity.ResultNone {
		result := game.Result
		response.Result = &result
	}

	if game.Winner != nil {
		response.Winner = &userSummary{ID: game.Winner.ID, Username: game.Winner.Username}
	}

	for _, player := range game.Players {
		response.Players = append(response.Players, playerResponse{
			Symbol: player.Symbol,
			User:   userSummary{ID: player.User.ID, Username: player.User.Username},
		})
	}

	return response
}

func newGameListResponse(games []*entity.Game) []gameResponse {
	responses := make([]gameResponse, 0, len(games))
	for _, game := range games {
		responses = append(responses, newGameResponse(game))
	}
	return responses
}

// writeError - maps the error taxonomy onto HTTP statuses: missing resources
// are 404, every domain rule violation is 409, auth failures are 401/403 and
// anything unexpected is a generic 500.
func writeError(ctx *gin.Context, logger *slog.Logger, err error) {
	switch {
	case apperror.IsNotFound(err):
		ctx.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case apperror.IsConflict(err):
		ctx.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	case apperror.IsUnauthorized(err):
		ctx.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	case apperror.IsForbidden(err):
		ctx.JSON(http.StatusForbidden, gin.H{"detail": err.Error()})
	default:
		logger.Error("request failed", "method", ctx.Request.Method, "path", ctx.FullPath(), "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
