package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type gameGetter interface {
	GetGameByID(ctx context.Context, gameID int64) (*entity.Game, error)
}

// Handler - upgrades game subscription requests and seeds every new client
// with the current aggregate state.
type Handler struct {
	logger   *slog.Logger
	hub      *Hub
	games    gameGetter
	upgrader websocket.Upgrader
}

func NewHandler(logger *slog.Logger, hub *Hub, games gameGetter) *Handler {
	return &Handler{
		logger: logger.With("component", "ws_handler"),
		hub:    hub,
		games:  games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
	}
}

// Subscribe - GET /api/games/:id/ws
func (that *Handler) Subscribe(ctx *gin.Context) {
	gameID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": apperror.ErrGameNotFound.Error()})
		return
	}

	game, err := that.games.GetGameByID(ctx.Request.Context(), gameID)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": apperror.ErrGameNotFound.Error()})
		return
	}

	conn, err := that.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		that.logger.Error("could not upgrade connection", "game_id", gameID, "error", err)
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}

	that.hub.register(client)

	go client.writePump()
	go client.readPump(that.hub)

	// initial snapshot so subscribers don't wait for the next move
	that.hub.NotifyGameUpdated(game)
}
