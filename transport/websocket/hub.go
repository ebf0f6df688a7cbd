package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

// Hub - keeps track of subscribers per game and fans out aggregate updates.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[int64]map[*Client]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "ws_hub"),
		rooms:  make(map[int64]map[*Client]struct{}),
	}
}

func (that *Hub) register(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[client.gameID]
	if !ok {
		room = make(map[*Client]struct{})
		that.rooms[client.gameID] = room
	}
	room[client] = struct{}{}

	that.logger.Debug("client subscribed", "client_id", client.id, "game_id", client.gameID)
}

func (that *Hub) unregister(client *Client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[client.gameID]
	if !ok {
		return
	}

	if _, ok = room[client]; !ok {
		return
	}

	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(that.rooms, client.gameID)
	}

	that.logger.Debug("client unsubscribed", "client_id", client.id, "game_id", client.gameID)
}

// NotifyGameUpdated - sends the serialized aggregate to every subscriber of
// the game. Slow clients are dropped instead of blocking the broadcast.
func (that *Hub) NotifyGameUpdated(game *entity.Game) {
	message, err := json.Marshal(newUpdateMessage(game))
	if err != nil {
		that.logger.Error("could not marshal game update", "game_id", game.ID, "error", err)
		return
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[game.ID]
	if !ok {
		return
	}

	for client := range room {
		select {
		case client.send <- message:
		default:
			delete(room, client)
			close(client.send)
		}
	}
}
