package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type authService interface {
	Register(ctx context.Context, username, password string) (*entity.User, error)
	Login(ctx context.Context, username, password string) (string, error)
	ParseToken(token string) (int64, error)
}

type gameService interface {
	CreateGame(ctx context.Context, userID int64) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, userID int64) (*entity.Game, error)
	MakeMove(ctx context.Context, gameID, userID int64, position int) (*entity.Game, error)
	GetGameByID(ctx context.Context, gameID int64) (*entity.Game, error)
	GetPendingGames(ctx context.Context) ([]*entity.Game, error)
	GetCompletedGames(ctx context.Context) ([]*entity.Game, error)
	GetUserHistory(ctx context.Context, userID int64) ([]*entity.Game, error)
}

type userService interface {
	GetUserByID(ctx context.Context, userID int64) (*entity.User, error)
	GetUserStats(ctx context.Context, userID int64) (*entity.UserStats, error)
	UpdateUsername(ctx context.Context, userID int64, newUsername string) (*entity.User, error)
	UpdatePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
	DeactivateUser(ctx context.Context, userID int64) error
}

type Handlers struct {
	logger *slog.Logger

	auth  authService
	games gameService
	users userService
}

func NewHandlers(logger *slog.Logger, auth authService, games gameService, users userService) *Handlers {
	return &Handlers{
		logger: logger.With("component", "rest"),

		auth:  auth,
		games: games,
		users: users,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}

type moveRequest struct {
	Position *int `json:"position" binding:"required"`
}

type updateUsernameRequest struct {
	NewUsername string `json:"new_username" binding:"required,min=3,max=50"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

// Register - POST /api/auth/register
func (that *Handlers) Register(ctx *gin.Context) {
	var request credentialsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := that.auth.Register(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, newUserResponse(user))
}

// Login - POST /api/auth/login
func (that *Handlers) Login(ctx *gin.Context) {
	var request credentialsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	token, err := that.auth.Login(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// CreateGame - POST /api/games
func (that *Handlers) CreateGame(ctx *gin.Context) {
	game, err := that.games.CreateGame(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, newGameResponse(game))
}

// JoinGame - POST /api/games/:id/join
func (that *Handlers) JoinGame(ctx *gin.Context) {
	gameID, ok := that.gameID(ctx)
	if !ok {
		return
	}

	game, err := that.games.JoinGame(ctx.Request.Context(), gameID, currentUserID(ctx))
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameResponse(game))
}

// MakeMove - POST /api/games/:id/move
func (that *Handlers) MakeMove(ctx *gin.Context) {
	gameID, ok := that.gameID(ctx)
	if !ok {
		return
	}

	var request moveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	game, err := that.games.MakeMove(ctx.Request.Context(), gameID, currentUserID(ctx), *request.Position)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameResponse(game))
}

// GetGame - GET /api/games/:id - the polling endpoint.
func (that *Handlers) GetGame(ctx *gin.Context) {
	gameID, ok := that.gameID(ctx)
	if !ok {
		return
	}

	game, err := that.games.GetGameByID(ctx.Request.Context(), gameID)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameResponse(game))
}

// ListPendingGames - GET /api/games - games waiting for a second player.
func (that *Handlers) ListPendingGames(ctx *gin.Context) {
	games, err := that.games.GetPendingGames(ctx.Request.Context())
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameListResponse(games))
}

// ListCompletedGames - GET /api/games/completed
func (that *Handlers) ListCompletedGames(ctx *gin.Context) {
	games, err := that.games.GetCompletedGames(ctx.Request.Context())
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameListResponse(games))
}

// GetMe - GET /api/user/me
func (that *Handlers) GetMe(ctx *gin.Context) {
	user, err := that.users.GetUserByID(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newUserResponse(user))
}

// GetMyGames - GET /api/user/me/games - completed games of the current user.
func (that *Handlers) GetMyGames(ctx *gin.Context) {
	games, err := that.games.GetUserHistory(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newGameListResponse(games))
}

// GetMyStats - GET /api/user/me/stats
func (that *Handlers) GetMyStats(ctx *gin.Context) {
	stats, err := that.users.GetUserStats(ctx.Request.Context(), currentUserID(ctx))
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// UpdateMyUsername - PATCH /api/user/me/username
func (that *Handlers) UpdateMyUsername(ctx *gin.Context) {
	var request updateUsernameRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	user, err := that.users.UpdateUsername(ctx.Request.Context(), currentUserID(ctx), request.NewUsername)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateMyPassword - PATCH /api/user/me/password
func (that *Handlers) UpdateMyPassword(ctx *gin.Context) {
	var request updatePasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	err := that.users.UpdatePassword(ctx.Request.Context(), currentUserID(ctx), request.CurrentPassword, request.NewPassword)
	if err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"detail": "password updated"})
}

// DeleteMe - DELETE /api/user/me - soft delete.
func (that *Handlers) DeleteMe(ctx *gin.Context) {
	if err := that.users.DeactivateUser(ctx.Request.Context(), currentUserID(ctx)); err != nil {
		writeError(ctx, that.logger, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (that *Handlers) gameID(ctx *gin.Context) (int64, bool) {
	gameID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"detail": apperror.ErrGameNotFound.Error()})
		return 0, false
	}
	return gameID, true
}
