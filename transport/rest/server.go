package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	logger *slog.Logger
	engine *gin.Engine
}

// New - builds the gin engine with the middleware chain and the full route
// table. The websocket subscription handler is mounted alongside the game
// routes so it shares the auth middleware.
func New(logger *slog.Logger, corsOrigins []string, handlers *Handlers, subscribeGame gin.HandlerFunc) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery(), Metrics())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/ping", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "pong")
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)

	authorized := api.Group("", AuthRequired(handlers.auth))

	games := authorized.Group("/games")
	games.POST("", handlers.CreateGame)
	games.GET("", handlers.ListPendingGames)
	games.GET("/completed", handlers.ListCompletedGames)
	games.GET("/:id", handlers.GetGame)
	games.POST("/:id/join", handlers.JoinGame)
	games.POST("/:id/move", handlers.MakeMove)
	if subscribeGame != nil {
		games.GET("/:id/ws", subscribeGame)
	}

	user := authorized.Group("/user")
	user.GET("/me", handlers.GetMe)
	user.GET("/me/games", handlers.GetMyGames)
	user.GET("/me/stats", handlers.GetMyStats)
	user.PATCH("/me/username", handlers.UpdateMyUsername)
	user.PATCH("/me/password", handlers.UpdateMyPassword)
	user.DELETE("/me", handlers.DeleteMe)

	return &Server{
		logger: logger.With("component", "rest_server"),
		engine: engine,
	}
}

// Router - the underlying handler, exposed for tests.
func (that *Server) Router() http.Handler {
	return that.engine
}

// Start - serves until the context is canceled, then shuts down gracefully.
// Only the header read is bounded by a timeout: game subscriptions hold
// their connections open indefinitely.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	that.logger.Info("server stopped")

	return nil
}
