package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-arena/internal/config"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
	"github.com/rocketscienceinc/tictactoe-arena/transport/rest"
	"github.com/rocketscienceinc/tictactoe-arena/transport/websocket"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	db, err := storage.NewPostgres(conf.Postgres.GetDSN())
	if err != nil {
		return fmt.Errorf("could not connect to postgres: %w", err)
	}

	if err = repository.AutoMigrate(db); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	redisClient, err := storage.NewRedis(ctx, conf.Redis.GetRedisAddr())
	if err != nil {
		return fmt.Errorf("could not connect to redis: %w", err)
	}

	defer func() {
		if err = redisClient.Close(); err != nil {
			log.Error("could not close redis client", "error", err)
		}
	}()

	userRepo := repository.NewUserRepository(db)
	gameRepo := repository.NewGameRepository(db)

	statsCache := service.NewStatsCache(logger, redisClient, conf.Stats.CacheTTL)

	hub := websocket.NewHub(logger)

	authService := service.NewAuthService(userRepo, conf.JWT.SecretKey, conf.JWT.TokenTTL)
	gameService := service.NewGameService(logger, gameRepo, userRepo, statsCache, hub)
	userService := service.NewUserService(logger, userRepo, gameRepo, statsCache)

	wsHandler := websocket.NewHandler(logger, hub, gameService)

	handlers := rest.NewHandlers(logger, authService, gameService, userService)
	server := rest.New(logger, conf.CORSOrigins, handlers, wsHandler.Subscribe)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := server.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
