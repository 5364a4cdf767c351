package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Steeve208/ReeskCapital-web-sub006/internal/accrual"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/config"
	httpserver "github.com/Steeve208/ReeskCapital-web-sub006/internal/http"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/http/handlers"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/http/middleware"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/password"
	redisstore "github.com/Steeve208/ReeskCapital-web-sub006/internal/redis"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/repository"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/service"
	"github.com/Steeve208/ReeskCapital-web-sub006/internal/ws"
	"github.com/Steeve208/ReeskCapital-web-sub006/libs/db"
	libredis "github.com/Steeve208/ReeskCapital-web-sub006/libs/redis"
)

// App wires mining-service dependencies.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := db.NewPostgres(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	profileRepo := repository.NewProfileRepository(sqlDB)
	sessionRepo := repository.NewSessionRepository(sqlDB)
	eventRepo := repository.NewEventRepository(sqlDB)
	activeStore := redisstore.NewStore(redisClient, cfg.ActiveSessionTTL())

	feed := ws.NewFeed(logger)

	calc := accrual.Calculator{
		RatePerSec: cfg.Mining.RatePerSec,
		Timeout:    cfg.SessionTimeout(),
	}

	tokenService := service.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	authService := service.NewAuthService(profileRepo, password.NewBcryptHasher(0), tokenService, logger)
	miningService := service.NewMiningService(
		profileRepo,
		sessionRepo,
		eventRepo,
		activeStore,
		feed,
		calc,
		cfg.Mining.MaxConcurrent,
		logger,
	)

	miningHandler := handlers.NewMiningHandler(miningService, logger)

	routes := httpserver.Routes{
		Signup:         handlers.NewSignupHandler(authService, logger),
		Login:          handlers.NewLoginHandler(authService, logger),
		StartMining:    miningHandler.HandleStartMining,
		Heartbeat:      miningHandler.HandleHeartbeat,
		StopMining:     miningHandler.HandleStopMining,
		SessionsMe:     handlers.NewSessionsMeHandler(miningService),
		ActiveSessions: handlers.NewActiveSessionsHandler(miningService),
		ProfileMe:      handlers.NewProfileMeHandler(miningService),
		LiveFeed:       feed.Handler(),
		Health:         handlers.NewHealthHandler(),
	}

	router := httpserver.NewRouter(routes, middleware.Auth(tokenService))
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
