// @title                       Dashboard Auth API
// @version                     1.0
// @description                 Role-based authentication and account administration for the dashboard.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tablero/dashboard-auth/internal/api"
	"github.com/tablero/dashboard-auth/internal/api/handler"
	"github.com/tablero/dashboard-auth/internal/core/service"
	mongodb "github.com/tablero/dashboard-auth/internal/infrastructure/db/mongo"
	"github.com/tablero/dashboard-auth/internal/infrastructure/db/postgres"
	redisdb "github.com/tablero/dashboard-auth/internal/infrastructure/db/redis"
	"github.com/tablero/dashboard-auth/internal/infrastructure/queue"
	"github.com/tablero/dashboard-auth/internal/pkg/config"
	"github.com/tablero/dashboard-auth/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "dashboard-auth",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	mongoClient, mongoDB, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "dashboard-auth",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongo")
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	auditRepo := mongodb.NewAuditRepository(mongoDB)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("audit indexes")
	}
	auditService := service.NewAuditService(auditRepo, logger.Component("audit"))
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditService, logger.Component("audit-queue"))
	dispatcher.Start(ctx)

	userRepo := postgres.NewUserRepository(pool)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(userRepo, hasher, logger.Component("auth"))
	userService := service.NewUserService(userRepo, hasher, logger.Component("users"))

	if cfg.Admin.Username != "" {
		created, err := userService.Bootstrap(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			log.Fatal().Err(err).Msg("bootstrap admin")
		}
		if created {
			log.Info().Str("username", cfg.Admin.Username).Msg("bootstrap admin created")
		}
	}

	e := api.NewRouter(api.RouterDeps{
		Log:          logger.Component("http"),
		Auth:         authService,
		Users:        userService,
		AuditService: auditService,
		Audit:        dispatcher,
		Sessions:     redisdb.NewSessionStore(rdb, cfg.Auth.SessionTTL),
		Tokens:       service.NewTokenIssuer(cfg.JWTSecret, cfg.Auth.TokenTTL),
		CookieName:   cfg.Auth.SessionCookie,
		SecureCookie: cfg.Env != "development",
		LoginPath:    cfg.Auth.LoginPath,
		LandingPath:  cfg.Auth.LandingPath,
		Checks: []handler.DependencyCheck{
			handler.PostgresCheck(pool),
			handler.MongoCheck(mongoDB),
			handler.RedisCheck(rdb),
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
		os.Exit(1)
	}
}
