package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/backoffice/admin-system/internal/app"
	"github.com/backoffice/admin-system/internal/audit"
	audithttp "github.com/backoffice/admin-system/internal/audit/http"
	"github.com/backoffice/admin-system/internal/auth"
	"github.com/backoffice/admin-system/internal/menus"
	"github.com/backoffice/admin-system/internal/observability"
	"github.com/backoffice/admin-system/internal/permissions"
	"github.com/backoffice/admin-system/internal/platform/cache"
	"github.com/backoffice/admin-system/internal/platform/db"
	"github.com/backoffice/admin-system/internal/platform/httpx"
	"github.com/backoffice/admin-system/internal/rbac"
	"github.com/backoffice/admin-system/internal/roles"
	"github.com/backoffice/admin-system/internal/shared"
	"github.com/backoffice/admin-system/internal/users"
	"github.com/backoffice/admin-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	shared.DefaultPerPage = cfg.PaginationPerPage

	dbpool, err := db.New(ctx, cfg.PoolOptions())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	validator := httpx.NewValidator()

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger, OnDeny: metrics.ObserveDenied}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL, cfg.JWTRefreshTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}
	authService := auth.NewService(auth.NewRepository(dbpool), tokens, auth.NewRevocationList(redisClient), rbacService)
	authHandler := auth.NewHandler(logger, authService, validator)
	authMiddleware := auth.NewMiddleware(authService, logger)

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(dbpool)), validator, rbacMiddleware)
	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(dbpool)), validator, rbacMiddleware)
	permissionsHandler := permissions.NewHandler(logger, permissions.NewService(permissions.NewRepository(dbpool)), validator, rbacMiddleware)
	menusHandler := menus.NewHandler(logger, menus.NewService(menus.NewRepository(dbpool), rbacService), validator, rbacMiddleware)

	auditService := audit.NewService(audit.NewRepository(dbpool), cfg.OplogRetentionDays)
	auditHandler := audithttp.NewHandler(logger, auditService, validator, rbacMiddleware)
	var recorder *audit.Recorder
	if cfg.OplogEnabled {
		recorder = audit.NewRecorder(auditService, logger, cfg.APIPrefix)
	}

	inspector := asynq.NewInspector(cfg.RedisOptions().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Metrics:            metrics,
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		Recorder:           recorder,
		UsersHandler:       usersHandler,
		RolesHandler:       rolesHandler,
		PermissionsHandler: permissionsHandler,
		MenusHandler:       menusHandler,
		AuditHandler:       auditHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("prefix", cfg.APIPrefix))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
