package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocell/team-service/internal/config"
	"github.com/geocell/team-service/internal/logger"
	"github.com/geocell/team-service/internal/repository/postgres"
	httpTransport "github.com/geocell/team-service/internal/transport/http"
	"github.com/geocell/team-service/internal/transport/http/handler"
	"github.com/geocell/team-service/internal/usecase"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	// Подключаемся к базе данных
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.GetDSN())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalw("failed to ping database", "error", err)
	}

	log.Infow("connected to database", "host", cfg.DatabaseHost, "name", cfg.DatabaseName)

	// Применяем миграции
	if err := runMigrations(cfg.GetDSN()); err != nil {
		log.Fatalw("failed to run migrations", "error", err)
	}

	log.Infow("migrations applied")

	// Инициализируем репозитории
	teamRepo := postgres.NewTeamRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	auditRepo := postgres.NewAuditLogRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	// Инициализируем use cases
	auditUseCase := usecase.NewAuditUseCase(auditRepo, log)
	teamUseCase := usecase.NewTeamUseCase(teamRepo, memberRepo, txManager, auditUseCase, log)
	memberUseCase := usecase.NewMemberUseCase(teamRepo, memberRepo, txManager, auditUseCase, log)

	// Инициализируем handlers
	teamHandler := handler.NewTeamHandler(teamUseCase)
	memberHandler := handler.NewMemberHandler(memberUseCase)
	auditHandler := handler.NewAuditHandler(auditUseCase)
	healthHandler := handler.NewHealthHandler()

	// Создаем роутер
	router := httpTransport.NewRouter(httpTransport.RouterConfig{
		TeamHandler:   teamHandler,
		MemberHandler: memberHandler,
		AuditHandler:  auditHandler,
		HealthHandler: healthHandler,
		AdminToken:    cfg.AdminToken,
	})

	// Создаем HTTP сервер
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в отдельной горутине
	go func() {
		log.Infow("starting HTTP server", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Infow("server exited")
}

// Применяем миграции базы данных
func runMigrations(dsn string) error {
	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
