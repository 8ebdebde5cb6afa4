package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/videomarket-backend/internal/config"
	"github.com/ignatzorin/videomarket-backend/internal/db"
	"github.com/ignatzorin/videomarket-backend/internal/domain/repository"
	"github.com/ignatzorin/videomarket-backend/internal/goroutine"
	httpHandlers "github.com/ignatzorin/videomarket-backend/internal/http/handlers"
	httpRouter "github.com/ignatzorin/videomarket-backend/internal/http/router"
	"github.com/ignatzorin/videomarket-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/videomarket-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/videomarket-backend/internal/interface/http/handler"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/service"
	"github.com/ignatzorin/videomarket-backend/internal/usecase/category"
	"github.com/ignatzorin/videomarket-backend/internal/ws"
)

// Время жизни токенов выдаёт внешний сервис авторизации, здесь только проверка подписи.
const accessTokenTTL = 15 * time.Minute

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}

	// Хранилище категорий.
	var (
		dbConn *sqlx.DB
		repo   repository.CategoryRepository
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Log.Warn("main: категории хранятся в памяти и пропадут после перезапуска")
		repo = memory.NewCategoryRepository()
	default:
		dbConn, err = db.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
		}
		defer safeClose(dbConn)

		if err := db.RunMigrations(ctx, dbConn); err != nil {
			logger.Log.Fatalf("main: ошибка миграций: %v", err)
		}
		repo = persistence.NewCategoryRepositoryAdapter(dbConn)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, accessTokenTTL)

	// Вебсокеты: хаб рассылает события изменений дерева админам.
	hub := ws.NewHub(ctx)
	goroutine.SafeGo(hub.Run)

	categories := category.NewUseCases(repo, category.Options{
		MaxDepth:  cfg.CategoryMaxDepth,
		Publisher: hub,
	})

	// HTTP хэндлеры.
	categoryHandler := handler.NewCategoryHandler(categories)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, hub)
	wsHandler := httpHandlers.NewWSHandler(hub, cfg.AllowedOrigins)

	engine := httpRouter.SetupRouter(cfg, categoryHandler, healthHandler, wsHandler, tokenManager)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Завершаем сервер при получении сигнала.
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	})

	logger.Log.WithField("port", cfg.HTTPPort).
		WithField("storage", cfg.StorageDriver).
		Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
