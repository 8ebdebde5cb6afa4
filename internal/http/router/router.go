package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/videomarket-backend/internal/config"
	"github.com/ignatzorin/videomarket-backend/internal/http/handlers"
	"github.com/ignatzorin/videomarket-backend/internal/http/middleware"
	"github.com/ignatzorin/videomarket-backend/internal/interface/http/handler"
	"github.com/ignatzorin/videomarket-backend/internal/logger"
	"github.com/ignatzorin/videomarket-backend/internal/service"
	"github.com/ignatzorin/videomarket-backend/internal/validation"
)

func SetupRouter(
	cfg *config.Config,
	categoryHandler *handler.CategoryHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WSHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := validation.RegisterBindingValidators(); err != nil {
		logger.Log.WithError(err).Error("router: правила валидации не зарегистрированы")
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	// Публичный каталог
	api.GET("/categories", categoryHandler.ListPublic)
	api.GET("/categories/tree", categoryHandler.Tree)

	// Демо-данные только для локальной разработки
	if !cfg.IsProduction() {
		api.POST("/seed", categoryHandler.Seed)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.AdminOnly())
	{
		limit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

		categories := admin.Group("/categories")
		categories.GET("", categoryHandler.ListAdmin)
		categories.GET("/children", categoryHandler.ListChildren)
		categories.POST("", limit, categoryHandler.Create)
		categories.PUT("/:id", middleware.IDValidator("id"), limit, categoryHandler.Rename)
		categories.DELETE("/:id", middleware.IDValidator("id"), limit, categoryHandler.Delete)
		categories.PUT("/:id/move", middleware.IDValidator("id"), limit, categoryHandler.Move)
		categories.PUT("/:id/reorder", middleware.IDValidator("id"), limit, categoryHandler.Reorder)
		categories.GET("/:id/counts", middleware.IDValidator("id"), categoryHandler.Counts)

		admin.GET("/ws", wsHandler.Handle)
	}

	return r
}
