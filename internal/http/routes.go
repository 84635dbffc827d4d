package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskpad/internal/config"
	"taskpad/internal/http/handlers"
	"taskpad/internal/http/middleware"
	"taskpad/internal/repository"
	"taskpad/internal/service"
	"taskpad/internal/ws"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, notifier *repository.Notifier, version string, cfg *config.Config) *ws.Hub {
	tasks := repository.NewTaskRepository(db, notifier)
	users := repository.NewUserRepository(db)
	auth := service.NewAuthService(users)

	h := handlers.NewHandler(tasks, auth)
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", authRL, h.SignUp)
		authGroup.POST("/signin", authRL, h.SignIn)
		authGroup.POST("/google", authRL, h.GoogleSignIn)
		authGroup.POST("/reset", authRL, h.RequestPasswordReset)
		authGroup.POST("/reset/confirm", authRL, h.ResetPassword)
	}

	v1.GET("/me", middleware.Auth(), h.Me)

	taskGroup := v1.Group("/tasks")
	taskGroup.Use(middleware.Auth())
	{
		taskGroup.GET("", h.ListTasks)
		taskGroup.POST("", h.CreateTask)
		taskGroup.PATCH("/:id", h.UpdateTask)
		taskGroup.PATCH("/:id/toggle", h.ToggleTask)
		taskGroup.DELETE("/:id", h.DeleteTask)
	}

	// WebSocket for live snapshots and countdown ticks
	hub := ws.NewHub()
	r.GET("/ws", h.WS(hub))

	return hub
}
