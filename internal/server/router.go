package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/handlers"
	"github.com/heridalab/woundcare-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	UserHandler         *handlers.UserHandler
	PacienteHandler     *handlers.PacienteHandler
	ProfesionalHandler  *handlers.ProfesionalHandler
	ImagenHandler       *handlers.ImagenHandler
	SegmentacionHandler *handlers.SegmentacionHandler
	PWATScoreHandler    *handlers.PWATScoreHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:8081",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/users/login", cfg.AuthHandler.Login)
	// Raw artifacts stay token-exempt so the mobile client can feed them
	// straight into image views.
	router.GET("/imagenes/:id/archivo", cfg.ImagenHandler.Download)
	router.GET("/segmentaciones/:id/mask", cfg.SegmentacionHandler.DownloadMask)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/users/logout", cfg.AuthHandler.Logout)
	// Users
	protected.GET("/users", cfg.UserHandler.List)
	protected.POST("/users", cfg.UserHandler.Create)
	protected.POST("/users/buscar", cfg.UserHandler.Buscar)
	protected.PUT("/users", cfg.UserHandler.Update)
	protected.DELETE("/users", cfg.UserHandler.Delete)
	// Pacientes
	protected.GET("/pacientes", cfg.PacienteHandler.List)
	protected.POST("/pacientes", cfg.PacienteHandler.Create)
	protected.POST("/pacientes/buscar", cfg.PacienteHandler.Buscar)
	protected.PUT("/pacientes", cfg.PacienteHandler.Update)
	protected.DELETE("/pacientes", cfg.PacienteHandler.Delete)
	// Profesionales
	protected.GET("/profesionales", cfg.ProfesionalHandler.List)
	protected.POST("/profesionales", cfg.ProfesionalHandler.Create)
	protected.POST("/profesionales/buscar", cfg.ProfesionalHandler.Buscar)
	protected.PUT("/profesionales", cfg.ProfesionalHandler.Update)
	protected.DELETE("/profesionales", cfg.ProfesionalHandler.Delete)
	// Imagenes
	protected.GET("/imagenes", cfg.ImagenHandler.List)
	protected.POST("/imagenes", cfg.ImagenHandler.Upload)
	protected.POST("/imagenes/multiple", cfg.ImagenHandler.UploadMultiple)
	protected.POST("/imagenes/buscar", cfg.ImagenHandler.Buscar)
	protected.PUT("/imagenes", cfg.ImagenHandler.Update)
	protected.PUT("/imagenes/:id/archivo", cfg.ImagenHandler.ReplaceFile)
	protected.DELETE("/imagenes", cfg.ImagenHandler.Delete)
	// Segmentaciones
	protected.GET("/segmentaciones", cfg.SegmentacionHandler.List)
	protected.POST("/segmentaciones/automatico", cfg.SegmentacionHandler.CreateAutomatic)
	protected.POST("/segmentaciones/manual", cfg.SegmentacionHandler.CreateManual)
	protected.POST("/segmentaciones/buscar", cfg.SegmentacionHandler.Buscar)
	protected.PUT("/segmentaciones/:id/mask", cfg.SegmentacionHandler.EditMask)
	protected.DELETE("/segmentaciones", cfg.SegmentacionHandler.Delete)
	// PWAT scores
	protected.GET("/pwatscore", cfg.PWATScoreHandler.List)
	protected.POST("/pwatscore", cfg.PWATScoreHandler.Predict)
	protected.POST("/pwatscore/experto", cfg.PWATScoreHandler.CreateExpert)
	protected.POST("/pwatscore/buscar", cfg.PWATScoreHandler.Buscar)
	protected.DELETE("/pwatscore", cfg.PWATScoreHandler.Delete)

	return router
}
