package app

import (
	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:         handlerset.Auth,
		AuthMiddleware:      middlewareset.Auth,
		UserHandler:         handlerset.User,
		PacienteHandler:     handlerset.Paciente,
		ProfesionalHandler:  handlerset.Profesional,
		ImagenHandler:       handlerset.Imagen,
		SegmentacionHandler: handlerset.Segmentacion,
		PWATScoreHandler:    handlerset.PWATScore,
	})
}
