package app

import (
	"github.com/heridalab/woundcare-backend/internal/handlers"
	"github.com/heridalab/woundcare-backend/internal/logger"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Paciente     *handlers.PacienteHandler
	Profesional  *handlers.ProfesionalHandler
	Imagen       *handlers.ImagenHandler
	Segmentacion *handlers.SegmentacionHandler
	PWATScore    *handlers.PWATScoreHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:         handlers.NewAuthHandler(serviceset.Auth),
		User:         handlers.NewUserHandler(serviceset.User),
		Paciente:     handlers.NewPacienteHandler(serviceset.Paciente),
		Profesional:  handlers.NewProfesionalHandler(serviceset.Profesional),
		Imagen:       handlers.NewImagenHandler(serviceset.Imagen),
		Segmentacion: handlers.NewSegmentacionHandler(serviceset.Segmentacion),
		PWATScore:    handlers.NewPWATScoreHandler(serviceset.PWATScore),
	}
}
