package app

import (
	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	Paciente     repos.PacienteRepo
	Profesional  repos.ProfesionalRepo
	Imagen       repos.ImagenRepo
	Segmentacion repos.SegmentacionRepo
	PWATScore    repos.PWATScoreRepo
	Atencion     repos.AtencionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		Paciente:     repos.NewPacienteRepo(db, log),
		Profesional:  repos.NewProfesionalRepo(db, log),
		Imagen:       repos.NewImagenRepo(db, log),
		Segmentacion: repos.NewSegmentacionRepo(db, log),
		PWATScore:    repos.NewPWATScoreRepo(db, log),
		Atencion:     repos.NewAtencionRepo(db, log),
	}
}
