package app

import (
	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/services"
	"github.com/heridalab/woundcare-backend/internal/tokenstore"
)

type Services struct {
	Auth         services.AuthService
	User         services.UserService
	Paciente     services.PacienteService
	Profesional  services.ProfesionalService
	Imagen       services.ImagenService
	Segmentacion services.SegmentacionService
	PWATScore    services.PWATScoreService
	Atencion     services.AtencionService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	store, err := blobstore.NewFromEnv(log)
	if err != nil {
		return Services{}, err
	}

	var revoked tokenstore.RevokedStore
	if cfg.UseRedisTokenStore {
		revoked, err = tokenstore.NewRedisStore(log)
		if err != nil {
			return Services{}, err
		}
	} else {
		revoked = tokenstore.NewMemoryStore()
	}

	inv := invoker.New(invoker.LoadConfigFromEnv(log), log)

	atencionService := services.NewAtencionService(reposet.Atencion, log)
	return Services{
		Auth:        services.NewAuthService(reposet.User, revoked, []byte(cfg.JWTSecretKey), cfg.AccessTokenTTL, log),
		User:        services.NewUserService(reposet.User, log),
		Paciente:    services.NewPacienteService(reposet.Paciente, reposet.User, atencionService, log),
		Profesional: services.NewProfesionalService(reposet.Profesional, reposet.User, log),
		Imagen: services.NewImagenService(
			reposet.Imagen,
			reposet.Paciente,
			reposet.Profesional,
			atencionService,
			store,
			log,
		),
		Segmentacion: services.NewSegmentacionService(
			reposet.Segmentacion,
			reposet.Imagen,
			store,
			inv,
			cfg.CondaEnvSegmentacion,
			log,
		),
		PWATScore: services.NewPWATScoreService(
			reposet.PWATScore,
			reposet.Segmentacion,
			reposet.Imagen,
			store,
			inv,
			cfg.CondaEnvPWAT,
			log,
		),
		Atencion: atencionService,
	}, nil
}
