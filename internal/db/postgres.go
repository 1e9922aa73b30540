package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	log.Info("Loading environment variables...")
	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "woundcare", log)
	log.Debug("Environment variables loaded")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	return s.configureForeignKeys()
}

// AutoMigrateAll migrates the full schema on any gorm dialect. Tests reuse it
// against sqlite.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},
		&types.Paciente{},
		&types.Profesional{},
		&types.Imagen{},
		&types.Segmentacion{},
		&types.PWATScore{},
		&types.Atencion{},
	)
}

func (s *PostgresService) configureForeignKeys() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"fk_paciente_user_id", `
      ALTER TABLE "paciente"
      ADD CONSTRAINT "fk_paciente_user_id"
      FOREIGN KEY ("user_id")
      REFERENCES "user"("rut")
      ON DELETE CASCADE
    `},
		{"fk_profesional_user_id", `
      ALTER TABLE "profesional"
      ADD CONSTRAINT "fk_profesional_user_id"
      FOREIGN KEY ("user_id")
      REFERENCES "user"("rut")
      ON DELETE CASCADE
    `},
		{"fk_imagen_paciente_id", `
      ALTER TABLE "imagen"
      ADD CONSTRAINT "fk_imagen_paciente_id"
      FOREIGN KEY ("paciente_id")
      REFERENCES "paciente"("id")
    `},
		{"fk_segmentacion_imagen_id", `
      ALTER TABLE "segmentacion"
      ADD CONSTRAINT "fk_segmentacion_imagen_id"
      FOREIGN KEY ("imagen_id")
      REFERENCES "imagen"("id")
    `},
		{"fk_pwatscore_imagen_id", `
      ALTER TABLE "pwatscore"
      ADD CONSTRAINT "fk_pwatscore_imagen_id"
      FOREIGN KEY ("imagen_id")
      REFERENCES "imagen"("id")
    `},
		{"fk_pwatscore_segmentacion_id", `
      ALTER TABLE "pwatscore"
      ADD CONSTRAINT "fk_pwatscore_segmentacion_id"
      FOREIGN KEY ("segmentacion_id")
      REFERENCES "segmentacion"("id")
    `},
		{"fk_atencion_paciente_id", `
      ALTER TABLE "atencion"
      ADD CONSTRAINT "fk_atencion_paciente_id"
      FOREIGN KEY ("paciente_id")
      REFERENCES "paciente"("id")
    `},
		{"fk_atencion_profesional_id", `
      ALTER TABLE "atencion"
      ADD CONSTRAINT "fk_atencion_profesional_id"
      FOREIGN KEY ("profesional_id")
      REFERENCES "profesional"("id")
    `},
	}
	for _, stmt := range stmts {
		var exists bool
		err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)`, stmt.name,
		).Scan(&exists).Error
		if err != nil {
			return fmt.Errorf("Failed to check constraint %s: %w", stmt.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("Failed to add %s: %w", stmt.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
