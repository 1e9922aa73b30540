package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type AtencionService interface {
	// Upsert records that a professional treated a patient. An existing pair
	// only gets its fecha_atencion refreshed. Returns true when a new row was
	// created.
	Upsert(ctx context.Context, tx *gorm.DB, pacienteID, profesionalID uint) (bool, error)
	ListByPaciente(ctx context.Context, pacienteID uint) ([]*types.Atencion, error)
	List(ctx context.Context) ([]*types.Atencion, error)
}

type atencionService struct {
	atencionRepo repos.AtencionRepo
	log          *logger.Logger
}

func NewAtencionService(atencionRepo repos.AtencionRepo, baseLog *logger.Logger) AtencionService {
	serviceLog := baseLog.With("service", "AtencionService")
	return &atencionService{atencionRepo: atencionRepo, log: serviceLog}
}

func (s *atencionService) Upsert(ctx context.Context, tx *gorm.DB, pacienteID, profesionalID uint) (bool, error) {
	existing, err := s.atencionRepo.GetByPar(ctx, tx, pacienteID, profesionalID)
	if err != nil {
		return false, err
	}
	now := time.Now()
	if existing != nil {
		return false, s.atencionRepo.Touch(ctx, tx, existing.ID, now)
	}
	_, err = s.atencionRepo.Create(ctx, tx, &types.Atencion{
		PacienteID:    pacienteID,
		ProfesionalID: profesionalID,
		FechaAtencion: now,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *atencionService) ListByPaciente(ctx context.Context, pacienteID uint) ([]*types.Atencion, error) {
	return s.atencionRepo.GetByPacienteID(ctx, nil, pacienteID)
}

func (s *atencionService) List(ctx context.Context) ([]*types.Atencion, error) {
	return s.atencionRepo.GetAll(ctx, nil)
}
