package services

import (
	"context"
	"fmt"
	"time"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type CreatePacienteInput struct {
	Nombre          string
	FechaNacimiento *time.Time
	Sexo            string
	Telefono        string
	Direccion       string
	UserID          string
	// ProfesionalID, when present, also records an initial Atencion.
	ProfesionalID *uint
}

type CreatePacienteResult struct {
	Paciente       *types.Paciente
	AtencionCreada bool
}

type UpdatePacienteInput struct {
	Nombre    *string
	Telefono  *string
	Direccion *string
	Estado    *string
}

type PacienteService interface {
	Create(ctx context.Context, in CreatePacienteInput) (*CreatePacienteResult, error)
	Get(ctx context.Context, id uint) (*types.Paciente, error)
	List(ctx context.Context) ([]*types.Paciente, error)
	Update(ctx context.Context, id uint, in UpdatePacienteInput) (*types.Paciente, error)
	Delete(ctx context.Context, id uint) error
}

type pacienteService struct {
	pacienteRepo    repos.PacienteRepo
	userRepo        repos.UserRepo
	atencionService AtencionService
	log             *logger.Logger
}

func NewPacienteService(pacienteRepo repos.PacienteRepo, userRepo repos.UserRepo, atencionService AtencionService, baseLog *logger.Logger) PacienteService {
	serviceLog := baseLog.With("service", "PacienteService")
	return &pacienteService{
		pacienteRepo:    pacienteRepo,
		userRepo:        userRepo,
		atencionService: atencionService,
		log:             serviceLog,
	}
}

func (s *pacienteService) Create(ctx context.Context, in CreatePacienteInput) (*CreatePacienteResult, error) {
	if in.Nombre == "" {
		return nil, apperr.Validation("El nombre es requerido")
	}
	userID := utils.NormalizeRUT(in.UserID)
	if userID == "" {
		return nil, apperr.Validation("El user_id es requerido")
	}
	user, err := s.userRepo.GetByRut(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("El usuario no existe")
	}

	paciente := &types.Paciente{
		Nombre:          in.Nombre,
		FechaNacimiento: in.FechaNacimiento,
		Sexo:            in.Sexo,
		Telefono:        in.Telefono,
		Direccion:       in.Direccion,
		Estado:          types.EstadoEnTratamiento,
		UserID:          userID,
	}
	if _, err := s.pacienteRepo.Create(ctx, nil, paciente); err != nil {
		return nil, fmt.Errorf("Failed to create paciente: %w", err)
	}

	result := &CreatePacienteResult{Paciente: paciente}
	if in.ProfesionalID != nil {
		created, err := s.atencionService.Upsert(ctx, nil, paciente.ID, *in.ProfesionalID)
		if err != nil {
			s.log.Warn("Initial atencion upsert failed", "paciente_id", paciente.ID, "profesional_id", *in.ProfesionalID, "error", err)
		} else {
			result.AtencionCreada = created
		}
	}
	return result, nil
}

func (s *pacienteService) Get(ctx context.Context, id uint) (*types.Paciente, error) {
	paciente, err := s.pacienteRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch paciente: %w", err)
	}
	if paciente == nil {
		return nil, apperr.NotFound("El paciente no existe")
	}
	return paciente, nil
}

func (s *pacienteService) List(ctx context.Context) ([]*types.Paciente, error) {
	return s.pacienteRepo.GetAll(ctx, nil)
}

func (s *pacienteService) Update(ctx context.Context, id uint, in UpdatePacienteInput) (*types.Paciente, error) {
	paciente, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Nombre != nil {
		paciente.Nombre = *in.Nombre
	}
	if in.Telefono != nil {
		paciente.Telefono = *in.Telefono
	}
	if in.Direccion != nil {
		paciente.Direccion = *in.Direccion
	}
	if in.Estado != nil {
		if !types.ValidEstado(*in.Estado) {
			return nil, apperr.Validation("Estado desconocido")
		}
		paciente.Estado = *in.Estado
	}
	if err := s.pacienteRepo.Update(ctx, nil, paciente); err != nil {
		return nil, fmt.Errorf("Failed to update paciente: %w", err)
	}
	return paciente, nil
}

func (s *pacienteService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.pacienteRepo.Delete(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("Failed to delete paciente: %w", err)
	}
	if deleted == 0 {
		return apperr.NotFound("El paciente no existe")
	}
	return nil
}
