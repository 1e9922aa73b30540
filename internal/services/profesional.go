package services

import (
	"context"
	"fmt"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type CreateProfesionalInput struct {
	Nombre       string
	Especialidad string
	Telefono     string
	UserID       string
}

type UpdateProfesionalInput struct {
	Nombre       *string
	Especialidad *string
	Telefono     *string
}

type ProfesionalService interface {
	Create(ctx context.Context, in CreateProfesionalInput) (*types.Profesional, error)
	Get(ctx context.Context, id uint) (*types.Profesional, error)
	List(ctx context.Context) ([]*types.Profesional, error)
	Update(ctx context.Context, id uint, in UpdateProfesionalInput) (*types.Profesional, error)
	Delete(ctx context.Context, id uint) error
}

type profesionalService struct {
	profesionalRepo repos.ProfesionalRepo
	userRepo        repos.UserRepo
	log             *logger.Logger
}

func NewProfesionalService(profesionalRepo repos.ProfesionalRepo, userRepo repos.UserRepo, baseLog *logger.Logger) ProfesionalService {
	serviceLog := baseLog.With("service", "ProfesionalService")
	return &profesionalService{profesionalRepo: profesionalRepo, userRepo: userRepo, log: serviceLog}
}

func (s *profesionalService) Create(ctx context.Context, in CreateProfesionalInput) (*types.Profesional, error) {
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

	profesional := &types.Profesional{
		Nombre:       in.Nombre,
		Especialidad: in.Especialidad,
		Telefono:     in.Telefono,
		UserID:       userID,
	}
	if _, err := s.profesionalRepo.Create(ctx, nil, profesional); err != nil {
		return nil, fmt.Errorf("Failed to create profesional: %w", err)
	}
	return profesional, nil
}

func (s *profesionalService) Get(ctx context.Context, id uint) (*types.Profesional, error) {
	profesional, err := s.profesionalRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch profesional: %w", err)
	}
	if profesional == nil {
		return nil, apperr.NotFound("El profesional no existe")
	}
	return profesional, nil
}

func (s *profesionalService) List(ctx context.Context) ([]*types.Profesional, error) {
	return s.profesionalRepo.GetAll(ctx, nil)
}

func (s *profesionalService) Update(ctx context.Context, id uint, in UpdateProfesionalInput) (*types.Profesional, error) {
	profesional, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Nombre != nil {
		profesional.Nombre = *in.Nombre
	}
	if in.Especialidad != nil {
		profesional.Especialidad = *in.Especialidad
	}
	if in.Telefono != nil {
		profesional.Telefono = *in.Telefono
	}
	if err := s.profesionalRepo.Update(ctx, nil, profesional); err != nil {
		return nil, fmt.Errorf("Failed to update profesional: %w", err)
	}
	return profesional, nil
}

func (s *profesionalService) Delete(ctx context.Context, id uint) error {
	deleted, err := s.profesionalRepo.Delete(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("Failed to delete profesional: %w", err)
	}
	if deleted == 0 {
		return apperr.NotFound("El profesional no existe")
	}
	return nil
}
