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

type CreateUserInput struct {
	Rut        string
	Nombre     string
	Correo     string
	Contrasena string
	Rol        string
}

type UpdateUserInput struct {
	Nombre     *string
	Correo     *string
	Contrasena *string
	Rol        *string
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*types.User, error)
	Get(ctx context.Context, rut string) (*types.User, error)
	List(ctx context.Context) ([]*types.User, error)
	Update(ctx context.Context, rut string, in UpdateUserInput) (*types.User, error)
	Delete(ctx context.Context, rut string) error
}

type userService struct {
	userRepo repos.UserRepo
	log      *logger.Logger
}

func NewUserService(userRepo repos.UserRepo, baseLog *logger.Logger) UserService {
	serviceLog := baseLog.With("service", "UserService")
	return &userService{userRepo: userRepo, log: serviceLog}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*types.User, error) {
	rut := utils.NormalizeRUT(in.Rut)
	if rut == "" {
		return nil, apperr.Validation("El rut es requerido")
	}
	if in.Nombre == "" || in.Correo == "" {
		return nil, apperr.Validation("Nombre y correo son requeridos")
	}
	if !types.ValidRol(in.Rol) {
		return nil, apperr.Validation("Rol desconocido")
	}

	exists, err := s.userRepo.RutExists(ctx, nil, rut)
	if err != nil {
		return nil, fmt.Errorf("Failed to check rut: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("El usuario ya existe")
	}

	hash, err := utils.HashPassword(in.Contrasena)
	if err != nil {
		return nil, apperr.Validation("La contraseña es requerida")
	}

	user := &types.User{
		Rut:            rut,
		Nombre:         in.Nombre,
		Correo:         in.Correo,
		ContrasenaHash: hash,
		Rol:            in.Rol,
	}
	if _, err := s.userRepo.Create(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("Failed to create user: %w", err)
	}
	s.log.Info("User created", "rut", user.Rut, "rol", user.Rol)
	return user, nil
}

func (s *userService) Get(ctx context.Context, rut string) (*types.User, error) {
	user, err := s.userRepo.GetByRut(ctx, nil, utils.NormalizeRUT(rut))
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch user: %w", err)
	}
	if user == nil {
		return nil, apperr.NotFound("El usuario no existe")
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*types.User, error) {
	return s.userRepo.GetAll(ctx, nil)
}

func (s *userService) Update(ctx context.Context, rut string, in UpdateUserInput) (*types.User, error) {
	user, err := s.Get(ctx, rut)
	if err != nil {
		return nil, err
	}
	if in.Nombre != nil {
		user.Nombre = *in.Nombre
	}
	if in.Correo != nil {
		user.Correo = *in.Correo
	}
	if in.Rol != nil {
		if !types.ValidRol(*in.Rol) {
			return nil, apperr.Validation("Rol desconocido")
		}
		user.Rol = *in.Rol
	}
	if in.Contrasena != nil {
		hash, err := utils.HashPassword(*in.Contrasena)
		if err != nil {
			return nil, apperr.Validation("La contraseña es requerida")
		}
		user.ContrasenaHash = hash
	}
	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("Failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, rut string) error {
	deleted, err := s.userRepo.Delete(ctx, nil, utils.NormalizeRUT(rut))
	if err != nil {
		return fmt.Errorf("Failed to delete user: %w", err)
	}
	if deleted == 0 {
		return apperr.NotFound("El usuario no existe")
	}
	return nil
}
