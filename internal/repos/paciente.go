package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type PacienteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, paciente *types.Paciente) (*types.Paciente, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Paciente, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.Paciente, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Paciente, error)
	Update(ctx context.Context, tx *gorm.DB, paciente *types.Paciente) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type pacienteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPacienteRepo(db *gorm.DB, baseLog *logger.Logger) PacienteRepo {
	repoLog := baseLog.With("repo", "PacienteRepo")
	return &pacienteRepo{db: db, log: repoLog}
}

func (pr *pacienteRepo) Create(ctx context.Context, tx *gorm.DB, paciente *types.Paciente) (*types.Paciente, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(paciente).Error; err != nil {
		return nil, err
	}
	return paciente, nil
}

func (pr *pacienteRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Paciente, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Paciente
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *pacienteRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.Paciente, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Paciente
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *pacienteRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Paciente, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Paciente
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pacienteRepo) Update(ctx context.Context, tx *gorm.DB, paciente *types.Paciente) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(paciente).Error
}

func (pr *pacienteRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Paciente{})
	return res.RowsAffected, res.Error
}
