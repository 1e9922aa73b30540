package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type AtencionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, atencion *types.Atencion) (*types.Atencion, error)
	GetByPar(ctx context.Context, tx *gorm.DB, pacienteID, profesionalID uint) (*types.Atencion, error)
	GetByPacienteID(ctx context.Context, tx *gorm.DB, pacienteID uint) ([]*types.Atencion, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Atencion, error)
	Touch(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error
}

type atencionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAtencionRepo(db *gorm.DB, baseLog *logger.Logger) AtencionRepo {
	repoLog := baseLog.With("repo", "AtencionRepo")
	return &atencionRepo{db: db, log: repoLog}
}

func (ar *atencionRepo) Create(ctx context.Context, tx *gorm.DB, atencion *types.Atencion) (*types.Atencion, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(atencion).Error; err != nil {
		return nil, err
	}
	return atencion, nil
}

func (ar *atencionRepo) GetByPar(ctx context.Context, tx *gorm.DB, pacienteID, profesionalID uint) (*types.Atencion, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.Atencion
	if err := transaction.WithContext(ctx).
		Where("paciente_id = ? AND profesional_id = ?", pacienteID, profesionalID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (ar *atencionRepo) GetByPacienteID(ctx context.Context, tx *gorm.DB, pacienteID uint) ([]*types.Atencion, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Atencion
	if err := transaction.WithContext(ctx).
		Where("paciente_id = ?", pacienteID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *atencionRepo) Touch(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Atencion{}).
		Where("id = ?", id).
		Update("fecha_atencion", at).Error
}

func (ar *atencionRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Atencion, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.Atencion
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
