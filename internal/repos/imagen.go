package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type ImagenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, imagen *types.Imagen) (*types.Imagen, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Imagen, error)
	GetByPacienteID(ctx context.Context, tx *gorm.DB, pacienteID uint) ([]*types.Imagen, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Imagen, error)
	Update(ctx context.Context, tx *gorm.DB, imagen *types.Imagen) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type imagenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImagenRepo(db *gorm.DB, baseLog *logger.Logger) ImagenRepo {
	repoLog := baseLog.With("repo", "ImagenRepo")
	return &imagenRepo{db: db, log: repoLog}
}

func (ir *imagenRepo) Create(ctx context.Context, tx *gorm.DB, imagen *types.Imagen) (*types.Imagen, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if err := transaction.WithContext(ctx).Create(imagen).Error; err != nil {
		return nil, err
	}
	return imagen, nil
}

func (ir *imagenRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Imagen, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var result types.Imagen
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

func (ir *imagenRepo) GetByPacienteID(ctx context.Context, tx *gorm.DB, pacienteID uint) ([]*types.Imagen, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Imagen
	if err := transaction.WithContext(ctx).
		Where("paciente_id = ?", pacienteID).
		Order("fecha_captura DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *imagenRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Imagen, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.Imagen
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *imagenRepo) Update(ctx context.Context, tx *gorm.DB, imagen *types.Imagen) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	return transaction.WithContext(ctx).Save(imagen).Error
}

func (ir *imagenRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Imagen{})
	return res.RowsAffected, res.Error
}
