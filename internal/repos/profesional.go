package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type ProfesionalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profesional *types.Profesional) (*types.Profesional, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Profesional, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.Profesional, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Profesional, error)
	Update(ctx context.Context, tx *gorm.DB, profesional *types.Profesional) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type profesionalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfesionalRepo(db *gorm.DB, baseLog *logger.Logger) ProfesionalRepo {
	repoLog := baseLog.With("repo", "ProfesionalRepo")
	return &profesionalRepo{db: db, log: repoLog}
}

func (pr *profesionalRepo) Create(ctx context.Context, tx *gorm.DB, profesional *types.Profesional) (*types.Profesional, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(profesional).Error; err != nil {
		return nil, err
	}
	return profesional, nil
}

func (pr *profesionalRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Profesional, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Profesional
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

func (pr *profesionalRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*types.Profesional, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.Profesional
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

func (pr *profesionalRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Profesional, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.Profesional
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profesionalRepo) Update(ctx context.Context, tx *gorm.DB, profesional *types.Profesional) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(profesional).Error
}

func (pr *profesionalRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Profesional{})
	return res.RowsAffected, res.Error
}
