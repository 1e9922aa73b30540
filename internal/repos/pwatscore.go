package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type PWATScoreRepo interface {
	Create(ctx context.Context, tx *gorm.DB, score *types.PWATScore) (*types.PWATScore, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.PWATScore, error)
	GetByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) ([]*types.PWATScore, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.PWATScore, error)
	Update(ctx context.Context, tx *gorm.DB, score *types.PWATScore) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type pwatScoreRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPWATScoreRepo(db *gorm.DB, baseLog *logger.Logger) PWATScoreRepo {
	repoLog := baseLog.With("repo", "PWATScoreRepo")
	return &pwatScoreRepo{db: db, log: repoLog}
}

func (pr *pwatScoreRepo) Create(ctx context.Context, tx *gorm.DB, score *types.PWATScore) (*types.PWATScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(score).Error; err != nil {
		return nil, err
	}
	return score, nil
}

func (pr *pwatScoreRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.PWATScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.PWATScore
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

func (pr *pwatScoreRepo) GetByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) ([]*types.PWATScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.PWATScore
	if err := transaction.WithContext(ctx).
		Where("imagen_id = ?", imagenID).
		Order("fecha_evaluacion DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pwatScoreRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.PWATScore, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.PWATScore
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *pwatScoreRepo) Update(ctx context.Context, tx *gorm.DB, score *types.PWATScore) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).Save(score).Error
}

func (pr *pwatScoreRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.PWATScore{})
	return res.RowsAffected, res.Error
}
