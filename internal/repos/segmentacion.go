package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/types"
)

type SegmentacionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, segmentacion *types.Segmentacion) (*types.Segmentacion, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Segmentacion, error)
	GetLatestByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) (*types.Segmentacion, error)
	ExistsByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) (bool, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Segmentacion, error)
	Update(ctx context.Context, tx *gorm.DB, segmentacion *types.Segmentacion) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}

type segmentacionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSegmentacionRepo(db *gorm.DB, baseLog *logger.Logger) SegmentacionRepo {
	repoLog := baseLog.With("repo", "SegmentacionRepo")
	return &segmentacionRepo{db: db, log: repoLog}
}

func (sr *segmentacionRepo) Create(ctx context.Context, tx *gorm.DB, segmentacion *types.Segmentacion) (*types.Segmentacion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(segmentacion).Error; err != nil {
		return nil, err
	}
	return segmentacion, nil
}

func (sr *segmentacionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.Segmentacion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.Segmentacion
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

// GetLatestByImagenID returns the most recent segmentation for an image, or
// nil when the image has none. Rows sharing a timestamp break the tie on id.
func (sr *segmentacionRepo) GetLatestByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) (*types.Segmentacion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.Segmentacion
	if err := transaction.WithContext(ctx).
		Where("imagen_id = ?", imagenID).
		Order("fecha_creacion DESC, id DESC").
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *segmentacionRepo) ExistsByImagenID(ctx context.Context, tx *gorm.DB, imagenID uint) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Segmentacion{}).
		Where("imagen_id = ?", imagenID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *segmentacionRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Segmentacion, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.Segmentacion
	if err := transaction.WithContext(ctx).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *segmentacionRepo) Update(ctx context.Context, tx *gorm.DB, segmentacion *types.Segmentacion) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).Save(segmentacion).Error
}

func (sr *segmentacionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Segmentacion{})
	return res.RowsAffected, res.Error
}
