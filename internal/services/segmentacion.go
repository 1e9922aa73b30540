package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

type SegmentacionService interface {
	// CreateManual attaches a clinician-drawn mask. Rejected with a conflict
	// when the image already has any segmentation; corrections go through
	// EditMask instead.
	CreateManual(ctx context.Context, imagenID uint, file FilePayload) (*types.Segmentacion, error)
	// CreateAutomatic runs the predictor over the stored photograph.
	CreateAutomatic(ctx context.Context, imagenID uint) (*types.Segmentacion, error)
	EditMask(ctx context.Context, segmentacionID uint, file FilePayload) (*types.Segmentacion, error)
	DownloadMaskByImagen(ctx context.Context, imagenID uint) ([]byte, error)
	Get(ctx context.Context, segmentacionID uint) (*types.Segmentacion, error)
	List(ctx context.Context) ([]*types.Segmentacion, error)
	Delete(ctx context.Context, segmentacionID uint) error
}

type segmentacionService struct {
	segmentacionRepo repos.SegmentacionRepo
	imagenRepo       repos.ImagenRepo
	store            *blobstore.Store
	invoker          invoker.Invoker
	condaEnv         string
	inflight         singleflight.Group
	log              *logger.Logger
}

func NewSegmentacionService(
	segmentacionRepo repos.SegmentacionRepo,
	imagenRepo repos.ImagenRepo,
	store *blobstore.Store,
	inv invoker.Invoker,
	condaEnv string,
	baseLog *logger.Logger,
) SegmentacionService {
	serviceLog := baseLog.With("service", "SegmentacionService")
	return &segmentacionService{
		segmentacionRepo: segmentacionRepo,
		imagenRepo:       imagenRepo,
		store:            store,
		invoker:          inv,
		condaEnv:         condaEnv,
		log:              serviceLog,
	}
}

func (s *segmentacionService) CreateManual(ctx context.Context, imagenID uint, file FilePayload) (*types.Segmentacion, error) {
	imagen, err := s.requireImagen(ctx, imagenID)
	if err != nil {
		return nil, err
	}

	exists, err := s.segmentacionRepo.ExistsByImagenID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to check existing segmentacion: %w", err)
	}
	if exists {
		return nil, apperr.Conflict("La segmentación ya existe")
	}

	if len(file.Data) == 0 {
		return nil, apperr.Validation("La mascara esta vacia")
	}
	head := file.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if !utils.IsJpeg(file.ContentType, head) {
		return nil, apperr.Validation("Solo se aceptan mascaras JPEG")
	}

	maskName := blobstore.MaskNameFor(imagen.RutaArchivo)
	if err := s.store.WriteMask(maskName, bytes.NewReader(file.Data)); err != nil {
		return nil, fmt.Errorf("Failed to write mask %s: %w", maskName, apperr.ErrStorage)
	}

	segmentacion := &types.Segmentacion{
		Metodo:        types.MetodoManual,
		RutaMascara:   maskName,
		FechaCreacion: time.Now(),
		ImagenID:      imagenID,
	}
	if _, err := s.segmentacionRepo.Create(ctx, nil, segmentacion); err != nil {
		return nil, fmt.Errorf("Failed to create segmentacion row: %w", err)
	}
	return segmentacion, nil
}

// CreateAutomatic is serialized per image: concurrent requests for the same
// image share one predictor run and one row instead of racing the process.
func (s *segmentacionService) CreateAutomatic(ctx context.Context, imagenID uint) (*types.Segmentacion, error) {
	v, err, _ := s.inflight.Do(strconv.FormatUint(uint64(imagenID), 10), func() (interface{}, error) {
		return s.createAutomatic(ctx, imagenID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Segmentacion), nil
}

func (s *segmentacionService) createAutomatic(ctx context.Context, imagenID uint) (*types.Segmentacion, error) {
	imagen, err := s.requireImagen(ctx, imagenID)
	if err != nil {
		return nil, err
	}

	_, err = s.invoker.Run(ctx, invoker.Request{
		Mode:      invoker.ModePredecirMascara,
		ImagePath: imagen.RutaArchivo,
		CondaEnv:  s.condaEnv,
	})
	if err != nil {
		s.log.Error("Automatic segmentation failed", "imagen_id", imagenID, "error", err)
		return nil, err
	}

	// The predictor names the mask after the image stem. The row is created
	// on a clean exit even when the file is missing; the scoring stage
	// re-checks the artifact before consuming it.
	segmentacion := &types.Segmentacion{
		Metodo:        types.MetodoAutomatica,
		RutaMascara:   blobstore.MaskNameFor(imagen.RutaArchivo),
		FechaCreacion: time.Now(),
		ImagenID:      imagenID,
	}
	if _, err := s.segmentacionRepo.Create(ctx, nil, segmentacion); err != nil {
		return nil, fmt.Errorf("Failed to create segmentacion row: %w", err)
	}
	s.log.Info("Automatic segmentation created", "imagen_id", imagenID, "segmentacion_id", segmentacion.ID)
	return segmentacion, nil
}

// EditMask overwrites the stored mask in place. The row keeps its identity;
// only the creation timestamp moves.
func (s *segmentacionService) EditMask(ctx context.Context, segmentacionID uint, file FilePayload) (*types.Segmentacion, error) {
	segmentacion, err := s.segmentacionRepo.GetByID(ctx, nil, segmentacionID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return nil, apperr.NotFound("La segmentación no existe")
	}

	if len(file.Data) == 0 {
		return nil, apperr.Validation("La mascara esta vacia")
	}
	head := file.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if !utils.IsJpeg(file.ContentType, head) {
		return nil, apperr.Validation("Solo se aceptan mascaras JPEG")
	}

	if err := s.store.WriteMask(segmentacion.RutaMascara, bytes.NewReader(file.Data)); err != nil {
		return nil, fmt.Errorf("Failed to overwrite mask %s: %w", segmentacion.RutaMascara, apperr.ErrStorage)
	}

	segmentacion.FechaCreacion = time.Now()
	if err := s.segmentacionRepo.Update(ctx, nil, segmentacion); err != nil {
		return nil, fmt.Errorf("Failed to update segmentacion row: %w", err)
	}
	return segmentacion, nil
}

// DownloadMaskByImagen serves the latest mask for an image.
func (s *segmentacionService) DownloadMaskByImagen(ctx context.Context, imagenID uint) ([]byte, error) {
	segmentacion, err := s.segmentacionRepo.GetLatestByImagenID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return nil, apperr.NotFound("La segmentación no existe")
	}
	data, err := s.store.ReadMask(segmentacion.RutaMascara)
	if err != nil {
		return nil, fmt.Errorf("Failed to read mask %s: %w", segmentacion.RutaMascara, apperr.ErrStorage)
	}
	return data, nil
}

func (s *segmentacionService) Get(ctx context.Context, segmentacionID uint) (*types.Segmentacion, error) {
	segmentacion, err := s.segmentacionRepo.GetByID(ctx, nil, segmentacionID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return nil, apperr.NotFound("La segmentación no existe")
	}
	return segmentacion, nil
}

func (s *segmentacionService) List(ctx context.Context) ([]*types.Segmentacion, error) {
	return s.segmentacionRepo.GetAll(ctx, nil)
}

func (s *segmentacionService) Delete(ctx context.Context, segmentacionID uint) error {
	segmentacion, err := s.segmentacionRepo.GetByID(ctx, nil, segmentacionID)
	if err != nil {
		return fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return apperr.NotFound("La segmentación no existe")
	}
	if _, err := s.segmentacionRepo.Delete(ctx, nil, segmentacionID); err != nil {
		return fmt.Errorf("Failed to delete segmentacion row: %w", err)
	}
	if err := s.store.RemoveMask(segmentacion.RutaMascara); err != nil {
		s.log.Warn("Failed to remove mask file after delete", "archivo", segmentacion.RutaMascara, "error", err)
	}
	return nil
}

func (s *segmentacionService) requireImagen(ctx context.Context, imagenID uint) (*types.Imagen, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}
	return imagen, nil
}
