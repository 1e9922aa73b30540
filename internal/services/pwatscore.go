package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/types"
)

// Categorias is the model-predicted half of a PWAT evaluation.
type Categorias struct {
	Cat3 int `json:"cat3"`
	Cat4 int `json:"cat4"`
	Cat5 int `json:"cat5"`
	Cat6 int `json:"cat6"`
	Cat7 int `json:"cat7"`
	Cat8 int `json:"cat8"`
}

type PredictResult struct {
	Score      *types.PWATScore
	Categorias Categorias
}

type ExpertScoreInput struct {
	ImagenID      uint
	Cat1          *int
	Cat2          *int
	Cat3          int
	Cat4          int
	Cat5          int
	Cat6          int
	Cat7          int
	Cat8          int
	Observaciones string
}

type PWATScoreService interface {
	// Predict scores a segmented wound with the external model.
	Predict(ctx context.Context, imagenID uint) (*PredictResult, error)
	// CreateExpert records a clinician's own evaluation.
	CreateExpert(ctx context.Context, in ExpertScoreInput) (*types.PWATScore, error)
	Get(ctx context.Context, scoreID uint) (*types.PWATScore, error)
	ListByImagen(ctx context.Context, imagenID uint) ([]*types.PWATScore, error)
	List(ctx context.Context) ([]*types.PWATScore, error)
	Delete(ctx context.Context, scoreID uint) error
}

type pwatScoreService struct {
	scoreRepo        repos.PWATScoreRepo
	segmentacionRepo repos.SegmentacionRepo
	imagenRepo       repos.ImagenRepo
	store            *blobstore.Store
	invoker          invoker.Invoker
	condaEnv         string
	log              *logger.Logger
}

func NewPWATScoreService(
	scoreRepo repos.PWATScoreRepo,
	segmentacionRepo repos.SegmentacionRepo,
	imagenRepo repos.ImagenRepo,
	store *blobstore.Store,
	inv invoker.Invoker,
	condaEnv string,
	baseLog *logger.Logger,
) PWATScoreService {
	serviceLog := baseLog.With("service", "PWATScoreService")
	return &pwatScoreService{
		scoreRepo:        scoreRepo,
		segmentacionRepo: segmentacionRepo,
		imagenRepo:       imagenRepo,
		store:            store,
		invoker:          inv,
		condaEnv:         condaEnv,
		log:              serviceLog,
	}
}

// predictorOutput matches the scorer's stdout. Pointers distinguish a missing
// category from a zero score.
type predictorOutput struct {
	Cat3 *int `json:"Cat3"`
	Cat4 *int `json:"Cat4"`
	Cat5 *int `json:"Cat5"`
	Cat6 *int `json:"Cat6"`
	Cat7 *int `json:"Cat7"`
	Cat8 *int `json:"Cat8"`
}

func (po *predictorOutput) complete() bool {
	return po.Cat3 != nil && po.Cat4 != nil && po.Cat5 != nil &&
		po.Cat6 != nil && po.Cat7 != nil && po.Cat8 != nil
}

// Predict checks every precondition before touching the external process:
// the image row, its latest segmentation, and both artifacts present and
// non-empty on disk. A zero-byte artifact is a dead write and must not feed
// the scorer.
func (s *pwatScoreService) Predict(ctx context.Context, imagenID uint) (*PredictResult, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}

	segmentacion, err := s.segmentacionRepo.GetLatestByImagenID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return nil, apperr.NotFound("La segmentación no existe")
	}

	imageOK, err := s.store.StatNonEmptyImage(imagen.RutaArchivo)
	if err != nil {
		return nil, fmt.Errorf("Failed to stat image %s: %w", imagen.RutaArchivo, apperr.ErrStorage)
	}
	if !imageOK {
		return nil, apperr.NotFound("El archivo de imagen no existe o está vacío")
	}
	maskOK, err := s.store.StatNonEmptyMask(segmentacion.RutaMascara)
	if err != nil {
		return nil, fmt.Errorf("Failed to stat mask %s: %w", segmentacion.RutaMascara, apperr.ErrStorage)
	}
	if !maskOK {
		return nil, apperr.NotFound("La máscara no existe o está vacía")
	}

	stdout, err := s.invoker.Run(ctx, invoker.Request{
		Mode:      invoker.ModePredecir,
		ImagePath: imagen.RutaArchivo,
		MaskPath:  segmentacion.RutaMascara,
		CondaEnv:  s.condaEnv,
	})
	if err != nil {
		s.log.Error("PWAT prediction failed", "imagen_id", imagenID, "error", err)
		return nil, err
	}

	var out predictorOutput
	raw := bytes.TrimSpace(stdout)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &apperr.InvalidOutputError{RawOutput: string(raw), Err: err}
	}
	if !out.complete() {
		return nil, &apperr.InvalidOutputError{
			RawOutput: string(raw),
			Err:       fmt.Errorf("missing categories Cat3..Cat8"),
		}
	}

	score := &types.PWATScore{
		Cat3:            *out.Cat3,
		Cat4:            *out.Cat4,
		Cat5:            *out.Cat5,
		Cat6:            *out.Cat6,
		Cat7:            *out.Cat7,
		Cat8:            *out.Cat8,
		Evaluador:       types.EvaluadorModelo,
		FechaEvaluacion: time.Now(),
		ImagenID:        imagenID,
		SegmentacionID:  segmentacion.ID,
	}
	if _, err := s.scoreRepo.Create(ctx, nil, score); err != nil {
		return nil, fmt.Errorf("Failed to create pwatscore row: %w", err)
	}

	s.log.Info("PWAT score predicted", "imagen_id", imagenID, "pwatscore_id", score.ID)
	return &PredictResult{
		Score: score,
		Categorias: Categorias{
			Cat3: score.Cat3, Cat4: score.Cat4, Cat5: score.Cat5,
			Cat6: score.Cat6, Cat7: score.Cat7, Cat8: score.Cat8,
		},
	}, nil
}

func (s *pwatScoreService) CreateExpert(ctx context.Context, in ExpertScoreInput) (*types.PWATScore, error) {
	for _, cat := range []int{in.Cat3, in.Cat4, in.Cat5, in.Cat6, in.Cat7, in.Cat8} {
		if cat < 0 || cat > 4 {
			return nil, apperr.Validation("Las categorías PWAT van de 0 a 4")
		}
	}
	for _, cat := range []*int{in.Cat1, in.Cat2} {
		if cat != nil && (*cat < 0 || *cat > 4) {
			return nil, apperr.Validation("Las categorías PWAT van de 0 a 4")
		}
	}

	imagen, err := s.imagenRepo.GetByID(ctx, nil, in.ImagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}
	segmentacion, err := s.segmentacionRepo.GetLatestByImagenID(ctx, nil, in.ImagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch segmentacion: %w", err)
	}
	if segmentacion == nil {
		return nil, apperr.NotFound("La segmentación no existe")
	}

	score := &types.PWATScore{
		Cat1:            in.Cat1,
		Cat2:            in.Cat2,
		Cat3:            in.Cat3,
		Cat4:            in.Cat4,
		Cat5:            in.Cat5,
		Cat6:            in.Cat6,
		Cat7:            in.Cat7,
		Cat8:            in.Cat8,
		Evaluador:       types.EvaluadorExperto,
		Observaciones:   in.Observaciones,
		FechaEvaluacion: time.Now(),
		ImagenID:        in.ImagenID,
		SegmentacionID:  segmentacion.ID,
	}
	if _, err := s.scoreRepo.Create(ctx, nil, score); err != nil {
		return nil, fmt.Errorf("Failed to create pwatscore row: %w", err)
	}
	return score, nil
}

func (s *pwatScoreService) Get(ctx context.Context, scoreID uint) (*types.PWATScore, error) {
	score, err := s.scoreRepo.GetByID(ctx, nil, scoreID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch pwatscore: %w", err)
	}
	if score == nil {
		return nil, apperr.NotFound("El pwatscore no existe")
	}
	return score, nil
}

func (s *pwatScoreService) ListByImagen(ctx context.Context, imagenID uint) ([]*types.PWATScore, error) {
	return s.scoreRepo.GetByImagenID(ctx, nil, imagenID)
}

func (s *pwatScoreService) List(ctx context.Context) ([]*types.PWATScore, error) {
	return s.scoreRepo.GetAll(ctx, nil)
}

func (s *pwatScoreService) Delete(ctx context.Context, scoreID uint) error {
	deleted, err := s.scoreRepo.Delete(ctx, nil, scoreID)
	if err != nil {
		return fmt.Errorf("Failed to delete pwatscore: %w", err)
	}
	if deleted == 0 {
		return apperr.NotFound("El pwatscore no existe")
	}
	return nil
}
