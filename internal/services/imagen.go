package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/requestdata"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

// FilePayload is one uploaded file as received at the HTTP boundary.
type FilePayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type UploadResult struct {
	Imagen         *types.Imagen
	AtencionCreada bool
}

type BulkError struct {
	Indice  int    `json:"indice"`
	Archivo string `json:"archivo"`
	Mensaje string `json:"mensaje"`
}

type BulkUploadResult struct {
	Imagenes       []*types.Imagen
	Errores        []BulkError
	AtencionCreada bool
}

type UpdateImagenInput struct {
	Lado         *string
	FechaCaptura *time.Time
}

type ImagenService interface {
	Upload(ctx context.Context, pacienteID uint, file FilePayload) (*UploadResult, error)
	UploadBulk(ctx context.Context, pacienteID uint, files []FilePayload) (*BulkUploadResult, error)
	Download(ctx context.Context, imagenID uint) ([]byte, *types.Imagen, error)
	ReplaceFile(ctx context.Context, imagenID uint, file FilePayload) (*types.Imagen, error)
	Get(ctx context.Context, imagenID uint) (*types.Imagen, error)
	List(ctx context.Context) ([]*types.Imagen, error)
	ListByPaciente(ctx context.Context, pacienteID uint) ([]*types.Imagen, error)
	Update(ctx context.Context, imagenID uint, in UpdateImagenInput) (*types.Imagen, error)
	Delete(ctx context.Context, imagenID uint) error
}

type imagenService struct {
	imagenRepo      repos.ImagenRepo
	pacienteRepo    repos.PacienteRepo
	profesionalRepo repos.ProfesionalRepo
	atencionService AtencionService
	store           *blobstore.Store
	log             *logger.Logger
}

func NewImagenService(
	imagenRepo repos.ImagenRepo,
	pacienteRepo repos.PacienteRepo,
	profesionalRepo repos.ProfesionalRepo,
	atencionService AtencionService,
	store *blobstore.Store,
	baseLog *logger.Logger,
) ImagenService {
	serviceLog := baseLog.With("service", "ImagenService")
	return &imagenService{
		imagenRepo:      imagenRepo,
		pacienteRepo:    pacienteRepo,
		profesionalRepo: profesionalRepo,
		atencionService: atencionService,
		store:           store,
		log:             serviceLog,
	}
}

// Upload stores one wound photograph. The file is written before the row is
// created; the attention upsert runs last and is best-effort only, a failure
// there never rolls back the upload.
func (s *imagenService) Upload(ctx context.Context, pacienteID uint, file FilePayload) (*UploadResult, error) {
	uploader, err := s.requireClinicalUploader(ctx)
	if err != nil {
		return nil, err
	}

	paciente, err := s.pacienteRepo.GetByID(ctx, nil, pacienteID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch paciente: %w", err)
	}
	if paciente == nil {
		return nil, apperr.NotFound("El paciente no existe")
	}

	imagen, err := s.storeOne(ctx, pacienteID, file, 0)
	if err != nil {
		return nil, err
	}

	atencionCreada := s.upsertAtencion(ctx, pacienteID, uploader)
	return &UploadResult{Imagen: imagen, AtencionCreada: atencionCreada}, nil
}

// UploadBulk processes each file independently so one rejected file never
// blocks its siblings. Indices in the error list are 1-based, matching the
// position of the file in the request.
func (s *imagenService) UploadBulk(ctx context.Context, pacienteID uint, files []FilePayload) (*BulkUploadResult, error) {
	uploader, err := s.requireClinicalUploader(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, apperr.Validation("Se requiere al menos una imagen")
	}

	paciente, err := s.pacienteRepo.GetByID(ctx, nil, pacienteID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch paciente: %w", err)
	}
	if paciente == nil {
		return nil, apperr.NotFound("El paciente no existe")
	}

	result := &BulkUploadResult{}
	for i, file := range files {
		imagen, err := s.storeOne(ctx, pacienteID, file, i+1)
		if err != nil {
			s.log.Warn("Bulk upload entry rejected", "indice", i+1, "archivo", file.Filename, "error", err)
			result.Errores = append(result.Errores, BulkError{
				Indice:  i + 1,
				Archivo: file.Filename,
				Mensaje: err.Error(),
			})
			continue
		}
		result.Imagenes = append(result.Imagenes, imagen)
	}

	// One attention attempt per batch, whatever the per-file outcomes.
	result.AtencionCreada = s.upsertAtencion(ctx, pacienteID, uploader)
	return result, nil
}

func (s *imagenService) storeOne(ctx context.Context, pacienteID uint, file FilePayload, seq int) (*types.Imagen, error) {
	if len(file.Data) == 0 {
		return nil, apperr.Validation("La imagen esta vacia")
	}
	head := file.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if !utils.IsJpeg(file.ContentType, head) {
		return nil, apperr.Validation("Solo se aceptan imagenes JPEG")
	}

	name := blobstore.DeriveImageName(pacienteID, seq)
	if err := s.store.WriteImage(name, bytes.NewReader(file.Data)); err != nil {
		return nil, fmt.Errorf("Failed to write image %s: %w", name, apperr.ErrStorage)
	}

	imagen := &types.Imagen{
		NombreArchivo: file.Filename,
		RutaArchivo:   name,
		FechaCaptura:  time.Now(),
		PacienteID:    pacienteID,
	}
	if _, err := s.imagenRepo.Create(ctx, nil, imagen); err != nil {
		// Roll back the orphaned file; the row is the source of truth.
		if rmErr := s.store.RemoveImage(name); rmErr != nil {
			s.log.Warn("Failed to remove orphaned image file", "archivo", name, "error", rmErr)
		}
		return nil, fmt.Errorf("Failed to create imagen row: %w", err)
	}
	return imagen, nil
}

func (s *imagenService) upsertAtencion(ctx context.Context, pacienteID uint, uploader *requestdata.RequestData) bool {
	profesional, err := s.profesionalRepo.GetByUserID(ctx, nil, uploader.Rut)
	if err != nil || profesional == nil {
		s.log.Warn("Uploader has no professional profile, skipping atencion", "rut", uploader.Rut, "error", err)
		return false
	}
	if _, err := s.atencionService.Upsert(ctx, nil, pacienteID, profesional.ID); err != nil {
		s.log.Warn("Atencion upsert failed", "paciente_id", pacienteID, "profesional_id", profesional.ID, "error", err)
		return false
	}
	return true
}

func (s *imagenService) requireClinicalUploader(ctx context.Context) (*requestdata.RequestData, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return nil, fmt.Errorf("no hay sesion activa: %w", apperr.ErrUnauthorized)
	}
	if rd.Rol != types.RolDoctor && rd.Rol != types.RolEnfermera {
		return nil, fmt.Errorf("solo personal clinico puede subir imagenes: %w", apperr.ErrForbidden)
	}
	return rd, nil
}

func (s *imagenService) Download(ctx context.Context, imagenID uint) ([]byte, *types.Imagen, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, nil, apperr.NotFound("La imagen no existe")
	}
	data, err := s.store.ReadImage(imagen.RutaArchivo)
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to read image %s: %w", imagen.RutaArchivo, apperr.ErrStorage)
	}
	return data, imagen, nil
}

// ReplaceFile swaps the stored photograph of an existing record. The old file
// is deleted first so a crashed replacement cannot leave two files claiming
// the same record.
func (s *imagenService) ReplaceFile(ctx context.Context, imagenID uint, file FilePayload) (*types.Imagen, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}

	if len(file.Data) == 0 {
		return nil, apperr.Validation("La imagen esta vacia")
	}
	head := file.Data
	if len(head) > 512 {
		head = head[:512]
	}
	if !utils.IsJpeg(file.ContentType, head) {
		return nil, apperr.Validation("Solo se aceptan imagenes JPEG")
	}

	if err := s.store.RemoveImage(imagen.RutaArchivo); err != nil {
		return nil, fmt.Errorf("Failed to remove previous image %s: %w", imagen.RutaArchivo, apperr.ErrStorage)
	}

	name := blobstore.DeriveImageName(imagen.PacienteID, 0)
	if err := s.store.WriteImage(name, bytes.NewReader(file.Data)); err != nil {
		return nil, fmt.Errorf("Failed to write image %s: %w", name, apperr.ErrStorage)
	}

	imagen.NombreArchivo = file.Filename
	imagen.RutaArchivo = name
	imagen.FechaCaptura = time.Now()
	if err := s.imagenRepo.Update(ctx, nil, imagen); err != nil {
		return nil, fmt.Errorf("Failed to update imagen row: %w", err)
	}
	return imagen, nil
}

func (s *imagenService) Get(ctx context.Context, imagenID uint) (*types.Imagen, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}
	return imagen, nil
}

func (s *imagenService) List(ctx context.Context) ([]*types.Imagen, error) {
	return s.imagenRepo.GetAll(ctx, nil)
}

func (s *imagenService) ListByPaciente(ctx context.Context, pacienteID uint) ([]*types.Imagen, error) {
	return s.imagenRepo.GetByPacienteID(ctx, nil, pacienteID)
}

func (s *imagenService) Update(ctx context.Context, imagenID uint, in UpdateImagenInput) (*types.Imagen, error) {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return nil, apperr.NotFound("La imagen no existe")
	}
	if in.Lado != nil {
		imagen.Lado = in.Lado
	}
	if in.FechaCaptura != nil {
		imagen.FechaCaptura = *in.FechaCaptura
	}
	if err := s.imagenRepo.Update(ctx, nil, imagen); err != nil {
		return nil, fmt.Errorf("Failed to update imagen row: %w", err)
	}
	return imagen, nil
}

func (s *imagenService) Delete(ctx context.Context, imagenID uint) error {
	imagen, err := s.imagenRepo.GetByID(ctx, nil, imagenID)
	if err != nil {
		return fmt.Errorf("Failed to fetch imagen: %w", err)
	}
	if imagen == nil {
		return apperr.NotFound("La imagen no existe")
	}
	if _, err := s.imagenRepo.Delete(ctx, nil, imagenID); err != nil {
		return fmt.Errorf("Failed to delete imagen row: %w", err)
	}
	if err := s.store.RemoveImage(imagen.RutaArchivo); err != nil {
		s.log.Warn("Failed to remove image file after delete", "archivo", imagen.RutaArchivo, "error", err)
	}
	return nil
}
