package blobstore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

// Store keeps wound photographs and their segmentation masks in two flat
// directories. Database rows store only base filenames; the store owns the
// mapping to absolute paths so the directories can move without touching the
// records.
type Store struct {
	imgsDir  string
	masksDir string
	log      *logger.Logger
}

func New(imgsDir, masksDir string, baseLog *logger.Logger) (*Store, error) {
	storeLog := baseLog.With("service", "BlobStore")
	for _, dir := range []string{imgsDir, masksDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("Failed to create blob directory %s: %w", dir, err)
		}
	}
	return &Store{imgsDir: imgsDir, masksDir: masksDir, log: storeLog}, nil
}

func NewFromEnv(baseLog *logger.Logger) (*Store, error) {
	imgsDir := utils.GetEnv("IMGS_DIR", filepath.Join("categorizador", "predicts", "imgs"), baseLog)
	masksDir := utils.GetEnv("MASKS_DIR", filepath.Join("categorizador", "predicts", "masks"), baseLog)
	return New(imgsDir, masksDir, baseLog)
}

func (s *Store) ImgsDir() string  { return s.imgsDir }
func (s *Store) MasksDir() string { return s.masksDir }

func (s *Store) ImagePath(name string) string {
	return filepath.Join(s.imgsDir, filepath.Base(name))
}

func (s *Store) MaskPath(name string) string {
	return filepath.Join(s.masksDir, filepath.Base(name))
}

// DeriveImageName builds a collision-free filename for a new upload. seq
// distinguishes files inside one bulk request that share a timestamp.
func DeriveImageName(pacienteID uint, seq int) string {
	ts := time.Now().UTC().Format("20060102T150405")
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	if seq > 0 {
		return fmt.Sprintf("paciente-%d-%s-%s-%d.jpg", pacienteID, ts, short, seq)
	}
	return fmt.Sprintf("paciente-%d-%s-%s.jpg", pacienteID, ts, short)
}

// MaskNameFor maps an image filename to its mask filename. Both stores use
// the same base name so the predictor can pair them by stem.
func MaskNameFor(imageName string) string {
	base := filepath.Base(imageName)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".jpg"
}

func (s *Store) WriteImage(name string, r io.Reader) error {
	return writeAtomic(s.ImagePath(name), r)
}

func (s *Store) WriteMask(name string, r io.Reader) error {
	return writeAtomic(s.MaskPath(name), r)
}

// writeAtomic stages the payload in the target directory and renames it into
// place, so readers never observe a half-written file.
func writeAtomic(dst string, r io.Reader) error {
	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("Failed to stage file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("Failed to write staged file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Failed to close staged file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("Failed to move staged file into place: %w", err)
	}
	return nil
}

func (s *Store) ReadImage(name string) ([]byte, error) {
	return os.ReadFile(s.ImagePath(name))
}

func (s *Store) ReadMask(name string) ([]byte, error) {
	return os.ReadFile(s.MaskPath(name))
}

// StatNonEmptyImage reports whether the image is a regular file with at
// least one byte.
func (s *Store) StatNonEmptyImage(name string) (bool, error) {
	return statNonEmpty(s.ImagePath(name))
}

// StatNonEmptyMask reports whether the mask is a regular file with at least
// one byte. A zero-byte mask means a previous prediction died mid-write and
// must not feed the scorer.
func (s *Store) StatNonEmptyMask(name string) (bool, error) {
	return statNonEmpty(s.MaskPath(name))
}

func statNonEmpty(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

func (s *Store) ImageExists(name string) bool {
	_, err := os.Stat(s.ImagePath(name))
	return err == nil
}

func (s *Store) RemoveImage(name string) error {
	err := os.Remove(s.ImagePath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) RemoveMask(name string) error {
	err := os.Remove(s.MaskPath(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
