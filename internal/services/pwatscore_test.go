package services

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/types"
)

// segmentedImagen seeds an image with a manual mask already on disk.
func segmentedImagen(t *testing.T, f *fixture) (*types.Imagen, *types.Segmentacion) {
	t.Helper()
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)
	seg, err := f.segmentacionService(&fakeInvoker{}).CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg"))
	if err != nil {
		t.Fatalf("failed to seed segmentacion: %v", err)
	}
	return imagen, seg
}

func TestPredictUnknownImagen(t *testing.T) {
	f := newFixture(t)
	svc := f.pwatService(&fakeInvoker{})
	_, err := svc.Predict(context.Background(), 99)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPredictWithoutSegmentacion(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	inv := &fakeInvoker{}
	svc := f.pwatService(inv)
	_, err := svc.Predict(context.Background(), imagen.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("predictor must not run without a segmentation")
	}
}

func TestPredictRejectsEmptyMask(t *testing.T) {
	f := newFixture(t)
	imagen, seg := segmentedImagen(t, f)
	if err := f.store.RemoveMask(seg.RutaMascara); err != nil {
		t.Fatalf("failed to drop mask file: %v", err)
	}

	inv := &fakeInvoker{}
	svc := f.pwatService(inv)
	_, err := svc.Predict(context.Background(), imagen.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for missing mask, got %v", err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("predictor must not run against a missing mask")
	}
}

func TestPredictRejectsEmptyImageFile(t *testing.T) {
	f := newFixture(t)
	imagen, _ := segmentedImagen(t, f)
	if err := os.Truncate(f.store.ImagePath(imagen.RutaArchivo), 0); err != nil {
		t.Fatalf("failed to truncate image file: %v", err)
	}

	inv := &fakeInvoker{}
	svc := f.pwatService(inv)
	_, err := svc.Predict(context.Background(), imagen.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for empty image file, got %v", err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("scorer must not run against an empty image file")
	}

	scores, err := f.scoreRepo.GetByImagenID(context.Background(), nil, imagen.ID)
	if err != nil {
		t.Fatalf("failed to list scores: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("no score row must be persisted, got %d", len(scores))
	}
}

func TestPredictRejectsMissingImageFile(t *testing.T) {
	f := newFixture(t)
	imagen, _ := segmentedImagen(t, f)
	if err := f.store.RemoveImage(imagen.RutaArchivo); err != nil {
		t.Fatalf("failed to drop image file: %v", err)
	}

	inv := &fakeInvoker{}
	svc := f.pwatService(inv)
	_, err := svc.Predict(context.Background(), imagen.ID)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for missing image file, got %v", err)
	}
	if len(inv.calls) != 0 {
		t.Fatalf("scorer must not run against a missing image file")
	}
}

func TestPredictPersistsModelScore(t *testing.T) {
	f := newFixture(t)
	imagen, seg := segmentedImagen(t, f)

	inv := &fakeInvoker{out: []byte(`{"Cat3":1,"Cat4":2,"Cat5":3,"Cat6":4,"Cat7":0,"Cat8":1}` + "\n")}
	svc := f.pwatService(inv)
	result, err := svc.Predict(context.Background(), imagen.ID)
	if err != nil {
		t.Fatalf("predict failed: %v", err)
	}
	want := Categorias{Cat3: 1, Cat4: 2, Cat5: 3, Cat6: 4, Cat7: 0, Cat8: 1}
	if result.Categorias != want {
		t.Fatalf("unexpected categorias %+v", result.Categorias)
	}
	if result.Score.Evaluador != types.EvaluadorModelo {
		t.Fatalf("expected evaluador modelo, got %q", result.Score.Evaluador)
	}
	if result.Score.SegmentacionID != seg.ID {
		t.Fatalf("score not linked to segmentacion %d", seg.ID)
	}

	if len(inv.calls) != 1 {
		t.Fatalf("expected 1 predictor call, got %d", len(inv.calls))
	}
	call := inv.calls[0]
	if call.Mode != invoker.ModePredecir {
		t.Fatalf("expected mode %q, got %q", invoker.ModePredecir, call.Mode)
	}
	if call.ImagePath != imagen.RutaArchivo || call.MaskPath != seg.RutaMascara {
		t.Fatalf("predictor fed wrong artifacts: %+v", call)
	}
	if call.CondaEnv != "pyradiomics_env12" {
		t.Fatalf("expected conda env pyradiomics_env12, got %q", call.CondaEnv)
	}

	stored, err := f.scoreRepo.GetByID(context.Background(), nil, result.Score.ID)
	if err != nil || stored == nil {
		t.Fatalf("expected persisted score, got %v (err %v)", stored, err)
	}
	if stored.Cat5 != 3 {
		t.Fatalf("persisted cat5 = %d, want 3", stored.Cat5)
	}
}

func TestPredictRejectsMalformedOutput(t *testing.T) {
	f := newFixture(t)
	imagen, _ := segmentedImagen(t, f)

	svc := f.pwatService(&fakeInvoker{out: []byte("Traceback (most recent call last)")})
	_, err := svc.Predict(context.Background(), imagen.ID)
	var invalid *apperr.InvalidOutputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOutputError, got %v", err)
	}
	if invalid.RawOutput != "Traceback (most recent call last)" {
		t.Fatalf("expected raw output to be preserved, got %q", invalid.RawOutput)
	}
}

func TestPredictRejectsIncompleteOutput(t *testing.T) {
	f := newFixture(t)
	imagen, _ := segmentedImagen(t, f)

	svc := f.pwatService(&fakeInvoker{out: []byte(`{"Cat3":1,"Cat4":2}`)})
	_, err := svc.Predict(context.Background(), imagen.ID)
	var invalid *apperr.InvalidOutputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidOutputError, got %v", err)
	}
}

func TestCreateExpertValidatesRange(t *testing.T) {
	f := newFixture(t)
	svc := f.pwatService(&fakeInvoker{})
	_, err := svc.CreateExpert(context.Background(), ExpertScoreInput{
		ImagenID: 1, Cat3: 5, Cat4: 0, Cat5: 0, Cat6: 0, Cat7: 0, Cat8: 0,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateExpertPersists(t *testing.T) {
	f := newFixture(t)
	imagen, seg := segmentedImagen(t, f)

	svc := f.pwatService(&fakeInvoker{})
	cat1 := 2
	score, err := svc.CreateExpert(context.Background(), ExpertScoreInput{
		ImagenID:      imagen.ID,
		Cat1:          &cat1,
		Cat3:          1,
		Cat4:          2,
		Cat5:          3,
		Cat6:          4,
		Cat7:          0,
		Cat8:          1,
		Observaciones: "borde eritematoso",
	})
	if err != nil {
		t.Fatalf("expert create failed: %v", err)
	}
	if score.Evaluador != types.EvaluadorExperto {
		t.Fatalf("expected evaluador experto, got %q", score.Evaluador)
	}
	if score.Cat1 == nil || *score.Cat1 != 2 {
		t.Fatalf("expected cat1=2, got %v", score.Cat1)
	}
	if score.SegmentacionID != seg.ID {
		t.Fatalf("score not linked to segmentacion %d", seg.ID)
	}

	scores, err := svc.ListByImagen(context.Background(), imagen.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("expected 1 score, got %d", len(scores))
	}
}
