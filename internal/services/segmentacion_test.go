package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/types"
)

func TestCreateManualStoresMaskAndRow(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	svc := f.segmentacionService(&fakeInvoker{})
	seg, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg"))
	if err != nil {
		t.Fatalf("manual create failed: %v", err)
	}
	if seg.Metodo != types.MetodoManual {
		t.Fatalf("expected metodo manual, got %q", seg.Metodo)
	}
	want := blobstore.MaskNameFor(imagen.RutaArchivo)
	if seg.RutaMascara != want {
		t.Fatalf("expected mask name %q, got %q", want, seg.RutaMascara)
	}
	ok, err := f.store.StatNonEmptyMask(seg.RutaMascara)
	if err != nil || !ok {
		t.Fatalf("expected non-empty mask on disk, ok=%v err=%v", ok, err)
	}
}

func TestCreateManualDuplicateConflicts(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	svc := f.segmentacionService(&fakeInvoker{})
	if _, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg")); err != nil {
		t.Fatalf("first manual create failed: %v", err)
	}
	_, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("otra.jpg"))
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateManualUnknownImagen(t *testing.T) {
	f := newFixture(t)
	svc := f.segmentacionService(&fakeInvoker{})
	_, err := svc.CreateManual(context.Background(), 77, jpegFile("mascara.jpg"))
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateAutomaticInvokesPredictor(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	inv := &fakeInvoker{out: []byte("")}
	svc := f.segmentacionService(inv)
	seg, err := svc.CreateAutomatic(context.Background(), imagen.ID)
	if err != nil {
		t.Fatalf("automatic create failed: %v", err)
	}
	if seg.Metodo != types.MetodoAutomatica {
		t.Fatalf("expected metodo automatica, got %q", seg.Metodo)
	}
	if seg.RutaMascara != blobstore.MaskNameFor(imagen.RutaArchivo) {
		t.Fatalf("unexpected mask name %q", seg.RutaMascara)
	}
	if len(inv.calls) != 1 {
		t.Fatalf("expected 1 predictor call, got %d", len(inv.calls))
	}
	call := inv.calls[0]
	if call.Mode != invoker.ModePredecirMascara {
		t.Fatalf("expected mode %q, got %q", invoker.ModePredecirMascara, call.Mode)
	}
	if call.ImagePath != imagen.RutaArchivo {
		t.Fatalf("expected image path %q, got %q", imagen.RutaArchivo, call.ImagePath)
	}
	if call.CondaEnv != "radiomics" {
		t.Fatalf("expected conda env radiomics, got %q", call.CondaEnv)
	}
}

func TestCreateAutomaticPredictorFailureLeavesNoRow(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	procErr := &apperr.ExternalProcessError{Strategy: "conda", ExitCode: 1, Stderr: "boom"}
	svc := f.segmentacionService(&fakeInvoker{err: procErr})
	_, err := svc.CreateAutomatic(context.Background(), imagen.ID)
	var target *apperr.ExternalProcessError
	if !errors.As(err, &target) {
		t.Fatalf("expected ExternalProcessError, got %v", err)
	}

	exists, err := f.segRepo.ExistsByImagenID(context.Background(), nil, imagen.ID)
	if err != nil {
		t.Fatalf("exists check failed: %v", err)
	}
	if exists {
		t.Fatalf("expected no segmentacion row after predictor failure")
	}
}

func TestEditMaskOverwritesInPlace(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	svc := f.segmentacionService(&fakeInvoker{})
	seg, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg"))
	if err != nil {
		t.Fatalf("manual create failed: %v", err)
	}
	before := seg.FechaCreacion

	replacement := jpegPayload()
	replacement = append(replacement, 0x01, 0x02, 0x03)
	updated, err := svc.EditMask(context.Background(), seg.ID, FilePayload{
		Filename: "corregida.jpg", ContentType: "image/jpeg", Data: replacement,
	})
	if err != nil {
		t.Fatalf("edit mask failed: %v", err)
	}
	if updated.ID != seg.ID || updated.RutaMascara != seg.RutaMascara {
		t.Fatalf("edit must keep the row identity and mask name")
	}
	if !updated.FechaCreacion.After(before) {
		t.Fatalf("expected creation timestamp to move forward")
	}

	data, err := f.store.ReadMask(seg.RutaMascara)
	if err != nil {
		t.Fatalf("failed to read mask: %v", err)
	}
	if !bytes.Equal(data, replacement) {
		t.Fatalf("mask on disk was not replaced")
	}
}

func TestDownloadMaskByImagenServesLatest(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	svc := f.segmentacionService(&fakeInvoker{})
	if _, err := svc.DownloadMaskByImagen(context.Background(), imagen.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found before any segmentation, got %v", err)
	}

	if _, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg")); err != nil {
		t.Fatalf("manual create failed: %v", err)
	}
	data, err := svc.DownloadMaskByImagen(context.Background(), imagen.ID)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !bytes.Equal(data, jpegPayload()) {
		t.Fatalf("downloaded mask differs from the uploaded bytes")
	}
}

func TestGetLatestBreaksTimestampTiesOnID(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	at := time.Now()
	first := &types.Segmentacion{
		Metodo:        types.MetodoAutomatica,
		RutaMascara:   "a.jpg",
		FechaCreacion: at,
		ImagenID:      imagen.ID,
	}
	second := &types.Segmentacion{
		Metodo:        types.MetodoAutomatica,
		RutaMascara:   "b.jpg",
		FechaCreacion: at,
		ImagenID:      imagen.ID,
	}
	for _, seg := range []*types.Segmentacion{first, second} {
		if _, err := f.segRepo.Create(context.Background(), nil, seg); err != nil {
			t.Fatalf("failed to create segmentacion: %v", err)
		}
	}

	latest, err := f.segRepo.GetLatestByImagenID(context.Background(), nil, imagen.ID)
	if err != nil || latest == nil {
		t.Fatalf("failed to fetch latest: %v (err %v)", latest, err)
	}
	if latest.ID != second.ID {
		t.Fatalf("expected id %d as latest, got %d", second.ID, latest.ID)
	}
}

func TestDeleteSegmentacionRemovesMaskFile(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "2-7", types.RolPaciente)
	paciente := f.seedPaciente(t, "2-7")
	imagen := f.seedImagen(t, paciente.ID)

	svc := f.segmentacionService(&fakeInvoker{})
	seg, err := svc.CreateManual(context.Background(), imagen.ID, jpegFile("mascara.jpg"))
	if err != nil {
		t.Fatalf("manual create failed: %v", err)
	}
	if err := svc.Delete(context.Background(), seg.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if ok, _ := f.store.StatNonEmptyMask(seg.RutaMascara); ok {
		t.Fatalf("expected mask file to be removed")
	}
	if _, err := svc.Get(context.Background(), seg.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
