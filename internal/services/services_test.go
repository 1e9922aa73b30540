package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/db"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/requestdata"
	"github.com/heridalab/woundcare-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	return log
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return gdb
}

func newTestStore(t *testing.T) *blobstore.Store {
	t.Helper()
	root := t.TempDir()
	store, err := blobstore.New(filepath.Join(root, "imgs"), filepath.Join(root, "masks"), newTestLogger(t))
	if err != nil {
		t.Fatalf("failed to init blobstore: %v", err)
	}
	return store
}

// jpegPayload returns bytes that pass both the declared and sniffed MIME
// checks.
func jpegPayload() []byte {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	for len(data) < 64 {
		data = append(data, 0xAB)
	}
	return data
}

func jpegFile(name string) FilePayload {
	return FilePayload{Filename: name, ContentType: "image/jpeg", Data: jpegPayload()}
}

func clinicalContext(rut, rol string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		Rut: rut,
		Rol: rol,
	})
}

type fixture struct {
	db              *gorm.DB
	store           *blobstore.Store
	userRepo        repos.UserRepo
	pacienteRepo    repos.PacienteRepo
	profesionalRepo repos.ProfesionalRepo
	imagenRepo      repos.ImagenRepo
	segRepo         repos.SegmentacionRepo
	scoreRepo       repos.PWATScoreRepo
	atencionRepo    repos.AtencionRepo
	atencionService AtencionService
	log             *logger.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := newTestLogger(t)
	gdb := newTestDB(t)
	f := &fixture{
		db:              gdb,
		store:           newTestStore(t),
		userRepo:        repos.NewUserRepo(gdb, log),
		pacienteRepo:    repos.NewPacienteRepo(gdb, log),
		profesionalRepo: repos.NewProfesionalRepo(gdb, log),
		imagenRepo:      repos.NewImagenRepo(gdb, log),
		segRepo:         repos.NewSegmentacionRepo(gdb, log),
		scoreRepo:       repos.NewPWATScoreRepo(gdb, log),
		atencionRepo:    repos.NewAtencionRepo(gdb, log),
		log:             log,
	}
	f.atencionService = NewAtencionService(f.atencionRepo, log)
	return f
}

func (f *fixture) imagenService() ImagenService {
	return NewImagenService(f.imagenRepo, f.pacienteRepo, f.profesionalRepo, f.atencionService, f.store, f.log)
}

func (f *fixture) segmentacionService(inv invoker.Invoker) SegmentacionService {
	return NewSegmentacionService(f.segRepo, f.imagenRepo, f.store, inv, "radiomics", f.log)
}

func (f *fixture) pwatService(inv invoker.Invoker) PWATScoreService {
	return NewPWATScoreService(f.scoreRepo, f.segRepo, f.imagenRepo, f.store, inv, "pyradiomics_env12", f.log)
}

func (f *fixture) seedUser(t *testing.T, rut, rol string) *types.User {
	t.Helper()
	user := &types.User{
		Rut:            rut,
		Nombre:         "Test User",
		Correo:         rut + "@example.test",
		ContrasenaHash: "x",
		Rol:            rol,
	}
	if _, err := f.userRepo.Create(context.Background(), nil, user); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

func (f *fixture) seedPaciente(t *testing.T, userRut string) *types.Paciente {
	t.Helper()
	paciente := &types.Paciente{
		Nombre: "Paciente Prueba",
		Estado: types.EstadoEnTratamiento,
		UserID: userRut,
	}
	if _, err := f.pacienteRepo.Create(context.Background(), nil, paciente); err != nil {
		t.Fatalf("failed to seed paciente: %v", err)
	}
	return paciente
}

func (f *fixture) seedProfesional(t *testing.T, userRut string) *types.Profesional {
	t.Helper()
	profesional := &types.Profesional{
		Nombre: "Dra. Prueba",
		UserID: userRut,
	}
	if _, err := f.profesionalRepo.Create(context.Background(), nil, profesional); err != nil {
		t.Fatalf("failed to seed profesional: %v", err)
	}
	return profesional
}

// seedImagen writes the file and the row, the state Upload leaves behind.
func (f *fixture) seedImagen(t *testing.T, pacienteID uint) *types.Imagen {
	t.Helper()
	svc := f.imagenService()
	ctx := clinicalContext("1-9", types.RolDoctor)
	result, err := svc.Upload(ctx, pacienteID, jpegFile("herida.jpg"))
	if err != nil {
		t.Fatalf("failed to seed imagen: %v", err)
	}
	return result.Imagen
}

// fakeInvoker records requests and plays back a scripted response.
type fakeInvoker struct {
	out   []byte
	err   error
	calls []invoker.Request
}

func (fi *fakeInvoker) Run(_ context.Context, req invoker.Request) ([]byte, error) {
	fi.calls = append(fi.calls, req)
	if fi.err != nil {
		return nil, fi.err
	}
	return fi.out, nil
}
