package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/heridalab/woundcare-backend/internal/blobstore"
	"github.com/heridalab/woundcare-backend/internal/db"
	"github.com/heridalab/woundcare-backend/internal/handlers"
	"github.com/heridalab/woundcare-backend/internal/invoker"
	"github.com/heridalab/woundcare-backend/internal/logger"
	"github.com/heridalab/woundcare-backend/internal/middleware"
	"github.com/heridalab/woundcare-backend/internal/repos"
	"github.com/heridalab/woundcare-backend/internal/services"
	"github.com/heridalab/woundcare-backend/internal/tokenstore"
	"github.com/heridalab/woundcare-backend/internal/types"
	"github.com/heridalab/woundcare-backend/internal/utils"
)

// scriptedPredictor acts like the python tool: the mask pass writes the mask
// file next to the image stem, the scoring pass prints category JSON.
type scriptedPredictor struct {
	store *blobstore.Store
}

func (sp *scriptedPredictor) Run(_ context.Context, req invoker.Request) ([]byte, error) {
	if req.Mode == invoker.ModePredecirMascara {
		mask := blobstore.MaskNameFor(req.ImagePath)
		if err := sp.store.WriteMask(mask, bytes.NewReader([]byte{0x01})); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return []byte(`{"Cat3":1,"Cat4":2,"Cat5":3,"Cat6":4,"Cat7":0,"Cat8":1}`), nil
}

type testEnv struct {
	router *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	root := t.TempDir()
	store, err := blobstore.New(filepath.Join(root, "imgs"), filepath.Join(root, "masks"), log)
	if err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	predictor := &scriptedPredictor{store: store}

	userRepo := repos.NewUserRepo(gdb, log)
	pacienteRepo := repos.NewPacienteRepo(gdb, log)
	profesionalRepo := repos.NewProfesionalRepo(gdb, log)
	imagenRepo := repos.NewImagenRepo(gdb, log)
	segRepo := repos.NewSegmentacionRepo(gdb, log)
	scoreRepo := repos.NewPWATScoreRepo(gdb, log)
	atencionRepo := repos.NewAtencionRepo(gdb, log)

	authService := services.NewAuthService(userRepo, tokenstore.NewMemoryStore(), []byte("test-secret"), time.Hour, log)
	atencionService := services.NewAtencionService(atencionRepo, log)
	userService := services.NewUserService(userRepo, log)
	pacienteService := services.NewPacienteService(pacienteRepo, userRepo, atencionService, log)
	profesionalService := services.NewProfesionalService(profesionalRepo, userRepo, log)
	imagenService := services.NewImagenService(imagenRepo, pacienteRepo, profesionalRepo, atencionService, store, log)
	segService := services.NewSegmentacionService(segRepo, imagenRepo, store, predictor, "radiomics", log)
	pwatService := services.NewPWATScoreService(scoreRepo, segRepo, imagenRepo, store, predictor, "pyradiomics_env12", log)

	router := NewRouter(RouterConfig{
		AuthHandler:         handlers.NewAuthHandler(authService),
		AuthMiddleware:      middleware.NewAuthMiddleware(log, authService),
		UserHandler:         handlers.NewUserHandler(userService),
		PacienteHandler:     handlers.NewPacienteHandler(pacienteService),
		ProfesionalHandler:  handlers.NewProfesionalHandler(profesionalService),
		ImagenHandler:       handlers.NewImagenHandler(imagenService),
		SegmentacionHandler: handlers.NewSegmentacionHandler(segService),
		PWATScoreHandler:    handlers.NewPWATScoreHandler(pwatService),
	})

	env := &testEnv{router: router}
	env.seed(t, userRepo, pacienteRepo, profesionalRepo)
	return env
}

func (te *testEnv) seed(t *testing.T, userRepo repos.UserRepo, pacienteRepo repos.PacienteRepo, profesionalRepo repos.ProfesionalRepo) {
	t.Helper()
	ctx := context.Background()
	hash, err := utils.HashPassword("secreto123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	doctor := &types.User{Rut: "11111111-1", Nombre: "Dra. Soto", Correo: "soto@example.test", ContrasenaHash: hash, Rol: types.RolDoctor}
	if _, err := userRepo.Create(ctx, nil, doctor); err != nil {
		t.Fatalf("failed to seed doctor: %v", err)
	}
	pacienteUser := &types.User{Rut: "22222222-2", Nombre: "Juan Perez", Correo: "perez@example.test", ContrasenaHash: hash, Rol: types.RolPaciente}
	if _, err := userRepo.Create(ctx, nil, pacienteUser); err != nil {
		t.Fatalf("failed to seed paciente user: %v", err)
	}
	if _, err := pacienteRepo.Create(ctx, nil, &types.Paciente{Nombre: "Juan Perez", Estado: types.EstadoEnTratamiento, UserID: "22222222-2"}); err != nil {
		t.Fatalf("failed to seed paciente: %v", err)
	}
	if _, err := profesionalRepo.Create(ctx, nil, &types.Profesional{Nombre: "Dra. Soto", UserID: "11111111-1"}); err != nil {
		t.Fatalf("failed to seed profesional: %v", err)
	}
}

func (te *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	te.router.ServeHTTP(rec, req)
	return rec
}

func (te *testEnv) login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"rut": "11111111-1", "contra": "secreto123"})
	req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := te.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	return out.Token
}

func jpegBytes() []byte {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	for len(data) < 64 {
		data = append(data, 0xAB)
	}
	return data
}

// multipartJpeg builds a form with the given id field and one JPEG file part.
func multipartJpeg(t *testing.T, idField, id, fileField, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField(idField, id); err != nil {
		t.Fatalf("failed to write form field: %v", err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
	header.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create file part: %v", err)
	}
	if _, err := part.Write(jpegBytes()); err != nil {
		t.Fatalf("failed to write file part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck returned %d", rec.Code)
	}

	// Artifact routes skip the token but still 404 on unknown ids.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/imagenes/999/archivo", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown image, got %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, httptest.NewRequest(http.MethodGet, "/imagenes", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/imagenes", nil), "not-a-token"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got %d", rec.Code)
	}
}

func TestWoundPipelineEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	// Upload one photograph for paciente 1.
	body, contentType := multipartJpeg(t, "id", "1", "imagen", "herida.jpg")
	req := authed(httptest.NewRequest(http.MethodPost, "/imagenes", body), token)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}
	var uploadOut struct {
		Imagen struct {
			ID uint `json:"id"`
		} `json:"imagen"`
		AtencionCreada bool `json:"atencion_creada"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploadOut); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}
	if uploadOut.Imagen.ID == 0 {
		t.Fatalf("expected an image id")
	}
	if !uploadOut.AtencionCreada {
		t.Fatalf("expected atencion_creada=true for a doctor with a profile")
	}
	imagenID := uploadOut.Imagen.ID

	// The raw file is publicly reachable.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/imagenes/%d/archivo", imagenID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("image download returned %d", rec.Code)
	}
	if !bytes.Equal(rec.Body.Bytes(), jpegBytes()) {
		t.Fatalf("downloaded image differs from upload")
	}

	// Automatic segmentation.
	segBody, _ := json.Marshal(map[string]uint{"id": imagenID})
	req = authed(httptest.NewRequest(http.MethodPost, "/segmentaciones/automatico", bytes.NewReader(segBody)), token)
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("automatic segmentation returned %d: %s", rec.Code, rec.Body.String())
	}
	var segOut struct {
		SegmentacionID uint `json:"segmentacionId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &segOut); err != nil {
		t.Fatalf("failed to decode segmentation response: %v", err)
	}
	if segOut.SegmentacionID == 0 {
		t.Fatalf("expected a segmentation id")
	}

	// The mask is served on the public artifact route, keyed by image id.
	rec = env.do(t, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/segmentaciones/%d/mask", imagenID), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("mask download returned %d: %s", rec.Code, rec.Body.String())
	}

	// A manual segmentation for the same image now conflicts.
	manualBody, manualType := multipartJpeg(t, "id", fmt.Sprint(imagenID), "mascara", "mascara.jpg")
	req = authed(httptest.NewRequest(http.MethodPost, "/segmentaciones/manual", manualBody), token)
	req.Header.Set("Content-Type", manualType)
	rec = env.do(t, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate segmentation, got %d: %s", rec.Code, rec.Body.String())
	}

	// PWAT prediction.
	scoreBody, _ := json.Marshal(map[string]uint{"id": imagenID})
	req = authed(httptest.NewRequest(http.MethodPost, "/pwatscore", bytes.NewReader(scoreBody)), token)
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("predict returned %d: %s", rec.Code, rec.Body.String())
	}
	var scoreOut struct {
		PWATScoreID uint `json:"pwatscoreId"`
		Categorias  struct {
			Cat3 int `json:"cat3"`
			Cat8 int `json:"cat8"`
		} `json:"categorias"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &scoreOut); err != nil {
		t.Fatalf("failed to decode predict response: %v", err)
	}
	if scoreOut.PWATScoreID == 0 {
		t.Fatalf("expected a score id")
	}
	if scoreOut.Categorias.Cat3 != 1 || scoreOut.Categorias.Cat8 != 1 {
		t.Fatalf("unexpected categorias %+v", scoreOut.Categorias)
	}
}

func TestPredictWithoutSegmentationIs404(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	body, contentType := multipartJpeg(t, "id", "1", "imagen", "herida.jpg")
	req := authed(httptest.NewRequest(http.MethodPost, "/imagenes", body), token)
	req.Header.Set("Content-Type", contentType)
	rec := env.do(t, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload returned %d: %s", rec.Code, rec.Body.String())
	}
	var uploadOut struct {
		Imagen struct {
			ID uint `json:"id"`
		} `json:"imagen"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &uploadOut); err != nil {
		t.Fatalf("failed to decode upload response: %v", err)
	}

	scoreBody, _ := json.Marshal(map[string]uint{"id": uploadOut.Imagen.ID})
	req = authed(httptest.NewRequest(http.MethodPost, "/pwatscore", bytes.NewReader(scoreBody)), token)
	req.Header.Set("Content-Type", "application/json")
	rec = env.do(t, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before segmentation, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if out.Message != "La segmentación no existe" {
		t.Fatalf("unexpected message %q", out.Message)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	req := authed(httptest.NewRequest(http.MethodPost, "/users/logout", nil), token)
	rec := env.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout returned %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/imagenes", nil), token))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
