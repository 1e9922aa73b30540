package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type ImagenHandler struct {
	imagenService services.ImagenService
}

func NewImagenHandler(imagenService services.ImagenService) *ImagenHandler {
	return &ImagenHandler{imagenService: imagenService}
}

func readFilePayload(header *multipart.FileHeader) (services.FilePayload, error) {
	f, err := header.Open()
	if err != nil {
		return services.FilePayload{}, apperr.Validation("No se pudo leer el archivo")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return services.FilePayload{}, apperr.Validation("No se pudo leer el archivo")
	}
	return services.FilePayload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperr.Validation("El id no es válido")
	}
	return uint(id), nil
}

// Upload receives a multipart form with the patient id and one JPEG under
// the "imagen" field.
func (ih *ImagenHandler) Upload(c *gin.Context) {
	pacienteID, err := formUint(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	header, err := c.FormFile("imagen")
	if err != nil {
		RespondError(c, apperr.Validation("Se requiere el archivo 'imagen'"))
		return
	}
	payload, err := readFilePayload(header)
	if err != nil {
		RespondError(c, err)
		return
	}
	result, err := ih.imagenService.Upload(c.Request.Context(), pacienteID, payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"imagen":          result.Imagen,
		"atencion_creada": result.AtencionCreada,
	})
}

// UploadMultiple accepts several files under "imagenes". Files are processed
// independently; failures land in "errores" with their 1-based position.
func (ih *ImagenHandler) UploadMultiple(c *gin.Context) {
	pacienteID, err := formUint(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, apperr.Validation("Formulario multipart inválido"))
		return
	}
	headers := form.File["imagenes"]
	if len(headers) == 0 {
		RespondError(c, apperr.Validation("Se requiere al menos un archivo 'imagenes'"))
		return
	}

	files := make([]services.FilePayload, 0, len(headers))
	for _, header := range headers {
		payload, err := readFilePayload(header)
		if err != nil {
			RespondError(c, err)
			return
		}
		files = append(files, payload)
	}

	result, err := ih.imagenService.UploadBulk(c.Request.Context(), pacienteID, files)
	if err != nil {
		RespondError(c, err)
		return
	}
	errores := result.Errores
	if errores == nil {
		errores = []services.BulkError{}
	}
	c.JSON(http.StatusCreated, gin.H{
		"imagenes":        result.Imagenes,
		"errores":         errores,
		"atencion_creada": result.AtencionCreada,
	})
}

func (ih *ImagenHandler) Download(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	data, _, err := ih.imagenService.Download(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (ih *ImagenHandler) ReplaceFile(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	header, err := c.FormFile("imagen")
	if err != nil {
		RespondError(c, apperr.Validation("Se requiere el archivo 'imagen'"))
		return
	}
	payload, err := readFilePayload(header)
	if err != nil {
		RespondError(c, err)
		return
	}
	imagen, err := ih.imagenService.ReplaceFile(c.Request.Context(), id, payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imagen": imagen})
}

func (ih *ImagenHandler) List(c *gin.Context) {
	if pacienteParam := c.Query("paciente_id"); pacienteParam != "" {
		pacienteID, err := strconv.ParseUint(pacienteParam, 10, 32)
		if err != nil {
			RespondError(c, apperr.Validation("El paciente_id no es válido"))
			return
		}
		imagenes, err := ih.imagenService.ListByPaciente(c.Request.Context(), uint(pacienteID))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, imagenes)
		return
	}
	imagenes, err := ih.imagenService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imagenes)
}

func (ih *ImagenHandler) Buscar(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	imagen, err := ih.imagenService.Get(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imagen)
}

func (ih *ImagenHandler) Update(c *gin.Context) {
	var body struct {
		ID           uint       `json:"id"`
		Lado         *string    `json:"lado"`
		FechaCaptura *time.Time `json:"fecha_captura"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	imagen, err := ih.imagenService.Update(c.Request.Context(), body.ID, services.UpdateImagenInput{
		Lado:         body.Lado,
		FechaCaptura: body.FechaCaptura,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imagen)
}

func (ih *ImagenHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := ih.imagenService.Delete(c.Request.Context(), body.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Imagen eliminada correctamente."})
}

func formUint(c *gin.Context, field string) (uint, error) {
	raw := c.PostForm(field)
	if raw == "" {
		return 0, apperr.Validation("El campo '" + field + "' es requerido")
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Validation("El campo '" + field + "' no es válido")
	}
	return uint(val), nil
}
