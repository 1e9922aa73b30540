package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type SegmentacionHandler struct {
	segmentacionService services.SegmentacionService
}

func NewSegmentacionHandler(segmentacionService services.SegmentacionService) *SegmentacionHandler {
	return &SegmentacionHandler{segmentacionService: segmentacionService}
}

// CreateAutomatic launches the predictor for the image named in the body.
func (sh *SegmentacionHandler) CreateAutomatic(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	segmentacion, err := sh.segmentacionService.CreateAutomatic(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"segmentacionId": segmentacion.ID})
}

// CreateManual receives the image id and a clinician-drawn mask file.
func (sh *SegmentacionHandler) CreateManual(c *gin.Context) {
	imagenID, err := formUint(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	header, err := c.FormFile("mascara")
	if err != nil {
		RespondError(c, apperr.Validation("Se requiere el archivo 'mascara'"))
		return
	}
	payload, err := readFilePayload(header)
	if err != nil {
		RespondError(c, err)
		return
	}
	segmentacion, err := sh.segmentacionService.CreateManual(c.Request.Context(), imagenID, payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"segmentacionId": segmentacion.ID})
}

func (sh *SegmentacionHandler) EditMask(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	header, err := c.FormFile("mascara")
	if err != nil {
		RespondError(c, apperr.Validation("Se requiere el archivo 'mascara'"))
		return
	}
	payload, err := readFilePayload(header)
	if err != nil {
		RespondError(c, err)
		return
	}
	segmentacion, err := sh.segmentacionService.EditMask(c.Request.Context(), id, payload)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"segmentacionId": segmentacion.ID})
}

// DownloadMask serves the latest mask for the image id in the path.
func (sh *SegmentacionHandler) DownloadMask(c *gin.Context) {
	imagenID, err := parseIDParam(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	data, err := sh.segmentacionService.DownloadMaskByImagen(c.Request.Context(), imagenID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (sh *SegmentacionHandler) List(c *gin.Context) {
	segmentaciones, err := sh.segmentacionService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, segmentaciones)
}

func (sh *SegmentacionHandler) Buscar(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	segmentacion, err := sh.segmentacionService.Get(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, segmentacion)
}

func (sh *SegmentacionHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := sh.segmentacionService.Delete(c.Request.Context(), body.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Segmentación eliminada correctamente."})
}
