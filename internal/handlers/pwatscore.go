package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type PWATScoreHandler struct {
	pwatScoreService services.PWATScoreService
}

func NewPWATScoreHandler(pwatScoreService services.PWATScoreService) *PWATScoreHandler {
	return &PWATScoreHandler{pwatScoreService: pwatScoreService}
}

// Predict runs the model over an already-segmented image.
func (ph *PWATScoreHandler) Predict(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	result, err := ph.pwatScoreService.Predict(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"pwatscoreId": result.Score.ID,
		"categorias":  result.Categorias,
	})
}

// CreateExpert stores a clinician evaluation with all eight categories.
func (ph *PWATScoreHandler) CreateExpert(c *gin.Context) {
	var body struct {
		ID            uint   `json:"id"`
		Cat1          *int   `json:"cat1"`
		Cat2          *int   `json:"cat2"`
		Cat3          *int   `json:"cat3"`
		Cat4          *int   `json:"cat4"`
		Cat5          *int   `json:"cat5"`
		Cat6          *int   `json:"cat6"`
		Cat7          *int   `json:"cat7"`
		Cat8          *int   `json:"cat8"`
		Observaciones string `json:"observaciones"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	for _, cat := range []*int{body.Cat3, body.Cat4, body.Cat5, body.Cat6, body.Cat7, body.Cat8} {
		if cat == nil {
			RespondError(c, apperr.Validation("Las categorías 3 a 8 son requeridas"))
			return
		}
	}
	score, err := ph.pwatScoreService.CreateExpert(c.Request.Context(), services.ExpertScoreInput{
		ImagenID:      body.ID,
		Cat1:          body.Cat1,
		Cat2:          body.Cat2,
		Cat3:          *body.Cat3,
		Cat4:          *body.Cat4,
		Cat5:          *body.Cat5,
		Cat6:          *body.Cat6,
		Cat7:          *body.Cat7,
		Cat8:          *body.Cat8,
		Observaciones: body.Observaciones,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, score)
}

func (ph *PWATScoreHandler) List(c *gin.Context) {
	if imagenParam := c.Query("imagen_id"); imagenParam != "" {
		imagenID, err := strconv.ParseUint(imagenParam, 10, 32)
		if err != nil {
			RespondError(c, apperr.Validation("El imagen_id no es válido"))
			return
		}
		scores, err := ph.pwatScoreService.ListByImagen(c.Request.Context(), uint(imagenID))
		if err != nil {
			RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, scores)
		return
	}
	scores, err := ph.pwatScoreService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scores)
}

func (ph *PWATScoreHandler) Buscar(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	score, err := ph.pwatScoreService.Get(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func (ph *PWATScoreHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := ph.pwatScoreService.Delete(c.Request.Context(), body.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PWATScore eliminado correctamente."})
}
