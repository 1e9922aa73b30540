package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type ProfesionalHandler struct {
	profesionalService services.ProfesionalService
}

func NewProfesionalHandler(profesionalService services.ProfesionalService) *ProfesionalHandler {
	return &ProfesionalHandler{profesionalService: profesionalService}
}

func (ph *ProfesionalHandler) Create(c *gin.Context) {
	var body struct {
		Nombre       string `json:"nombre"`
		Especialidad string `json:"especialidad"`
		Telefono     string `json:"telefono"`
		UserID       string `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	profesional, err := ph.profesionalService.Create(c.Request.Context(), services.CreateProfesionalInput{
		Nombre:       body.Nombre,
		Especialidad: body.Especialidad,
		Telefono:     body.Telefono,
		UserID:       body.UserID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profesional)
}

func (ph *ProfesionalHandler) List(c *gin.Context) {
	profesionales, err := ph.profesionalService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profesionales)
}

func (ph *ProfesionalHandler) Buscar(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	profesional, err := ph.profesionalService.Get(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profesional)
}

func (ph *ProfesionalHandler) Update(c *gin.Context) {
	var body struct {
		ID           uint    `json:"id"`
		Nombre       *string `json:"nombre"`
		Especialidad *string `json:"especialidad"`
		Telefono     *string `json:"telefono"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	profesional, err := ph.profesionalService.Update(c.Request.Context(), body.ID, services.UpdateProfesionalInput{
		Nombre:       body.Nombre,
		Especialidad: body.Especialidad,
		Telefono:     body.Telefono,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profesional)
}

func (ph *ProfesionalHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := ph.profesionalService.Delete(c.Request.Context(), body.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profesional eliminado correctamente."})
}
