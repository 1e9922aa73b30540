package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type PacienteHandler struct {
	pacienteService services.PacienteService
}

func NewPacienteHandler(pacienteService services.PacienteService) *PacienteHandler {
	return &PacienteHandler{pacienteService: pacienteService}
}

func (ph *PacienteHandler) Create(c *gin.Context) {
	var body struct {
		Nombre          string     `json:"nombre"`
		FechaNacimiento *time.Time `json:"fecha_nacimiento"`
		Sexo            string     `json:"sexo"`
		Telefono        string     `json:"telefono"`
		Direccion       string     `json:"direccion"`
		UserID          string     `json:"user_id"`
		ProfesionalID   *uint      `json:"profesional_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	result, err := ph.pacienteService.Create(c.Request.Context(), services.CreatePacienteInput{
		Nombre:          body.Nombre,
		FechaNacimiento: body.FechaNacimiento,
		Sexo:            body.Sexo,
		Telefono:        body.Telefono,
		Direccion:       body.Direccion,
		UserID:          body.UserID,
		ProfesionalID:   body.ProfesionalID,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"paciente":        result.Paciente,
		"atencion_creada": result.AtencionCreada,
	})
}

func (ph *PacienteHandler) List(c *gin.Context) {
	pacientes, err := ph.pacienteService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pacientes)
}

func (ph *PacienteHandler) Buscar(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	paciente, err := ph.pacienteService.Get(c.Request.Context(), body.ID)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paciente)
}

func (ph *PacienteHandler) Update(c *gin.Context) {
	var body struct {
		ID        uint    `json:"id"`
		Nombre    *string `json:"nombre"`
		Telefono  *string `json:"telefono"`
		Direccion *string `json:"direccion"`
		Estado    *string `json:"estado"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	paciente, err := ph.pacienteService.Update(c.Request.Context(), body.ID, services.UpdatePacienteInput{
		Nombre:    body.Nombre,
		Telefono:  body.Telefono,
		Direccion: body.Direccion,
		Estado:    body.Estado,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, paciente)
}

func (ph *PacienteHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := ph.pacienteService.Delete(c.Request.Context(), body.ID); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Paciente eliminado correctamente."})
}
