package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) Create(c *gin.Context) {
	var body struct {
		Rut        string `json:"rut"`
		Nombre     string `json:"nombre"`
		Correo     string `json:"correo"`
		Contrasena string `json:"contrasena"`
		Rol        string `json:"rol"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	user, err := uh.userService.Create(c.Request.Context(), services.CreateUserInput{
		Rut:        body.Rut,
		Nombre:     body.Nombre,
		Correo:     body.Correo,
		Contrasena: body.Contrasena,
		Rol:        body.Rol,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uh *UserHandler) List(c *gin.Context) {
	users, err := uh.userService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Buscar looks a user up by rut in the request body, matching the original
// API shape.
func (uh *UserHandler) Buscar(c *gin.Context) {
	var body struct {
		Rut string `json:"rut"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	user, err := uh.userService.Get(c.Request.Context(), body.Rut)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uh *UserHandler) Update(c *gin.Context) {
	var body struct {
		Rut        string  `json:"rut"`
		Nombre     *string `json:"nombre"`
		Correo     *string `json:"correo"`
		Contrasena *string `json:"contrasena"`
		Rol        *string `json:"rol"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), body.Rut, services.UpdateUserInput{
		Nombre:     body.Nombre,
		Correo:     body.Correo,
		Contrasena: body.Contrasena,
		Rol:        body.Rol,
	})
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uh *UserHandler) Delete(c *gin.Context) {
	var body struct {
		Rut string `json:"rut"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	if err := uh.userService.Delete(c.Request.Context(), body.Rut); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado correctamente."})
}
