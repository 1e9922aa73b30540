package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heridalab/woundcare-backend/internal/apperr"
	"github.com/heridalab/woundcare-backend/internal/requestdata"
	"github.com/heridalab/woundcare-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Rut    string `json:"rut"`
		Contra string `json:"contra"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, apperr.Validation("Cuerpo de solicitud inválido"))
		return
	}
	token, err := ah.authService.Login(c.Request.Context(), body.Rut, body.Contra)
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.TokenString == "" {
		RespondError(c, apperr.ErrUnauthorized)
		return
	}
	if err := ah.authService.Logout(c.Request.Context(), rd.TokenString); err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada."})
}
