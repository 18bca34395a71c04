package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tinbr-service/internal/normalize"
	"tinbr-service/pkg/logger"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Login     string `json:"login" validate:"required"`
	Senha     string `json:"senha" validate:"required"`
	ClienteID any    `json:"cliente_id"`
}

// Login checks the credentials and returns the user without its password.
// No session or token is issued.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	tenantID := c.QueryParam("cliente_id")
	if tenantID == "" {
		tenantID = normalize.TenantID(req.ClienteID)
	}

	user, err := h.Auth.Login(c.Request().Context(), req.Login, req.Senha, tenantID)
	if err != nil {
		logger.FromContext(c).Info("Login failed", zap.String("cliente_id", tenantID))
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sucesso":  true,
		"mensagem": "login realizado com sucesso",
		"usuario":  user,
	})
}
