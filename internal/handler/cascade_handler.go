package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tinbr-service/internal/normalize"
)

// BlockRequest is the body of the block endpoint.
type BlockRequest struct {
	ClienteID any    `json:"cliente_id"`
	Motivo    string `json:"motivo" validate:"required"`
	Usuario   string `json:"usuario" validate:"required"`
}

// UnblockRequest is the body of the unblock endpoint.
type UnblockRequest struct {
	ClienteID any    `json:"cliente_id"`
	Usuario   string `json:"usuario" validate:"required"`
}

// Block blocks an owner and all of its properties
func (h *Handler) Block(c echo.Context) error {
	var req BlockRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Cascade.Block(c.Request().Context(), requestTenant(c, req.ClienteID), c.Param("id"), req.Motivo, req.Usuario)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Unblock reactivates an owner and all of its properties
func (h *Handler) Unblock(c echo.Context) error {
	var req UnblockRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Cascade.Unblock(c.Request().Context(), requestTenant(c, req.ClienteID), c.Param("id"), req.Usuario)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func requestTenant(c echo.Context, body any) string {
	if v := c.QueryParam("cliente_id"); v != "" {
		return normalize.TenantID(v)
	}
	return normalize.TenantID(body)
}
