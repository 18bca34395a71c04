package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"tinbr-service/pkg/logger"
)

func (h *Handler) Root(c echo.Context) error {
	return c.String(http.StatusOK, "API funcionando!")
}

func (h *Handler) Teste(c echo.Context) error {
	return c.String(http.StatusOK, "API rodando corretamente!")
}

// HealthCheck handles the health check endpoint, ?check=store also pings the store
func (h *Handler) HealthCheck(c echo.Context) error {
	response := echo.Map{
		"status":  "healthy",
		"service": h.ServiceName,
		"time":    time.Now().Format(time.RFC3339),
	}

	if c.QueryParam("check") == "store" && h.Store != nil {
		if err := h.Store.Ping(c.Request().Context()); err != nil {
			logger.FromContext(c).Error("Store ping error", zap.Error(err))
			response["status"] = "error"
			response["store_status"] = "error"
			return c.JSON(http.StatusServiceUnavailable, response)
		}
		response["store_status"] = "ok"
	}

	return c.JSON(http.StatusOK, response)
}
