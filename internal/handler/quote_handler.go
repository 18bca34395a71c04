package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/quote"
)

// QuoteRequest is the body of POST /cotacoes.
type QuoteRequest struct {
	Data  string  `json:"data" validate:"required,datetime=2006-01-02"`
	Valor float64 `json:"valor" validate:"gt=0"`
}

func (h *Handler) ListQuotes(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return apperror.Validation("limit", "limit deve ser um inteiro positivo")
		}
		limit = n
	}

	quotes, err := h.Quotes.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, quotes)
}

func (h *Handler) LatestQuote(c echo.Context) error {
	q, err := h.Quotes.Latest(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, q)
}

// SaveQuote stores a quote unless one already exists for the same date
func (h *Handler) SaveQuote(c echo.Context) error {
	var req QuoteRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	inserted, err := h.Quotes.SaveIfAbsent(c.Request().Context(), quote.Quote{Data: req.Data, Valor: req.Valor})
	if err != nil {
		return err
	}

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"inserida": inserted, "data": req.Data})
}
