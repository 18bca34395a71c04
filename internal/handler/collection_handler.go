package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/repository"
)

// reserved query parameters that are not equality filters
var reservedParams = map[string]bool{"cliente_id": true, "sort": true, "limit": true}

func (h *Handler) list(repo *repository.Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		q, err := parseQuery(c)
		if err != nil {
			return err
		}

		docs, err := repo.List(c.Request().Context(), tenantID(c, nil), q)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, docs)
	}
}

func (h *Handler) get(repo *repository.Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		doc, err := repo.Get(c.Request().Context(), tenantID(c, nil), c.Param("id"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, doc)
	}
}

func (h *Handler) create(repo *repository.Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := map[string]any{}
		if err := bindBody(c, &payload); err != nil {
			return err
		}

		id, err := repo.Create(c.Request().Context(), tenantID(c, payload), payload)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"sucesso":  true,
			"mensagem": "registro criado com sucesso",
			"id":       id,
		})
	}
}

func (h *Handler) update(repo *repository.Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := map[string]any{}
		if err := bindBody(c, &payload); err != nil {
			return err
		}

		id := c.Param("id")
		if err := repo.Update(c.Request().Context(), tenantID(c, payload), id, payload); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{
			"sucesso":  true,
			"mensagem": "registro atualizado com sucesso",
			"id":       id,
		})
	}
}

func (h *Handler) remove(repo *repository.Repository) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")
		if err := repo.Delete(c.Request().Context(), tenantID(c, nil), id); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{
			"sucesso":  true,
			"mensagem": "registro removido com sucesso",
			"id":       id,
		})
	}
}

func parseQuery(c echo.Context) (repository.Query, error) {
	var q repository.Query

	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return q, apperror.Validation("limit", "limit deve ser um inteiro positivo")
		}
		q.Limit = n
	}

	if raw := c.QueryParam("sort"); raw != "" {
		sort, err := repository.ParseSort(raw)
		if err != nil {
			return q, err
		}
		q.Sort = sort
	}

	q.Filters = map[string]any{}
	for k, values := range c.QueryParams() {
		if reservedParams[strings.ToLower(k)] || len(values) == 0 {
			continue
		}
		q.Filters[k] = values[0]
	}
	return q, nil
}
