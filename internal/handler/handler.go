package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/cascade"
	"tinbr-service/internal/credential"
	"tinbr-service/internal/normalize"
	"tinbr-service/internal/quote"
	"tinbr-service/internal/repository"
	"tinbr-service/internal/service"
	"tinbr-service/pkg/logger"
	"tinbr-service/prometheus"
)

// Pinger reports whether the storage backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves every HTTP route of the service.
type Handler struct {
	ServiceName string
	Store       Pinger
	Repos       []*repository.Repository
	Cascade     *cascade.Updater
	Auth        *service.AuthService
	Quotes      quote.Sink
}

// Register mounts all routes on e and installs the validator and error handler.
func (h *Handler) Register(e *echo.Echo) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.GET("/", h.Root)
	e.GET("/teste", h.Teste)
	e.GET("/health", h.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/login", h.Login)

	for _, repo := range h.Repos {
		g := e.Group("/" + repo.Collection().Name)
		g.GET("", h.list(repo))
		g.POST("", h.create(repo))
		g.GET("/:id", h.get(repo))
		g.PUT("/:id", h.update(repo))
		g.DELETE("/:id", h.remove(repo))
	}

	owners := e.Group("/proprietarios")
	owners.POST("/:id/bloquear", h.Block)
	owners.POST("/:id/desbloquear", h.Unblock)

	quotes := e.Group("/cotacoes")
	quotes.GET("", h.ListQuotes)
	quotes.GET("/ultima", h.LatestQuote)
	quotes.POST("", h.SaveQuote)
}

// Validator adapts go-playground/validator to echo.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates the echo validator with the custom tags registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	credential.RegisterValidators(v)
	return &Validator{validate: v}
}

func (v *Validator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return apperror.FromValidationError(err)
	}
	return nil
}

// ErrorHandler renders errors as {"error", "code", "field"} JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		writeJSON(c, he.Code, echo.Map{"error": fmt.Sprint(he.Message), "code": "http"})
		return
	}

	ae := apperror.From(err)
	if ae.Kind == apperror.KindStorage {
		logger.FromContext(c).Error("Request failed", zap.Error(err))
	}
	prometheus.RecordDomainError(string(ae.Kind))

	body := echo.Map{"error": ae.Message, "code": ae.Kind}
	if ae.Field != "" {
		body["field"] = ae.Field
	}
	writeJSON(c, ae.Code(), body)
}

func writeJSON(c echo.Context, code int, body echo.Map) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, body)
	}
	if err != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(err))
	}
}

// bindBody decodes the request body only, path and query params stay out of the payload.
func bindBody(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return apperror.Validation("", "corpo da requisição inválido")
	}
	return nil
}

// tenantID reads cliente_id from the query string, falling back to the body.
func tenantID(c echo.Context, body map[string]any) string {
	if v := strings.TrimSpace(c.QueryParam("cliente_id")); v != "" {
		return v
	}
	for k, v := range body {
		if normalize.Key(k) == "cliente_id" {
			return normalize.TenantID(v)
		}
	}
	return ""
}
