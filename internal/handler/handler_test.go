package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tinbr-service/internal/cascade"
	"tinbr-service/internal/model"
	"tinbr-service/internal/quote"
	"tinbr-service/internal/repository"
	"tinbr-service/internal/service"
	"tinbr-service/internal/store"
)

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	s := store.NewMemory()
	log := zap.NewNop()

	var repos []*repository.Repository
	for _, col := range model.All() {
		repo := repository.New(col, s, log)
		require.NoError(t, repo.EnsureIndexes(context.Background()))
		repos = append(repos, repo)
	}

	sink := quote.NewDocumentSink(s, log)
	require.NoError(t, sink.EnsureIndexes(context.Background()))

	h := &Handler{
		ServiceName: "tinbr-service",
		Store:       s,
		Repos:       repos,
		Cascade:     cascade.NewUpdater(s, log),
		Auth:        service.NewAuthService(s, log),
		Quotes:      sink,
	}
	e := echo.New()
	h.Register(e)
	return e
}

func do(e *echo.Echo, method, target string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, target, strings.NewReader(string(raw)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func createdID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestHealthRoutes(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])

	rec = do(e, http.MethodGet, "/health?check=store", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["store_status"])

	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/teste", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/metrics", nil).Code)
}

func TestTenantUserScenario(t *testing.T) {
	e := newServer(t)

	createdID(t, do(e, http.MethodPost, "/clientes", map[string]any{"nome": "T1", "documento": "111"}))

	id := createdID(t, do(e, http.MethodPost, "/users?cliente_id=T1",
		map[string]any{"nome": "Ana", "email": "a@x.com", "senha": "Abcdef1!"}))

	rec := do(e, http.MethodPost, "/users?cliente_id=T1",
		map[string]any{"email": "a@x.com", "senha": "Abcdef1!"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "duplicate_field", body["code"])
	assert.Equal(t, "email", body["field"])

	// tenant taken from the body
	createdID(t, do(e, http.MethodPost, "/users",
		map[string]any{"cliente_id": "T2", "email": "a@x.com", "senha": "Abcdef1!"}))

	rec = do(e, http.MethodGet, "/users/"+id+"?cliente_id=T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[map[string]any](t, rec)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "senha")

	rec = do(e, http.MethodGet, "/users/"+id+"?cliente_id=T2", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMissingTenant(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/proprietarios", map[string]any{"documento": "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_tenant", decode[map[string]any](t, rec)["code"])

	rec = do(e, http.MethodGet, "/proprietarios", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/mercado", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListQuery(t *testing.T) {
	e := newServer(t)
	for i := 0; i < 10; i++ {
		createdID(t, do(e, http.MethodPost, "/referencia?cliente_id=T1",
			map[string]any{"codigo": fmt.Sprintf("R%d", i), "grupo": "a"}))
	}

	rec := do(e, http.MethodGet, "/referencia?cliente_id=T1&limit=5&sort=codigo:desc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decode[[]map[string]any](t, rec)
	require.Len(t, docs, 5)
	assert.Equal(t, "R9", docs[0]["codigo"])
	assert.Equal(t, "R5", docs[4]["codigo"])

	rec = do(e, http.MethodGet, "/referencia?cliente_id=T1&codigo=R3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(e, http.MethodGet, "/referencia?cliente_id=T1&limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/referencia?cliente_id=T1&sort=codigo:up", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListRejectsOperatorsAndPasswordFields(t *testing.T) {
	e := newServer(t)
	createdID(t, do(e, http.MethodPost, "/users?cliente_id=T1",
		map[string]any{"email": "a@x.com", "senha": "Abcdef1!"}))

	for _, target := range []string{
		"/users?cliente_id=T1&%24where=this.senha.charAt(7)%3D%3D%27a%27",
		"/users?cliente_id=T1&senha=x",
		"/users?cliente_id=T1&sort=senha",
		"/clientes?sort=responsavel:desc",
	} {
		rec := do(e, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "validation", decode[map[string]any](t, rec)["code"], target)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	e := newServer(t)
	id := createdID(t, do(e, http.MethodPost, "/operacoes?cliente_id=T1", map[string]any{"codigo": "OP1"}))

	rec := do(e, http.MethodPut, "/operacoes/"+id+"?cliente_id=T1", map[string]any{"valor": 10})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, "/operacoes/"+id+"?cliente_id=T2", map[string]any{"valor": 10})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/operacoes/"+id+"?cliente_id=T1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodDelete, "/operacoes/"+id+"?cliente_id=T1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[map[string]any](t, rec)["code"])
}

func TestAuditLogIsReadOnly(t *testing.T) {
	e := newServer(t)
	rec := do(e, http.MethodPost, "/historico?cliente_id=T1", map[string]any{"acao": "bloqueio"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decode[map[string]any](t, rec)["code"])
}

func TestLogin(t *testing.T) {
	e := newServer(t)
	createdID(t, do(e, http.MethodPost, "/users?cliente_id=T1",
		map[string]any{"email": "a@x.com", "documento": "123.456.789-09", "senha": "Abcdef1!"}))

	rec := do(e, http.MethodPost, "/login", map[string]any{"login": "12345678909", "senha": "Abcdef1!", "cliente_id": "T1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["sucesso"])
	assert.NotContains(t, body["usuario"], "senha")

	wrong := do(e, http.MethodPost, "/login", map[string]any{"login": "a@x.com", "senha": "errada"})
	unknown := do(e, http.MethodPost, "/login", map[string]any{"login": "b@x.com", "senha": "Abcdef1!"})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrong.Body.String(), unknown.Body.String())

	rec = do(e, http.MethodPost, "/login", map[string]any{"login": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "senha", decode[map[string]any](t, rec)["field"])
}

func TestBlockFlow(t *testing.T) {
	e := newServer(t)
	owner := createdID(t, do(e, http.MethodPost, "/proprietarios?cliente_id=T1", map[string]any{"documento": "999"}))
	for i := 0; i < 4; i++ {
		createdID(t, do(e, http.MethodPost, "/propriedades?cliente_id=T1",
			map[string]any{"codigo": fmt.Sprintf("P%d", i), "proprietario_id": owner}))
	}

	rec := do(e, http.MethodPost, "/proprietarios/"+owner+"/bloquear",
		map[string]any{"cliente_id": "T1", "motivo": "auditoria", "usuario": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[map[string]any](t, rec)
	assert.Equal(t, "bloqueado", res["status"])
	assert.Equal(t, float64(4), res["propriedades_afetadas"])

	rec = do(e, http.MethodGet, "/historico?cliente_id=T1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = do(e, http.MethodPost, "/proprietarios/"+owner+"/desbloquear?cliente_id=T1",
		map[string]any{"usuario": "admin"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ativo", decode[map[string]any](t, rec)["status"])

	rec = do(e, http.MethodPost, "/proprietarios/"+owner+"/bloquear",
		map[string]any{"cliente_id": "T1", "usuario": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "motivo", decode[map[string]any](t, rec)["field"])

	rec = do(e, http.MethodPost, "/proprietarios/nope/bloquear",
		map[string]any{"cliente_id": "T1", "motivo": "x", "usuario": "admin"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotes(t *testing.T) {
	e := newServer(t)

	rec := do(e, http.MethodPost, "/cotacoes", map[string]any{"data": "2024-05-02", "valor": 5.1})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodPost, "/cotacoes", map[string]any{"data": "2024-05-02", "valor": 5.3})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["inserida"])

	rec = do(e, http.MethodPost, "/cotacoes", map[string]any{"data": "02/05/2024", "valor": 5.3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "data", decode[map[string]any](t, rec)["field"])

	rec = do(e, http.MethodGet, "/cotacoes/ultima", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.1, decode[map[string]any](t, rec)["valor"])

	rec = do(e, http.MethodGet, "/cotacoes?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
}
