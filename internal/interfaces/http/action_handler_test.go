package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Obras-api/internal/application/sheets"
	"github.com/jhoicas/Obras-api/internal/application/usecase"
	"github.com/jhoicas/Obras-api/internal/domain/repository"
	"github.com/jhoicas/Obras-api/internal/infrastructure/memory"
	"github.com/jhoicas/Obras-api/internal/infrastructure/metrics"
	apphttp "github.com/jhoicas/Obras-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildTestApp monta la app completa sobre un store en memoria con un material.
func buildTestApp(t *testing.T) (*fiber.App, *memory.Store, *metrics.Metrics) {
	t.Helper()
	store := memory.NewStore()
	store.Seed(sheets.Materials, sheets.MaterialHeader,
		repository.Row{"0001-0001-1", "Cabo", "MT", "50", "Interno"},
		repository.Row{"0002-0002-2", "Fita", "UN", "3", "Externo"},
	)
	store.Seed(sheets.Obras, sheets.ObraHeader)
	store.Seed(sheets.MaterialUsages, sheets.UsageHeader)

	m := metrics.New()
	audit := usecase.NewAuditLog(store, time.UTC, nil, m.AuditFailure)
	materials := usecase.NewMaterialUseCase(store, audit)
	obras := usecase.NewObraUseCase(store, nil, materials, usecase.ObraSettings{DecrementStock: true, Location: time.UTC}, nil)

	app := apphttp.NewApp(apphttp.AppConfig{Name: "obras-test"})
	apphttp.Router(app, apphttp.RouterDeps{
		MaterialUC:  materials,
		ObraUC:      obras,
		Metrics:     m,
		ActorHeader: "X-User-Email",
		AppName:     "obras-test",
	})
	return app, store, m
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body), "la respuesta debe ser JSON: %s", raw)
	return resp.StatusCode, body
}

func get(t *testing.T, app *fiber.App, query string) (int, map[string]any) {
	t.Helper()
	return do(t, app, httptest.NewRequest(http.MethodGet, "/exec?"+query, nil))
}

func postJSON(t *testing.T, app *fiber.App, target, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, app, req)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET
// ──────────────────────────────────────────────────────────────────────────────

func TestGet_Test(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=test")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "UP", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestGet_Materials(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=getMaterials")
	require.Equal(t, http.StatusOK, status)
	list := body["materials"].([]any)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "0001-0001-1", first["SKU"])
	assert.Equal(t, "Cabo", first["Descrição"])
	assert.Equal(t, float64(50), first["Qtdd_Depósito"])
}

func TestGet_SearchMaterialsMeta(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=searchMaterials&query=fita&start=0&limit=500")
	require.Equal(t, http.StatusOK, status)
	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["count"])
	assert.Equal(t, float64(100), meta["limit"], "limit se limita a 100")
	assert.Equal(t, "fita", meta["search"])
}

func TestGet_MaterialsByCategorySinCategoria(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=getMaterialsByCategory")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestGet_AccionDesconocida(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=borrarTodo")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNKNOWN_ACTION", body["code"])

	status, _ = get(t, app, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGet_MutacionPorGETNoPermitida(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := get(t, app, "action=deleteMaterial&id=0001-0001-1")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.Equal(t, "METHOD_NOT_ALLOWED", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// POST: formatos de sobre
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_URLEncodedConPayload(t *testing.T) {
	app, store, _ := buildTestApp(t)
	form := url.Values{}
	form.Set("action", "saveObra")
	form.Set("payload", `{"tecnico":"Ana","endereco":"Rua A","numero":"10","tipoObra":"Alivio","materiais":[{"code":"0001-0001-1","name":"Cabo","unit":"MT","quantity":5}]}`)
	req := httptest.NewRequest(http.MethodPost, "/exec", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	status, body := do(t, app, req)
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	assert.Regexp(t, `^OBRA-\d{4}-[A-Z0-9]{5}$`, body["obra_id"])
	assert.Equal(t, body["obra_id"], body["obraId"])

	_, rows, err := store.ListTable(context.Background(), sheets.MaterialUsages)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "5", rows[0][7])

	status, list := get(t, app, "action=getObras&tecnico=ana")
	require.Equal(t, http.StatusOK, status)
	obras := list["obras"].([]any)
	require.Len(t, obras, 1)
	mats := obras[0].(map[string]any)["materiais"].([]any)
	require.Len(t, mats, 1)
	assert.Equal(t, float64(5), mats[0].(map[string]any)["quantity"])
}

func TestPost_JSONConPayload(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec", `{"action":"incrementMaterial","payload":{"id":"0001-0001-1","delta":-10}}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(40), body["newQty"])
	assert.Equal(t, true, body["ok"])
}

func TestPost_JSONConData(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec", `{"action":"addMaterial","data":{"code":"000300033","name":"Poste","unit":"UN"}}`)
	require.Equal(t, http.StatusCreated, status, "body: %v", body)
	assert.Equal(t, "0003-0003-3", body["SKU"])
}

func TestPost_JSONPlanoConAccionEnQuery(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec?action=updateMaterial", `{"SKU":"0002-0002-2","Descrição":"Fita isolante"}`)
	require.Equal(t, http.StatusOK, status, "body: %v", body)
	assert.Equal(t, true, body["ok"])
}

func TestPost_PayloadComoTextoJSON(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, _ := postJSON(t, app, "/exec", `{"action":"incrementMaterial","payload":"{\"sku\":\"0002-0002-2\",\"delta\":2}"}`)
	assert.Equal(t, http.StatusOK, status)
}

func TestPost_CuerpoInvalido(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec?action=addMaterial", `[1,2,3]`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

func TestPost_PayloadVacio(t *testing.T) {
	app, _, _ := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/exec?action=deleteMaterial", nil)
	status, body := do(t, app, req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_INPUT", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// POST: códigos de estado por tipo de error
// ──────────────────────────────────────────────────────────────────────────────

func TestPost_Duplicado409(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec", `{"action":"addMaterial","payload":{"SKU":"0001-0001-1","Descrição":"Cabo","Unidade":"MT"}}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])
}

func TestPost_NoEncontrado404(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := postJSON(t, app, "/exec", `{"action":"deleteMaterial","payload":{"id":"9999-9999-9"}}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestPost_ActorDesdeHeader(t *testing.T) {
	app, store, _ := buildTestApp(t)
	req := httptest.NewRequest(http.MethodPost, "/exec", strings.NewReader(`{"action":"deleteMaterial","payload":{"id":"0002-0002-2","motivo":"quebrado"}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Email", "ana@empresa.com")
	status, _ := do(t, app, req)
	require.Equal(t, http.StatusOK, status)

	_, rows, err := store.ListTable(context.Background(), sheets.DeletionLog)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ana@empresa.com", rows[0][4])
	assert.Equal(t, "quebrado", rows[0][3])
}

// ──────────────────────────────────────────────────────────────────────────────
// Health y métricas
// ──────────────────────────────────────────────────────────────────────────────

func TestHealthYMetrics(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	get(t, app, "action=getMaterials")
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `obras_http_requests_total{action="getMaterials",status="200"} 1`)
}

func TestRequestIDSeDevuelve(t *testing.T) {
	app, _, _ := buildTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/exec?action=test", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))
}

func TestRutaInexistente404JSON(t *testing.T) {
	app, _, _ := buildTestApp(t)
	status, body := do(t, app, httptest.NewRequest(http.MethodGet, "/nada", nil))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestMetrics_EtiquetasEstablesPorAccion(t *testing.T) {
	app, _, _ := buildTestApp(t)
	get(t, app, "action=getMaterials")
	get(t, app, "action=test")
	get(t, app, "action=getObras")
	get(t, app, "action=searchMaterials&search=cabo")
	for i := 0; i < 50; i++ {
		get(t, app, "action=inventada"+strconv.Itoa(i))
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "la recolección no debe fallar")
	raw, _ := io.ReadAll(resp.Body)
	text := string(raw)

	for _, action := range []string{"getMaterials", "test", "getObras", "searchMaterials"} {
		assert.Contains(t, text, `obras_http_requests_total{action="`+action+`",status="200"} 1`, action)
	}
	assert.Contains(t, text, `obras_http_requests_total{action="unknown",status="400"} 50`)
	assert.NotContains(t, text, `action="inventada`)
	assert.NotContains(t, text, `action="sear"`)
}
