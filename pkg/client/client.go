// Package client es el cliente HTTP de la API de acciones (/exec).
// Usa net/http con timeout de 15 s por defecto y no reintenta.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/domain"
)

// DefaultTimeout timeout de cada llamada.
const DefaultTimeout = 15 * time.Second

const maxBody = 4 << 20

// APIError error devuelto por la API en el cuerpo {"error", "code"}.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api %d: %s", e.Status, e.Message)
}

// Unwrap permite errors.Is contra los errores de dominio.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "NOT_FOUND":
		return domain.ErrNotFound
	case "TABLE_NOT_FOUND":
		return domain.ErrTableNotFound
	case "DUPLICATE":
		return domain.ErrDuplicate
	case "INVALID_INPUT", "UNKNOWN_ACTION", "METHOD_NOT_ALLOWED":
		return domain.ErrInvalidInput
	case "TIMEOUT":
		return domain.ErrRequestTimeout
	}
	return nil
}

// UpstreamError respuesta que no es JSON o status no 2xx sin cuerpo de error.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", domain.ErrUpstream, e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error { return domain.ErrUpstream }

// Option configura el cliente.
type Option func(*Client)

// WithTimeout cambia el timeout por llamada.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithActor envía el usuario en el header indicado (auditoría).
func WithActor(header, actor string) Option {
	return func(c *Client) {
		c.actorHeader = header
		c.actor = actor
	}
}

// WithHTTPClient reemplaza el http.Client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// Client cliente de la API de acciones.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	actorHeader string
	actor       string
}

// New construye el cliente. baseURL apunta al endpoint de acciones (p. ej. http://host:8080/exec).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get ejecuta una acción de lectura con params en la query string y decodifica en out.
func (c *Client) Get(ctx context.Context, action string, params url.Values, out any) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("url base inválida: %w", err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("action", action)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	return c.do(req, out)
}

// Post ejecuta una mutación enviando {"action", "payload"} como JSON.
func (c *Client) Post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(map[string]any{"action": action, "payload": payload})
	if err != nil {
		return fmt.Errorf("serializar payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if c.actorHeader != "" && c.actor != "" {
		req.Header.Set(c.actorHeader, c.actor)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(req.Context(), err) {
			return fmt.Errorf("%w: %s", domain.ErrRequestTimeout, req.URL.Redacted())
		}
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if isTimeout(req.Context(), err) {
			return fmt.Errorf("%w: %s", domain.ErrRequestTimeout, req.URL.Redacted())
		}
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrUpstream, err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return &UpstreamError{Status: resp.StatusCode, Body: snippet(raw)}
	}
	if msg, ok := probe["error"]; ok {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(msg, &apiErr.Message); err != nil {
			apiErr.Message = string(msg)
		}
		if code, ok := probe["code"]; ok {
			_ = json.Unmarshal(code, &apiErr.Code)
		}
		return apiErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Status: resp.StatusCode, Body: snippet(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decodificar respuesta: %v", domain.ErrUpstream, err)
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func snippet(raw []byte) string {
	if len(raw) > 200 {
		return string(raw[:200]) + "..."
	}
	return string(raw)
}

// ── Acciones tipadas ──────────────────────────────────────────────────────────

// Test verifica que la API responde.
func (c *Client) Test(ctx context.Context) (*dto.HealthResponse, error) {
	var out dto.HealthResponse
	if err := c.Get(ctx, "test", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Materials lista el catálogo; category vacía devuelve todo.
func (c *Client) Materials(ctx context.Context, category string) ([]dto.MaterialResponse, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	var out dto.MaterialListResponse
	if err := c.Get(ctx, "getMaterials", params, &out); err != nil {
		return nil, err
	}
	return out.Materials, nil
}

// Search busca materiales por SKU o descripción.
func (c *Client) Search(ctx context.Context, term string, start, limit int) (*dto.MaterialSearchResponse, error) {
	params := url.Values{}
	params.Set("search", term)
	params.Set("start", strconv.Itoa(start))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out dto.MaterialSearchResponse
	if err := c.Get(ctx, "searchMaterials", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Increment suma delta (puede ser negativo) al stock del SKU y devuelve la cantidad nueva.
func (c *Client) Increment(ctx context.Context, sku string, delta int64, reason string) (int64, error) {
	payload := map[string]any{"id": sku, "delta": delta}
	if reason != "" {
		payload["motivo"] = reason
	}
	var out dto.IncrementMaterialResponse
	if err := c.Post(ctx, "incrementMaterial", payload, &out); err != nil {
		return 0, err
	}
	return out.NewQty, nil
}

// SaveObra guarda una obra con sus materiales.
func (c *Client) SaveObra(ctx context.Context, obra map[string]any) (*dto.SaveObraResponse, error) {
	var out dto.SaveObraResponse
	if err := c.Post(ctx, "saveObra", obra, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
