package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/jhoicas/Obras-api/internal/application/dto"
	"github.com/jhoicas/Obras-api/internal/application/records"
	"github.com/jhoicas/Obras-api/internal/application/usecase"
	"github.com/jhoicas/Obras-api/internal/domain"
)

// Acciones de la API.
const (
	ActionGetMaterials           = "getMaterials"
	ActionSearchMaterials        = "searchMaterials"
	ActionGetMaterialsByCategory = "getMaterialsByCategory"
	ActionGetObras               = "getObras"
	ActionTest                   = "test"
	ActionSaveObra               = "saveObra"
	ActionAddMaterial            = "addMaterial"
	ActionUpdateMaterial         = "updateMaterial"
	ActionIncrementMaterial      = "incrementMaterial"
	ActionDeleteMaterial         = "deleteMaterial"

	// ActionUnknown etiqueta de métricas para acciones vacías o no reconocidas.
	ActionUnknown = "unknown"
)

type actionFunc func(ctx context.Context, p records.Payload) (any, error)

type route struct {
	status int
	run    actionFunc
}

// ActionHandler despacha /exec según el parámetro action.
type ActionHandler struct {
	materials *usecase.MaterialUseCase
	obras     *usecase.ObraUseCase
	now       func() time.Time
	get       map[string]route
	post      map[string]route
}

// NewActionHandler construye el handler.
func NewActionHandler(materials *usecase.MaterialUseCase, obras *usecase.ObraUseCase) *ActionHandler {
	h := &ActionHandler{materials: materials, obras: obras, now: time.Now}
	h.get = map[string]route{
		ActionGetMaterials:           {fiber.StatusOK, h.getMaterials},
		ActionSearchMaterials:        {fiber.StatusOK, h.searchMaterials},
		ActionGetMaterialsByCategory: {fiber.StatusOK, h.getMaterialsByCategory},
		ActionGetObras:               {fiber.StatusOK, h.getObras},
		ActionTest:                   {fiber.StatusOK, h.test},
	}
	h.post = map[string]route{
		ActionSaveObra:          {fiber.StatusCreated, h.saveObra},
		ActionAddMaterial:       {fiber.StatusCreated, h.addMaterial},
		ActionUpdateMaterial:    {fiber.StatusOK, h.updateMaterial},
		ActionIncrementMaterial: {fiber.StatusOK, h.incrementMaterial},
		ActionDeleteMaterial:    {fiber.StatusOK, h.deleteMaterial},
	}
	return h
}

// Get godoc
// @Summary      Acciones de lectura
// @Description  getMaterials, searchMaterials (search|query, start, limit), getMaterialsByCategory (category),
// @Description  getObras (endereco, tecnico, data, dateFrom, dateTo, tipoObra, uf) y test.
// @Tags         exec
// @Produce      json
// @Param        action    query  string  true   "Acción"
// @Param        search    query  string  false  "Texto a buscar (searchMaterials)"
// @Param        start     query  int     false  "Offset (searchMaterials)"
// @Param        limit     query  int     false  "Tamaño de página, máx. 100"
// @Param        category  query  string  false  "Interno | Externo"
// @Param        uf        query  string  false  "UF de la obra; todos desactiva el filtro"
// @Success      200  {object}  dto.MaterialListResponse
// @Success      200  {object}  dto.MaterialSearchResponse
// @Success      200  {object}  dto.ObraListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /exec [get]
func (h *ActionHandler) Get(c *fiber.Ctx) error {
	action := c.Query("action")
	return h.dispatch(c, action, queryPayload(c), h.get, h.post)
}

// Post godoc
// @Summary      Acciones de escritura
// @Description  saveObra, addMaterial, updateMaterial, incrementMaterial, deleteMaterial.
// @Description  Acepta urlencoded action+payload, JSON {action,payload}, JSON {action,data} o JSON plano con action en la query.
// @Tags         exec
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        action  query  string  false  "Acción (si no viene en el cuerpo)"
// @Success      201  {object}  dto.SaveObraResponse
// @Success      200  {object}  dto.IncrementMaterialResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /exec [post]
func (h *ActionHandler) Post(c *fiber.Ctx) error {
	action, payload, err := parsePost(c)
	c.Locals(LocalAction, h.label(action))
	if err != nil {
		return writeError(c, err)
	}
	if payload == nil && action != "" {
		if _, ok := h.post[action]; ok {
			return writeError(c, fmt.Errorf("%w: payload vazio", domain.ErrInvalidInput))
		}
	}
	return h.dispatch(c, action, payload, h.post, h.get)
}

// label devuelve la acción para logs y métricas; las desconocidas comparten "unknown".
func (h *ActionHandler) label(action string) string {
	if _, ok := h.get[action]; ok {
		return utils.CopyString(action)
	}
	if _, ok := h.post[action]; ok {
		return utils.CopyString(action)
	}
	return ActionUnknown
}

func (h *ActionHandler) dispatch(c *fiber.Ctx, action string, p records.Payload, routes, other map[string]route) error {
	c.Locals(LocalAction, h.label(action))
	if action == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Ação não reconhecida", Code: CodeUnknownAction})
	}
	r, ok := routes[action]
	if !ok {
		if _, wrongMethod := other[action]; wrongMethod {
			return c.Status(fiber.StatusMethodNotAllowed).JSON(dto.ErrorResponse{
				Error: fmt.Sprintf("ação %s não aceita %s", action, c.Method()),
				Code:  CodeMethodNotAllow,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Ação não reconhecida: " + action, Code: CodeUnknownAction})
	}
	if p == nil {
		p = records.Payload{}
	}
	if actor := GetActor(c); actor != "" {
		p["usuario"] = actor
	}
	out, err := r.run(c.UserContext(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(r.status).JSON(out)
}

func (h *ActionHandler) getMaterials(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.List(ctx, p.First("category", "categoria"))
}

func (h *ActionHandler) searchMaterials(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.Search(ctx, dto.SearchMaterialsRequestFromPayload(p))
}

func (h *ActionHandler) getMaterialsByCategory(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.ByCategory(ctx, p.First("category", "categoria"))
}

func (h *ActionHandler) getObras(ctx context.Context, p records.Payload) (any, error) {
	return h.obras.List(ctx, dto.ListObrasRequestFromPayload(p))
}

func (h *ActionHandler) test(_ context.Context, _ records.Payload) (any, error) {
	return dto.HealthResponse{Status: "UP", Timestamp: h.now().UTC().Format(time.RFC3339)}, nil
}

func (h *ActionHandler) saveObra(ctx context.Context, p records.Payload) (any, error) {
	return h.obras.Save(ctx, dto.SaveObraRequestFromPayload(p))
}

func (h *ActionHandler) addMaterial(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.Add(ctx, dto.AddMaterialRequestFromPayload(p))
}

func (h *ActionHandler) updateMaterial(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.Update(ctx, dto.UpdateMaterialRequestFromPayload(p))
}

func (h *ActionHandler) incrementMaterial(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.Increment(ctx, dto.IncrementMaterialRequestFromPayload(p))
}

func (h *ActionHandler) deleteMaterial(ctx context.Context, p records.Payload) (any, error) {
	return h.materials.Delete(ctx, dto.DeleteMaterialRequestFromPayload(p))
}
