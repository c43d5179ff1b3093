package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/application/dto"
)

// AlertsHandler maneja preferencias, disparo manual y log de alertas de stock.
type AlertsHandler struct {
	prefs  *alerts.PreferencesUseCase
	engine *alerts.Engine
}

// NewAlertsHandler construye el handler.
func NewAlertsHandler(prefs *alerts.PreferencesUseCase, engine *alerts.Engine) *AlertsHandler {
	return &AlertsHandler{prefs: prefs, engine: engine}
}

// GetPreferences godoc
// @Summary      Preferencias de alertas de la empresa
// @Tags         alerts
// @Produce      json
// @Param        X-Company-ID  header  string  true  "Empresa"
// @Success      200  {object}  dto.AlertPreferencesResponse
// @Router       /api/alerts/preferences [get]
func (h *AlertsHandler) GetPreferences(c *fiber.Ctx) error {
	prefs, err := h.prefs.Get(c.Context(), GetCompanyID(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(prefs)
}

// SavePreferences godoc
// @Summary      Guardar preferencias de alertas
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertPreferencesRequest  true  "canales, umbrales, frecuencia"
// @Success      200  {object}  dto.AlertPreferencesResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alerts/preferences [put]
func (h *AlertsHandler) SavePreferences(c *fiber.Ctx) error {
	var in dto.AlertPreferencesRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	prefs, err := h.prefs.Save(c.Context(), GetCompanyID(c), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(prefs)
}

// Run godoc
// @Summary      Disparar la evaluación de alertas ahora
// @Description  Mismo evaluador que la corrida programada: lo ya alertado en la
// @Description  ventana vigente se salta por deduplicación.
// @Tags         alerts
// @Produce      json
// @Param        X-Company-ID  header  string  true  "Empresa"
// @Success      200  {object}  alerts.EvaluateResult
// @Router       /api/alerts/run [post]
func (h *AlertsHandler) Run(c *fiber.Ctx) error {
	result, err := h.engine.Evaluate(c.Context(), GetCompanyID(c), time.Now())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(result)
}

// ListLog godoc
// @Summary      Log de alertas disparadas
// @Tags         alerts
// @Produce      json
// @Param        X-Company-ID  header  string  true   "Empresa"
// @Param        limit         query   int     false  "Tamaño de página (default 20)"
// @Param        offset        query   int     false  "Desplazamiento"
// @Success      200  {object}  dto.AlertLogListResponse
// @Router       /api/alerts/log [get]
func (h *AlertsHandler) ListLog(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	list, err := h.prefs.ListLog(c.Context(), GetCompanyID(c), page)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(list)
}
