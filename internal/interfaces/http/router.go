package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ateliepro/atelier-api/internal/application/alerts"
	"github.com/ateliepro/atelier-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LifecycleUC   *inventory.LifecycleUseCase
	PreferencesUC *alerts.PreferencesUseCase
	AlertEngine   *alerts.Engine
}

// Router registra las rutas de la API. Todo /api exige el header X-Company-ID.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", CompanyMiddleware())

	items := api.Group("/items")
	inventoryHandler := NewInventoryHandler(deps.LifecycleUC)
	items.Post("/", inventoryHandler.Create)
	items.Get("/", inventoryHandler.List)
	items.Post("/bulk-delete", inventoryHandler.BulkDelete)
	items.Get("/:id", inventoryHandler.GetByID)
	items.Put("/:id", inventoryHandler.Update)
	items.Delete("/:id", inventoryHandler.Delete)
	items.Put("/:id/quantity", inventoryHandler.EditQuantity)
	items.Get("/:id/movements", inventoryHandler.ListMovements)

	orders := api.Group("/orders")
	orders.Post("/:orderId/consume", inventoryHandler.ConsumeOrder)

	alertsGroup := api.Group("/alerts")
	alertsHandler := NewAlertsHandler(deps.PreferencesUC, deps.AlertEngine)
	alertsGroup.Get("/preferences", alertsHandler.GetPreferences)
	alertsGroup.Put("/preferences", alertsHandler.SavePreferences)
	alertsGroup.Post("/run", alertsHandler.Run)
	alertsGroup.Get("/log", alertsHandler.ListLog)
}
