package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ateliepro/atelier-api/internal/application/dto"
	"github.com/ateliepro/atelier-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de ítems, movimientos y consumo de órdenes.
type InventoryHandler struct {
	lifecycle *inventory.LifecycleUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(lifecycle *inventory.LifecycleUseCase) *InventoryHandler {
	return &InventoryHandler{lifecycle: lifecycle}
}

// Create godoc
// @Summary      Crear ítem de inventario
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        X-Company-ID  header  string                 true  "Empresa"
// @Param        body          body    dto.CreateItemRequest  true  "name, unit, item_type, opening_quantity, min_quantity"
// @Success      201  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/items [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.lifecycle.Create(c.Context(), GetCompanyID(c), GetActor(c), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// List godoc
// @Summary      Listar ítems activos
// @Tags         items
// @Produce      json
// @Param        X-Company-ID  header  string  true   "Empresa"
// @Param        search        query   string  false  "Filtro por nombre (sin acentos ni mayúsculas)"
// @Param        limit         query   int     false  "Tamaño de página (default 20)"
// @Param        offset        query   int     false  "Desplazamiento"
// @Success      200  {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	list, err := h.lifecycle.List(c.Context(), GetCompanyID(c), c.Query("search"), page)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Obtener ítem por ID
// @Tags         items
// @Produce      json
// @Param        id  path  string  true  "ID del ítem"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.lifecycle.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(item)
}

// Update godoc
// @Summary      Editar atributos del ítem (sin cantidad)
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID del ítem"
// @Param        body  body  dto.UpdateItemRequest  true  "atributos a cambiar"
// @Success      200  {object}  dto.ItemResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	item, err := h.lifecycle.EditFields(c.Context(), c.Params("id"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(item)
}

// EditQuantity godoc
// @Summary      Fijar la cantidad del ítem
// @Description  Registra la diferencia como movimiento de ajuste. Si la cantidad
// @Description  no cambia, no se genera movimiento (changed=false). Un resultado
// @Description  negativo no es error: se devuelve con warning.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del ítem"
// @Param        body  body  dto.EditQuantityRequest  true  "new_quantity, reason"
// @Success      200  {object}  dto.QuantityEditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/quantity [put]
func (h *InventoryHandler) EditQuantity(c *fiber.Ctx) error {
	var in dto.EditQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.lifecycle.EditQuantity(c.Context(), c.Params("id"), in.NewQuantity, in.Reason, GetActor(c))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(res)
}

// Delete godoc
// @Summary      Borrar ítem (tombstone)
// @Description  El ítem sale de los listados pero su historial de movimientos
// @Description  permanece consultable.
// @Tags         items
// @Param        id  path  string  true  "ID del ítem"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.lifecycle.Delete(c.Context(), c.Params("id")); err != nil {
		return mapError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BulkDelete godoc
// @Summary      Borrado masivo de ítems
// @Description  Cada ID se borra de forma independiente; la respuesta separa
// @Description  los que funcionaron de los que fallaron.
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkDeleteRequest  true  "ids"
// @Success      200  {object}  dto.BulkDeleteResult
// @Router       /api/items/bulk-delete [post]
func (h *InventoryHandler) BulkDelete(c *fiber.Ctx) error {
	var in dto.BulkDeleteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return c.JSON(h.lifecycle.BulkDelete(c.Context(), in.IDs))
}

// ListMovements godoc
// @Summary      Historial de movimientos del ítem
// @Description  Funciona también para ítems borrados (la auditoría sobrevive al borrado).
// @Tags         items
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "Tamaño de página (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	list, err := h.lifecycle.ListMovements(c.Context(), c.Params("id"), page)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(list)
}

// ConsumeOrder godoc
// @Summary      Consumir stock por una orden
// @Description  Idempotente por (ítem, orden): reintentar no descuenta dos veces.
// @Description  El stock insuficiente no bloquea la orden; se devuelven warnings.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId  path  string              true  "ID de la orden"
// @Param        body     body  dto.ConsumeRequest  true  "consumptions"
// @Success      200  {object}  dto.ConsumeResult
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/orders/{orderId}/consume [post]
func (h *InventoryHandler) ConsumeOrder(c *fiber.Ctx) error {
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.lifecycle.ConsumeForOrder(c.Context(), c.Params("orderId"), GetActor(c), in.Consumptions)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(res)
}
