package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/application/dto"
	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	domaininv "github.com/ateliepro/atelier-api/internal/domain/inventory"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

// LifecycleUseCase ciclo de vida de ítems: crear, editar, borrar (tombstone) y
// consumir stock por órdenes. Toda edición de cantidad pasa por el Reconciler como
// delta; este caso de uso nunca escribe quantity directamente.
type LifecycleUseCase struct {
	items      repository.InventoryItemRepository
	movements  repository.StockMovementRepository
	reconciler *Reconciler
}

// NewLifecycleUseCase construye el caso de uso.
func NewLifecycleUseCase(
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
	reconciler *Reconciler,
) *LifecycleUseCase {
	return &LifecycleUseCase{items: items, movements: movements, reconciler: reconciler}
}

// Create crea un ítem. El saldo inicia en cero y, si hay cantidad de apertura,
// se registra como movimiento de entrada (el libro arranca completo desde el día uno).
func (uc *LifecycleUseCase) Create(ctx context.Context, companyID, actor string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	if in.Unit == "" {
		return nil, fmt.Errorf("%w: unidad vacía", domain.ErrInvalidInput)
	}
	if in.MinQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad mínima negativa", domain.ErrInvalidInput)
	}
	if !entity.ValidItemType(in.ItemType) {
		return nil, fmt.Errorf("%w: tipo de ítem %q", domain.ErrInvalidInput, in.ItemType)
	}
	if in.CostPerUnit != nil && in.CostPerUnit.IsNegative() {
		return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
	}
	if !in.Metadata.MatchesType(in.ItemType) {
		return nil, fmt.Errorf("%w: metadata no corresponde al tipo %q", domain.ErrInvalidInput, in.ItemType)
	}

	now := time.Now()
	item := &entity.InventoryItem{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		Name:           in.Name,
		NameNormalized: domaininv.NormalizeName(in.Name),
		Unit:           in.Unit,
		Quantity:       decimal.Zero,
		MinQuantity:    in.MinQuantity,
		ItemType:       in.ItemType,
		CostPerUnit:    in.CostPerUnit,
		Supplier:       in.Supplier,
		Category:       in.Category,
		Metadata:       in.Metadata,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.items.Create(ctx, item); err != nil {
		return nil, err
	}

	if !in.OpeningQuantity.IsZero() {
		res, err := uc.reconciler.ApplyDelta(ctx, item.ID, in.OpeningQuantity, MovementSpec{
			Type:      entity.MovementTypeEntrada,
			Origin:    entity.OriginManualAdjustment,
			Reason:    "saldo inicial",
			CreatedBy: actor,
		})
		if err != nil {
			return nil, fmt.Errorf("registrar saldo inicial: %w", err)
		}
		item.Quantity = res.NewQuantity
	}
	return toItemResponse(item), nil
}

// GetByID obtiene un ítem activo con su estado derivado. ErrNotFound si está tombstoneado.
func (uc *LifecycleUseCase) GetByID(ctx context.Context, itemID string) (*dto.ItemResponse, error) {
	item, err := uc.activeItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// List lista ítems activos de la empresa. search filtra por nombre sin distinguir
// mayúsculas ni acentos.
func (uc *LifecycleUseCase) List(ctx context.Context, companyID, search string, page dto.PageRequest) (*dto.ItemListResponse, error) {
	page.DefaultPage()
	list, err := uc.items.ListActive(ctx, companyID, domaininv.NormalizeName(search), page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// EditFields actualiza atributos no-cuantitativos. La cantidad jamás se toca aquí.
func (uc *LifecycleUseCase) EditFields(ctx context.Context, itemID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.activeItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
		}
		item.Name = *in.Name
		item.NameNormalized = domaininv.NormalizeName(*in.Name)
	}
	if in.Unit != nil {
		if *in.Unit == "" {
			return nil, fmt.Errorf("%w: unidad vacía", domain.ErrInvalidInput)
		}
		item.Unit = *in.Unit
	}
	if in.MinQuantity != nil {
		if in.MinQuantity.IsNegative() {
			return nil, fmt.Errorf("%w: cantidad mínima negativa", domain.ErrInvalidInput)
		}
		item.MinQuantity = *in.MinQuantity
	}
	if in.CostPerUnit != nil {
		if in.CostPerUnit.IsNegative() {
			return nil, fmt.Errorf("%w: costo unitario negativo", domain.ErrInvalidInput)
		}
		item.CostPerUnit = in.CostPerUnit
	}
	if in.Supplier != nil {
		item.Supplier = *in.Supplier
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	if in.Metadata != nil {
		if !in.Metadata.MatchesType(item.ItemType) {
			return nil, fmt.Errorf("%w: metadata no corresponde al tipo %q", domain.ErrInvalidInput, item.ItemType)
		}
		item.Metadata = *in.Metadata
	}
	item.UpdatedAt = time.Now()
	if err := uc.items.UpdateFields(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// EditQuantity fija la cantidad del ítem en newQuantity vía un ajuste por delta.
// Si la cantidad no cambia es un no-op puro: sin movimiento y sin error.
func (uc *LifecycleUseCase) EditQuantity(ctx context.Context, itemID string, newQuantity decimal.Decimal, reason, actor string) (*dto.QuantityEditResponse, error) {
	item, err := uc.activeItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	delta := newQuantity.Sub(item.Quantity)
	if delta.IsZero() {
		return &dto.QuantityEditResponse{Changed: false, NewQuantity: item.Quantity}, nil
	}
	res, err := uc.reconciler.ApplyDelta(ctx, itemID, delta, MovementSpec{
		Type:      entity.MovementTypeAjuste,
		Origin:    entity.OriginManualAdjustment,
		Reason:    reason,
		CreatedBy: actor,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.QuantityEditResponse{
		Changed:     true,
		NewQuantity: res.NewQuantity,
		MovementID:  res.MovementID,
	}
	if res.NewQuantity.IsNegative() {
		out.Warning = negativeWarning(item.Name, res.NewQuantity)
	}
	return out, nil
}

// Delete tombstonea el ítem: sale de los listados activos pero su historial de
// movimientos permanece consultable. ErrNotFound si ya estaba borrado.
func (uc *LifecycleUseCase) Delete(ctx context.Context, itemID string) error {
	return uc.items.SoftDelete(ctx, itemID, time.Now())
}

// BulkDelete borra cada ID de forma independiente; la falla de uno no detiene los
// demás (semántica de falla parcial, nunca todo-o-nada).
func (uc *LifecycleUseCase) BulkDelete(ctx context.Context, itemIDs []string) *dto.BulkDeleteResult {
	result := &dto.BulkDeleteResult{Succeeded: []string{}, Failed: []dto.BulkDeleteFailure{}}
	for _, id := range itemIDs {
		if err := uc.Delete(ctx, id); err != nil {
			result.Failed = append(result.Failed, dto.BulkDeleteFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}

// ConsumeForOrder descuenta stock por el cumplimiento de una orden. Idempotente por
// (ítem, orden): reintentar la misma orden no descuenta dos veces. La llamada nunca
// falla por stock insuficiente; los saldos negativos se devuelven como Warnings.
func (uc *LifecycleUseCase) ConsumeForOrder(ctx context.Context, orderID, actor string, consumptions []dto.OrderConsumption) (*dto.ConsumeResult, error) {
	if orderID == "" {
		return nil, fmt.Errorf("%w: orden sin ID", domain.ErrInvalidInput)
	}
	result := &dto.ConsumeResult{OrderID: orderID}
	for _, c := range consumptions {
		if !c.Quantity.IsPositive() {
			result.Failed = append(result.Failed, dto.ConsumptionFailure{
				ItemID: c.ItemID,
				Error:  "cantidad de consumo debe ser positiva",
			})
			continue
		}
		res, err := uc.reconciler.ApplyDelta(ctx, c.ItemID, c.Quantity.Neg(), MovementSpec{
			Type:      entity.MovementTypeSaida,
			Origin:    entity.OriginOrderConsumption,
			OriginID:  orderID,
			Reason:    "consumo de orden " + orderID,
			CreatedBy: actor,
		})
		if err != nil {
			// Una línea inválida no impide intentar las demás.
			result.Failed = append(result.Failed, dto.ConsumptionFailure{ItemID: c.ItemID, Error: err.Error()})
			continue
		}
		result.Consumed = append(result.Consumed, dto.ConsumptionOutcome{
			ItemID:         c.ItemID,
			MovementID:     res.MovementID,
			NewQuantity:    res.NewQuantity,
			AlreadyApplied: res.AlreadyApplied,
		})
		if res.NewQuantity.IsNegative() {
			name := c.ItemID
			if item, err := uc.items.GetByID(ctx, c.ItemID); err == nil && item != nil {
				name = item.Name
			}
			result.Warnings = append(result.Warnings, negativeWarning(name, res.NewQuantity))
		}
	}
	return result, nil
}

// ListMovements devuelve el historial de movimientos del ítem, más recientes primero.
// Funciona también para ítems tombstoneados: la auditoría sobrevive al borrado.
func (uc *LifecycleUseCase) ListMovements(ctx context.Context, itemID string, page dto.PageRequest) (*dto.MovementListResponse, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	page.DefaultPage()
	list, err := uc.movements.ListByItem(ctx, itemID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	movs := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out := dto.MovementResponse{
			ID:        m.ID,
			Type:      m.Type,
			Delta:     m.Delta,
			Reason:    m.Reason,
			Origin:    m.Origin,
			Direction: m.Direction,
			CreatedAt: m.CreatedAt,
			CreatedBy: m.CreatedBy,
		}
		if m.OriginID != nil {
			out.OriginID = *m.OriginID
		}
		movs = append(movs, out)
	}
	return &dto.MovementListResponse{
		Movements: movs,
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// activeItem obtiene un ítem que exista y no esté tombstoneado.
func (uc *LifecycleUseCase) activeItem(ctx context.Context, itemID string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted() {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	return item, nil
}

func negativeWarning(name string, qty decimal.Decimal) string {
	return fmt.Sprintf("el ítem %q quedó en negativo por %s unidades", name, qty.Abs().String())
}

func toItemResponse(item *entity.InventoryItem) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Unit:        item.Unit,
		ItemType:    item.ItemType,
		Quantity:    item.Quantity,
		MinQuantity: item.MinQuantity,
		Status:      string(domaininv.Classify(item.Quantity, item.MinQuantity)),
		CostPerUnit: item.CostPerUnit,
		Supplier:    item.Supplier,
		Category:    item.Category,
		Metadata:    item.Metadata,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}
