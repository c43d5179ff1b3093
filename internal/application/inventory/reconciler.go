package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
)

// maxApplyAttempts reintentos ante conflictos de escritura concurrente antes de
// rendirse con ErrConcurrencyConflict.
const maxApplyAttempts = 3

// Reconciler mantiene el saldo cacheado consistente con el libro de movimientos:
// cada cambio de saldo va emparejado con exactamente un movimiento, en la misma
// unidad atómica. Es el único componente autorizado a escribir quantity.
type Reconciler struct {
	txRunner  TxRunner
	items     repository.InventoryItemRepository
	movements repository.StockMovementRepository
}

// NewReconciler construye el reconciliador de saldos.
func NewReconciler(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	movements repository.StockMovementRepository,
) *Reconciler {
	return &Reconciler{txRunner: txRunner, items: items, movements: movements}
}

// MovementSpec describe el movimiento que acompaña a un delta de saldo.
type MovementSpec struct {
	Type      string // entrada | saida | ajuste
	Origin    string // manual_adjustment | order_consumption | import | system
	OriginID  string // referencia externa opcional (ID de orden); habilita idempotencia
	Reason    string
	CreatedBy string
}

// ApplyDeltaResult resultado de aplicar un delta.
// AlreadyApplied indica que el origen externo ya estaba registrado y no se re-aplicó.
type ApplyDeltaResult struct {
	NewQuantity    decimal.Decimal
	MovementID     string
	AlreadyApplied bool
}

// ApplyDelta aplica un delta firmado al saldo del ítem y registra el movimiento
// correspondiente en una sola transacción. El incremento del saldo se resuelve del
// lado del almacén (quantity = quantity + delta bajo lock de fila), nunca como
// leer-calcular-escribir en la aplicación: eso perdería actualizaciones bajo
// consumos concurrentes del mismo ítem.
//
// Política blanda: un saldo resultante negativo NO es error; el llamador recibe
// NewQuantity < 0 y decide cómo advertirlo.
func (r *Reconciler) ApplyDelta(ctx context.Context, itemID string, delta decimal.Decimal, spec MovementSpec) (*ApplyDeltaResult, error) {
	if delta.IsZero() {
		return nil, fmt.Errorf("%w: delta cero no genera movimiento", domain.ErrInvalidInput)
	}
	if !entity.ValidMovementType(spec.Type) {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, spec.Type)
	}
	if !entity.ValidMovementOrigin(spec.Origin) {
		return nil, fmt.Errorf("%w: origen de movimiento %q", domain.ErrInvalidInput, spec.Origin)
	}

	item, err := r.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.IsDeleted() {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}

	// Idempotencia: si el origen externo ya fue aplicado, devolver el resultado
	// existente sin tocar el saldo (protege reintentos de consumo de órdenes).
	if spec.OriginID != "" {
		if res, err := r.existingByOrigin(ctx, itemID, spec); err != nil || res != nil {
			return res, err
		}
	}

	var result *ApplyDeltaResult
	for attempt := 1; attempt <= maxApplyAttempts; attempt++ {
		result = nil
		err = r.txRunner.Run(ctx, func(
			items repository.InventoryItemRepository,
			movements repository.StockMovementRepository,
		) error {
			mov := &entity.StockMovement{
				ID:              uuid.New().String(),
				InventoryItemID: itemID,
				Type:            spec.Type,
				Delta:           delta,
				Reason:          spec.Reason,
				Origin:          spec.Origin,
				Direction:       adjustDirection(spec.Type, delta),
				CreatedAt:       time.Now(),
				CreatedBy:       spec.CreatedBy,
			}
			if spec.OriginID != "" {
				originID := spec.OriginID
				mov.OriginID = &originID
			}
			if err := movements.Create(ctx, mov); err != nil {
				return err
			}
			newQty, err := items.ApplyQuantityDelta(ctx, itemID, delta)
			if err != nil {
				return err
			}
			result = &ApplyDeltaResult{NewQuantity: newQty, MovementID: mov.ID}
			return nil
		})
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, domain.ErrConflict):
			continue // la tx completa se reintenta desde cero
		case errors.Is(err, domain.ErrDuplicate) && spec.OriginID != "":
			// Carrera idempotente: otro llamador insertó el mismo origen entre el
			// chequeo y el insert; el índice único lo detuvo. Devolver el existente.
			return r.existingByOrigin(ctx, itemID, spec)
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("aplicar delta a %s tras %d intentos: %w", itemID, maxApplyAttempts, domain.ErrConcurrencyConflict)
}

// existingByOrigin devuelve el resultado de un origen ya aplicado, o nil si no existe.
func (r *Reconciler) existingByOrigin(ctx context.Context, itemID string, spec MovementSpec) (*ApplyDeltaResult, error) {
	existing, err := r.movements.GetByOrigin(ctx, itemID, spec.Origin, spec.OriginID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	item, err := r.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	return &ApplyDeltaResult{
		NewQuantity:    item.Quantity,
		MovementID:     existing.ID,
		AlreadyApplied: true,
	}, nil
}

// AuditBalance compara el saldo cacheado contra la suma de deltas del libro.
// Devuelve ambos valores; difieren solo si hubo corrupción externa al Reconciler.
func (r *Reconciler) AuditBalance(ctx context.Context, itemID string) (cached, ledger decimal.Decimal, err error) {
	item, err := r.items.GetByID(ctx, itemID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if item == nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, itemID)
	}
	sum, err := r.movements.SumDeltas(ctx, itemID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return item.Quantity, sum, nil
}

// adjustDirection deriva el sentido de un ajuste manual para presentación.
func adjustDirection(movType string, delta decimal.Decimal) string {
	if movType != entity.MovementTypeAjuste {
		return ""
	}
	if delta.IsNegative() {
		return entity.DirectionDecremento
	}
	return entity.DirectionIncremento
}
