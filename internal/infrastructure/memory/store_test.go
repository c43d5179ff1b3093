package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ateliepro/atelier-api/internal/domain"
	"github.com/ateliepro/atelier-api/internal/domain/entity"
	"github.com/ateliepro/atelier-api/internal/domain/repository"
	"github.com/ateliepro/atelier-api/internal/infrastructure/memory"
)

func newItem(name string) *entity.InventoryItem {
	now := time.Now()
	return &entity.InventoryItem{
		ID:             uuid.New().String(),
		CompanyID:      "empresa-test",
		Name:           name,
		NameNormalized: name,
		Unit:           "unidad",
		Quantity:       decimal.Zero,
		MinQuantity:    decimal.NewFromInt(1),
		ItemType:       entity.ItemTypeRawMaterial,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Las lecturas devuelven copias: mutar el resultado no toca el almacén.
func TestItemRepo_DevuelveCopias(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewInventoryItemRepository(store)
	item := newItem("hilo azul")
	require.NoError(t, repo.Create(context.Background(), item))

	got, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	got.Name = "mutado"

	again, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "hilo azul", again.Name)
}

func TestItemRepo_UpdateFieldsNoPisaLaCantidad(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewInventoryItemRepository(store)
	item := newItem("hilo azul")
	require.NoError(t, repo.Create(context.Background(), item))

	_, err := repo.ApplyQuantityDelta(context.Background(), item.ID, decimal.NewFromInt(7))
	require.NoError(t, err)

	// El update llega con una cantidad vieja; el repositorio la ignora.
	stale := *item
	stale.Name = "hilo añil"
	stale.Quantity = decimal.NewFromInt(999)
	require.NoError(t, repo.UpdateFields(context.Background(), &stale))

	got, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, "hilo añil", got.Name)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(7)), "quantity solo se mueve por deltas")
}

func TestItemRepo_ApplyDeltaSobreTombstoneFalla(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewInventoryItemRepository(store)
	item := newItem("hilo azul")
	require.NoError(t, repo.Create(context.Background(), item))
	require.NoError(t, repo.SoftDelete(context.Background(), item.ID, time.Now()))

	_, err := repo.ApplyQuantityDelta(context.Background(), item.ID, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Pero GetByID sí lo devuelve (con tombstone), para auditoría.
	got, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsDeleted())
}

func TestMovementRepo_OrigenDuplicadoRechazado(t *testing.T) {
	store := memory.NewStore()
	repo := memory.NewStockMovementRepository(store)
	itemID := uuid.New().String()
	originID := "orden-1"

	mov := func() *entity.StockMovement {
		return &entity.StockMovement{
			ID:              uuid.New().String(),
			InventoryItemID: itemID,
			Type:            entity.MovementTypeSaida,
			Delta:           decimal.NewFromInt(-1),
			Origin:          entity.OriginOrderConsumption,
			OriginID:        &originID,
			CreatedAt:       time.Now(),
		}
	}
	require.NoError(t, repo.Create(context.Background(), mov()))
	assert.ErrorIs(t, repo.Create(context.Background(), mov()), domain.ErrDuplicate)

	// Sin origin_id no hay restricción: los ajustes manuales se repiten libremente.
	manual := mov()
	manual.OriginID = nil
	manual.Origin = entity.OriginManualAdjustment
	require.NoError(t, repo.Create(context.Background(), manual))
	require.NoError(t, repo.Create(context.Background(), &entity.StockMovement{
		ID:              uuid.New().String(),
		InventoryItemID: itemID,
		Type:            entity.MovementTypeAjuste,
		Delta:           decimal.NewFromInt(2),
		Origin:          entity.OriginManualAdjustment,
		CreatedAt:       time.Now(),
	}))
}

// TxRunner: si fn falla, ni el movimiento ni el saldo quedan escritos.
func TestTxRunner_RollbackDeshaceTodo(t *testing.T) {
	store := memory.NewStore()
	items := memory.NewInventoryItemRepository(store)
	movements := memory.NewStockMovementRepository(store)
	runner := memory.NewTxRunner(store)

	item := newItem("hilo azul")
	require.NoError(t, items.Create(context.Background(), item))

	boom := assert.AnError
	err := runner.Run(context.Background(), func(
		txItems repository.InventoryItemRepository,
		txMovements repository.StockMovementRepository,
	) error {
		require.NoError(t, txMovements.Create(context.Background(), &entity.StockMovement{
			ID:              uuid.New().String(),
			InventoryItemID: item.ID,
			Type:            entity.MovementTypeEntrada,
			Delta:           decimal.NewFromInt(5),
			Origin:          entity.OriginManualAdjustment,
			CreatedAt:       time.Now(),
		}))
		if _, err := txItems.ApplyQuantityDelta(context.Background(), item.ID, decimal.NewFromInt(5)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero(), "el saldo vuelve atrás con el rollback")
	movs, err := movements.ListByItem(context.Background(), item.ID, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, movs, "el movimiento vuelve atrás con el rollback")
}

func TestTxRunner_ConflictoInyectadoRevierte(t *testing.T) {
	store := memory.NewStore()
	items := memory.NewInventoryItemRepository(store)
	runner := memory.NewTxRunner(store)

	item := newItem("hilo azul")
	require.NoError(t, items.Create(context.Background(), item))

	store.InjectConflicts(1)
	err := runner.Run(context.Background(), func(
		txItems repository.InventoryItemRepository,
		_ repository.StockMovementRepository,
	) error {
		_, err := txItems.ApplyQuantityDelta(context.Background(), item.ID, decimal.NewFromInt(5))
		return err
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := items.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.True(t, got.Quantity.IsZero(), "el conflicto simula una tx que nunca confirmó")

	// La siguiente transacción ya no tiene conflicto pendiente.
	err = runner.Run(context.Background(), func(
		txItems repository.InventoryItemRepository,
		_ repository.StockMovementRepository,
	) error {
		_, err := txItems.ApplyQuantityDelta(context.Background(), item.ID, decimal.NewFromInt(5))
		return err
	})
	require.NoError(t, err)
}
