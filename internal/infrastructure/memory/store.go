// Package memory implementa los puertos de persistencia sobre estructuras en
// memoria protegidas por mutex. Sirve para correr la API sin PostgreSQL
// (DB_DRIVER=memory) y como almacén de los tests de aplicación.
package memory

import (
	"sync"

	"github.com/ateliepro/atelier-api/internal/domain/entity"
)

// Store estado compartido de todos los repositorios en memoria. El mutex cubre
// lecturas y escrituras; el TxRunner lo toma en exclusiva para que movimiento y
// saldo se confirmen como unidad.
type Store struct {
	mu sync.RWMutex

	items     map[string]*entity.InventoryItem
	movements []*entity.StockMovement
	prefs     map[string]*entity.AlertPreferences
	logs      []*entity.AlertLog

	// conflictsLeft fuerza fallas de conflicto en las próximas N transacciones
	// (ver TxRunner). Solo para tests del camino de reintento.
	conflictsLeft int
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		items: make(map[string]*entity.InventoryItem),
		prefs: make(map[string]*entity.AlertPreferences),
	}
}

// InjectConflicts hace fallar las próximas n transacciones con domain.ErrConflict,
// revirtiendo sus efectos. Simula fallas de serialización del almacén real.
func (s *Store) InjectConflicts(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflictsLeft = n
}

func cloneItem(i *entity.InventoryItem) *entity.InventoryItem {
	c := *i
	if i.CostPerUnit != nil {
		v := *i.CostPerUnit
		c.CostPerUnit = &v
	}
	if i.DeletedAt != nil {
		t := *i.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	if m.OriginID != nil {
		v := *m.OriginID
		c.OriginID = &v
	}
	return &c
}

func clonePrefs(p *entity.AlertPreferences) *entity.AlertPreferences {
	c := *p
	return &c
}

func cloneLog(l *entity.AlertLog) *entity.AlertLog {
	c := *l
	return &c
}
