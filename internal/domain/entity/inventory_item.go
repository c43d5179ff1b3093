package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de ítem de inventario del taller.
const (
	ItemTypeRawMaterial  = "raw_material"  // insumos: hilos, botones, cierres
	ItemTypeFabric       = "fabric"        // telas (metraje y color)
	ItemTypeFinishedGood = "finished_good" // prendas terminadas
)

// FabricMetadata atributos propios de las telas.
type FabricMetadata struct {
	LengthMeters decimal.Decimal `json:"length_meters"`
	Color        string          `json:"color"`
}

// RawMaterialMetadata atributos propios de insumos.
type RawMaterialMetadata struct {
	Brand     string `json:"brand,omitempty"`
	Reference string `json:"reference,omitempty"`
}

// FinishedGoodMetadata atributos propios de prendas terminadas.
type FinishedGoodMetadata struct {
	Size       string `json:"size,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// ItemMetadata variante etiquetada: a lo sumo un payload, y debe corresponder al ItemType.
type ItemMetadata struct {
	RawMaterial  *RawMaterialMetadata  `json:"raw_material,omitempty"`
	Fabric       *FabricMetadata       `json:"fabric,omitempty"`
	FinishedGood *FinishedGoodMetadata `json:"finished_good,omitempty"`
}

// MatchesType verifica que el payload presente corresponda al tipo del ítem.
// Un metadata vacío es válido para cualquier tipo.
func (m ItemMetadata) MatchesType(itemType string) bool {
	set := 0
	if m.RawMaterial != nil {
		set++
		if itemType != ItemTypeRawMaterial {
			return false
		}
	}
	if m.Fabric != nil {
		set++
		if itemType != ItemTypeFabric {
			return false
		}
	}
	if m.FinishedGood != nil {
		set++
		if itemType != ItemTypeFinishedGood {
			return false
		}
	}
	return set <= 1
}

// ValidItemType verifica que el tipo sea uno de los conocidos.
func ValidItemType(t string) bool {
	switch t {
	case ItemTypeRawMaterial, ItemTypeFabric, ItemTypeFinishedGood:
		return true
	}
	return false
}

// InventoryItem ítem del inventario del taller. Quantity es el saldo cacheado:
// el libro de movimientos es la fuente de verdad y ambos se actualizan en la misma
// unidad atómica (ver Reconciler). Un DeletedAt no nulo marca tombstone: el ítem
// sale de los listados activos pero sus movimientos permanecen consultables.
type InventoryItem struct {
	ID             string
	CompanyID      string
	Name           string
	NameNormalized string // nombre sin acentos y en minúsculas, para búsqueda
	Unit           string // unidad de medida: unidad, metro, rollo...
	Quantity       decimal.Decimal
	MinQuantity    decimal.Decimal
	ItemType       string
	CostPerUnit    *decimal.Decimal
	Supplier       string
	Category       string
	Metadata       ItemMetadata
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// IsDeleted indica si el ítem está tombstoneado.
func (i *InventoryItem) IsDeleted() bool {
	return i.DeletedAt != nil
}
