package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquipmentStockRecord representa la existencia de un equipo (SKU) en una ubicación.
// La identidad es la clave compuesta (EquipmentKey, LocationID); Version se usa para
// concurrencia optimista y se incrementa en cada mutación comprometida.
type EquipmentStockRecord struct {
	EquipmentKey  string
	LocationID    string
	Name          string          // metadatos descriptivos, clonados del origen al crear el destino
	EquipmentType string
	Quantity      int64           // unidades enteras, nunca negativo
	UnitCost      decimal.Decimal // costo unitario; cero = sin valorar
	MinThreshold  int64           // umbral de stock bajo; cero = sin umbral
	MaxThreshold  int64           // umbral superior informativo; cero = sin umbral
	Version       int64           // inicia en 1 al crear el registro
	UpdatedAt     time.Time
}

// LowStock indica si el registro está en o bajo su umbral mínimo.
// Un registro sin umbral configurado nunca se reporta como stock bajo.
func (r *EquipmentStockRecord) LowStock() bool {
	return r.MinThreshold > 0 && r.Quantity <= r.MinThreshold
}

// StockSeed metadatos descriptivos para crear un registro nuevo en una ubicación
// (política "clonar al primer arribo": el destino hereda los datos del origen).
type StockSeed struct {
	Name          string
	EquipmentType string
	UnitCost      decimal.Decimal
	MinThreshold  int64
	MaxThreshold  int64
}

// Seed devuelve los metadatos del registro para sembrar un destino nuevo.
func (r *EquipmentStockRecord) Seed() StockSeed {
	return StockSeed{
		Name:          r.Name,
		EquipmentType: r.EquipmentType,
		UnitCost:      r.UnitCost,
		MinThreshold:  r.MinThreshold,
		MaxThreshold:  r.MaxThreshold,
	}
}
