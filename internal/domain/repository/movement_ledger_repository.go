package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementFilter filtros para listar movimientos. Los campos vacíos no filtran.
type MovementFilter struct {
	EquipmentKey    string
	LocationID      string
	TransferGroupID string
	Since           *time.Time
	Limit           int
	Offset          int
}

// MovementLedgerRepository define el puerto del libro de movimientos (append-only).
// Los asientos nunca se actualizan ni se eliminan después de Append.
type MovementLedgerRepository interface {
	// Append persiste un asiento nuevo; genera el ID si viene vacío.
	Append(ctx context.Context, entry *entity.MovementEntry) error

	// List devuelve movimientos según filtro, del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.MovementEntry, error)

	// ListByGroup devuelve los asientos de un grupo de traslado en orden de inserción.
	ListByGroup(ctx context.Context, transferGroupID string) ([]*entity.MovementEntry, error)
}
