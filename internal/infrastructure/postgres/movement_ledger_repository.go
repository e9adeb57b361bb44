package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.MovementLedgerRepository = (*MovementLedgerRepo)(nil)

const movementFields = `id, equipment_key, location_id, direction, quantity, reason, counterparty_location_id, previous_quantity, new_quantity, created_at, actor, transfer_group_id`

// MovementLedgerRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). La tabla es append-only: no hay UPDATE ni DELETE.
type MovementLedgerRepo struct {
	q Querier
}

// NewMovementLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLedgerRepository(q Querier) *MovementLedgerRepo {
	return &MovementLedgerRepo{q: q}
}

// Append persiste un asiento. Genera el ID si viene vacío y fija CreatedAt si
// viene en cero. El asiento nunca se modifica después.
func (r *MovementLedgerRepo) Append(ctx context.Context, entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO movement_ledger (` + movementFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	counterparty := (*string)(nil)
	if entry.CounterpartyLocationID != "" {
		counterparty = &entry.CounterpartyLocationID
	}
	_, err := r.q.Exec(ctx, query,
		entry.ID, entry.EquipmentKey, entry.LocationID, entry.Direction,
		entry.Quantity, entry.Reason, counterparty,
		entry.PreviousQuantity, entry.NewQuantity, entry.CreatedAt,
		entry.Actor, entry.TransferGroupID,
	)
	if err != nil {
		// El índice único (transfer_group_id, direction) deja comprometer un
		// solo asiento por grupo y dirección: si salta, otro envío del mismo
		// grupo ya ganó la carrera.
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el grupo %s ya tiene un asiento %s", domain.ErrDuplicateTransfer, entry.TransferGroupID, entry.Direction)
		}
		return fmt.Errorf("append movement entry: %w", err)
	}
	return nil
}

// List devuelve movimientos según filtro, del más reciente al más antiguo.
func (r *MovementLedgerRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementFields + `
		FROM movement_ledger WHERE 1=1`
	var args []any
	pos := 1
	if filter.EquipmentKey != "" {
		query += fmt.Sprintf(" AND equipment_key = $%d", pos)
		args = append(args, filter.EquipmentKey)
		pos++
	}
	if filter.LocationID != "" {
		query += fmt.Sprintf(" AND location_id = $%d", pos)
		args = append(args, filter.LocationID)
		pos++
	}
	if filter.TransferGroupID != "" {
		query += fmt.Sprintf(" AND transfer_group_id = $%d", pos)
		args = append(args, filter.TransferGroupID)
		pos++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.Since)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// ListByGroup devuelve los asientos de un grupo de traslado en orden de inserción
// (la salida del origen antes que la entrada al destino).
func (r *MovementLedgerRepo) ListByGroup(ctx context.Context, transferGroupID string) ([]*entity.MovementEntry, error) {
	query := `
		SELECT ` + movementFields + `
		FROM movement_ledger WHERE transfer_group_id = $1
		ORDER BY created_at ASC, id ASC`
	rows, err := r.q.Query(ctx, query, transferGroupID)
	if err != nil {
		return nil, fmt.Errorf("list movements by group: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.MovementEntry, error) {
	var list []*entity.MovementEntry
	for rows.Next() {
		var m entity.MovementEntry
		var counterparty *string
		if err := rows.Scan(&m.ID, &m.EquipmentKey, &m.LocationID, &m.Direction,
			&m.Quantity, &m.Reason, &counterparty,
			&m.PreviousQuantity, &m.NewQuantity, &m.CreatedAt,
			&m.Actor, &m.TransferGroupID); err != nil {
			return nil, fmt.Errorf("scan movement entry: %w", err)
		}
		if counterparty != nil {
			m.CounterpartyLocationID = *counterparty
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
