package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// MetadataInput cambio deliberado de metadatos locales de un registro de stock.
// Los campos nil no se tocan. Los metadatos pueden divergir entre ubicaciones
// después de la creación; este es el único camino sancionado para hacerlo.
type MetadataInput struct {
	EquipmentKey string
	LocationID   string
	MinThreshold *int64
	MaxThreshold *int64
	UnitCost     *decimal.Decimal
}

// UpdateMetadata ajusta umbrales y/o costo unitario de un registro con el mismo
// chequeo de versión y presupuesto de reintento que las mutaciones de cantidad.
// No escribe en el libro: los metadatos no son un movimiento de stock.
func (uc *Coordinator) UpdateMetadata(ctx context.Context, input MetadataInput) (*entity.EquipmentStockRecord, error) {
	if input.EquipmentKey == "" || input.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.MinThreshold == nil && input.MaxThreshold == nil && input.UnitCost == nil {
		return nil, fmt.Errorf("%w: nada que actualizar", domain.ErrInvalidInput)
	}
	if (input.MinThreshold != nil && *input.MinThreshold < 0) ||
		(input.MaxThreshold != nil && *input.MaxThreshold < 0) {
		return nil, fmt.Errorf("%w: los umbrales no pueden ser negativos", domain.ErrInvalidInput)
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: el costo unitario no puede ser negativo", domain.ErrInvalidInput)
	}

	var result *entity.EquipmentStockRecord
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		res, err := uc.attemptMetadata(ctx, input)
		if err == nil {
			result = res
			break
		}
		if !retryable(err) || attempt == maxAttempts {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return result, nil
}

func (uc *Coordinator) attemptMetadata(ctx context.Context, input MetadataInput) (*entity.EquipmentStockRecord, error) {
	var result *entity.EquipmentStockRecord

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		_ repository.MovementLedgerRepository,
	) error {
		record, err := stockRepo.Get(ctx, input.EquipmentKey, input.LocationID)
		if err != nil {
			return classify(err)
		}
		if record == nil {
			return fmt.Errorf("%w: %s en %s", domain.ErrNotFound, input.EquipmentKey, input.LocationID)
		}

		if input.MinThreshold != nil || input.MaxThreshold != nil {
			minT, maxT := record.MinThreshold, record.MaxThreshold
			if input.MinThreshold != nil {
				minT = *input.MinThreshold
			}
			if input.MaxThreshold != nil {
				maxT = *input.MaxThreshold
			}
			if err := stockRepo.UpdateThresholds(ctx, record, minT, maxT); err != nil {
				return classify(err)
			}
		}
		if input.UnitCost != nil {
			if err := stockRepo.UpdateUnitCost(ctx, record, *input.UnitCost); err != nil {
				return classify(err)
			}
		}

		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
