package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// AdjustInput ajuste de stock en una sola ubicación: recepción inicial, merma,
// corrección de conteo. Es la única operación sancionada, además del traslado,
// que muta registros de stock; pasa por el mismo camino CAS + libro.
type AdjustInput struct {
	EquipmentKey string
	LocationID   string
	Direction    string // in | out
	Quantity     int64
	Reason       string
	Actor        string
	Seed         *entity.StockSeed // metadatos al crear el registro en la primera entrada
}

// AdjustResult estado comprometido del registro más el asiento producido.
type AdjustResult struct {
	Record entity.EquipmentStockRecord
	Entry  *entity.MovementEntry
}

// Adjust aplica una entrada o salida directa con el mismo presupuesto de
// reintento que Transfer. Una entrada sobre un registro inexistente lo crea
// (primer arribo de stock a la ubicación); una salida lo exige existente.
func (uc *Coordinator) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.EquipmentKey == "" || input.LocationID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser un entero positivo, llegó %d", domain.ErrInvalidQuantity, input.Quantity)
	}
	if input.Direction != entity.DirectionIn && input.Direction != entity.DirectionOut {
		return nil, fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, input.Direction)
	}
	loc, err := uc.locationRepo.GetByID(ctx, input.LocationID)
	if err != nil {
		return nil, classify(err)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, input.LocationID)
	}

	var result *AdjustResult
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		res, err := uc.attemptAdjust(ctx, input)
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

func (uc *Coordinator) attemptAdjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	var result *AdjustResult

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.MovementLedgerRepository,
	) error {
		record, err := stockRepo.Get(ctx, input.EquipmentKey, input.LocationID)
		if err != nil {
			return classify(err)
		}
		if record == nil {
			if input.Direction == entity.DirectionOut {
				return fmt.Errorf("%w: %s en %s", domain.ErrSourceNotFound, input.EquipmentKey, input.LocationID)
			}
			seed := entity.StockSeed{}
			if input.Seed != nil {
				seed = *input.Seed
			}
			record, err = stockRepo.CreateIfAbsent(ctx, input.EquipmentKey, input.LocationID, seed)
			if err != nil {
				return classify(err)
			}
		}

		prev := record.Quantity
		newQty := prev + input.Quantity
		if input.Direction == entity.DirectionOut {
			if prev < input.Quantity {
				return &domain.InsufficientStockError{
					EquipmentKey: input.EquipmentKey,
					LocationID:   input.LocationID,
					Requested:    input.Quantity,
					Available:    prev,
				}
			}
			newQty = prev - input.Quantity
		}
		if err := stockRepo.CompareAndSwap(ctx, record, newQty); err != nil {
			return classify(err)
		}

		entry := &entity.MovementEntry{
			EquipmentKey:     input.EquipmentKey,
			LocationID:       input.LocationID,
			Direction:        input.Direction,
			Quantity:         input.Quantity,
			Reason:           input.Reason,
			PreviousQuantity: prev,
			NewQuantity:      record.Quantity,
			CreatedAt:        time.Now(),
			Actor:            input.Actor,
			TransferGroupID:  uuid.New().String(),
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return classify(err)
		}

		result = &AdjustResult{Record: *record, Entry: entry}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
