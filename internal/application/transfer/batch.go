package transfer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// BatchItem un equipo y cantidad dentro de un traslado por lote.
type BatchItem struct {
	EquipmentKey string
	Quantity     int64
}

// BatchInput traslado de varios equipos entre el mismo par de ubicaciones.
// Cada ítem es un traslado independiente: la atomicidad se garantiza por ítem
// (par débito/crédito), no entre ítems distintos del lote.
type BatchInput struct {
	SourceLocationID      string
	DestinationLocationID string
	Items                 []BatchItem
	Actor                 string
	Notes                 string
	GroupPrefix           string // opcional; si viene vacío se genera
}

// BatchItemResult resultado de un ítem del lote: o Result o Err, nunca ambos.
type BatchItemResult struct {
	EquipmentKey    string
	TransferGroupID string
	Result          *TransferResult
	Err             error
}

// BatchResult reporte de éxito parcial de un lote.
type BatchResult struct {
	GroupPrefix string
	Items       []BatchItemResult
	Succeeded   int
	Failed      int
}

// TransferBatch ejecuta los ítems en secuencia y reporta exactamente cuáles
// quedaron comprometidos y cuáles fallaron. Un fallo no detiene el lote ni
// revierte los ítems anteriores. Cada ítem recibe el grupo "<prefijo>-<n>"
// (índice 1-based), así la deduplicación por grupo sigue operando por ítem y
// el libro correlaciona el lote completo por prefijo.
func (uc *Coordinator) TransferBatch(ctx context.Context, input BatchInput) (*BatchResult, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: lote vacío", domain.ErrInvalidInput)
	}
	prefix := input.GroupPrefix
	if prefix == "" {
		prefix = uuid.New().String()
	}

	result := &BatchResult{GroupPrefix: prefix, Items: make([]BatchItemResult, 0, len(input.Items))}
	for i, item := range input.Items {
		groupID := fmt.Sprintf("%s-%d", prefix, i+1)
		res, err := uc.Transfer(ctx, TransferInput{
			SourceLocationID:      input.SourceLocationID,
			DestinationLocationID: input.DestinationLocationID,
			EquipmentKey:          item.EquipmentKey,
			Quantity:              item.Quantity,
			Actor:                 input.Actor,
			Notes:                 input.Notes,
			TransferGroupID:       groupID,
		})
		itemResult := BatchItemResult{EquipmentKey: item.EquipmentKey, TransferGroupID: groupID}
		if err != nil {
			itemResult.Err = err
			result.Failed++
		} else {
			itemResult.Result = res
			result.Succeeded++
		}
		result.Items = append(result.Items, itemResult)
	}
	return result, nil
}
