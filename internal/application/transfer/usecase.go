package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Presupuesto de reintentos ante conflictos de versión y fallas transitorias
// del almacenamiento. Las precondiciones se reevalúan con lecturas frescas en
// cada intento, así que reintentar es seguro.
const (
	maxAttempts    = 3
	initialBackoff = 25 * time.Millisecond
)

// Coordinator ejecuta traslados de stock entre ubicaciones como unidad atómica y
// auditable: debita el origen, acredita el destino (creándolo si no existe) y
// escribe los dos asientos del libro en una sola transacción. Usa concurrencia
// optimista (chequeo de versión al comprometer) en lugar de locks sostenidos.
type Coordinator struct {
	txRunner     TxRunner
	locationRepo repository.LocationRepository
	ledgerRepo   repository.MovementLedgerRepository // fuera de tx, solo para deduplicación
}

// NewCoordinator construye el coordinador de traslados.
func NewCoordinator(
	txRunner TxRunner,
	locationRepo repository.LocationRepository,
	ledgerRepo repository.MovementLedgerRepository,
) *Coordinator {
	return &Coordinator{
		txRunner:     txRunner,
		locationRepo: locationRepo,
		ledgerRepo:   ledgerRepo,
	}
}

// TransferInput solicitud de traslado de un equipo entre dos ubicaciones.
// TransferGroupID es opcional: si el cliente lo provee actúa como clave de
// idempotencia contra envíos repetidos; si viene vacío se genera uno.
type TransferInput struct {
	SourceLocationID      string
	DestinationLocationID string
	EquipmentKey          string
	Quantity              int64
	Actor                 string
	Notes                 string
	TransferGroupID       string
}

// TransferResult estado comprometido de ambos registros más los dos asientos.
// Duplicate indica que se devolvió el resultado original de un envío repetido
// (en ese caso las versiones de los registros no se reconstruyen).
type TransferResult struct {
	TransferGroupID string
	Source          entity.EquipmentStockRecord
	Destination     entity.EquipmentStockRecord
	OutEntry        *entity.MovementEntry
	InEntry         *entity.MovementEntry
	Duplicate       bool
}

// Transfer ejecuta un traslado. O bien ambas mutaciones y ambos asientos quedan
// comprometidos, o ninguno: ningún lector puede observar el origen debitado sin
// el destino acreditado. Ante conflicto de versión reintenta desde lecturas
// frescas hasta agotar el presupuesto.
func (uc *Coordinator) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if err := uc.validate(ctx, input); err != nil {
		return nil, err
	}

	groupID := input.TransferGroupID
	if groupID == "" {
		groupID = uuid.New().String()
	} else {
		// Clave de idempotencia provista: si el grupo ya tiene asientos, el traslado
		// ya se ejecutó y se devuelve el resultado original sin volver a aplicarlo.
		prior, err := uc.ledgerRepo.ListByGroup(ctx, groupID)
		if err != nil {
			return nil, classify(err)
		}
		if len(prior) > 0 {
			return uc.replayResult(groupID, prior, input)
		}
	}

	var result *TransferResult
	backoff := initialBackoff
	for attempt := 1; ; attempt++ {
		res, err := uc.attempt(ctx, input, groupID)
		if err == nil {
			result = res
			break
		}
		if errors.Is(err, domain.ErrDuplicateTransfer) {
			// Perdimos la carrera por la clave de idempotencia: otro envío del
			// mismo grupo comprometió entre nuestra lectura de deduplicación y
			// el commit. Se devuelve el resultado del ganador en vez de aplicar
			// el traslado dos veces.
			prior, lerr := uc.ledgerRepo.ListByGroup(ctx, groupID)
			if lerr != nil {
				return nil, classify(lerr)
			}
			if len(prior) > 0 {
				return uc.replayResult(groupID, prior, input)
			}
			return nil, err
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

// retryable indica si el error amerita otro intento dentro del presupuesto:
// conflictos de versión y fallas transitorias del almacenamiento.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrConcurrentModification) ||
		errors.Is(err, domain.ErrStorageUnavailable)
}

// validate chequea precondiciones que no requieren leer stock. No muta nada.
func (uc *Coordinator) validate(ctx context.Context, input TransferInput) error {
	if input.EquipmentKey == "" || input.SourceLocationID == "" || input.DestinationLocationID == "" {
		return domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo, llegó %d", domain.ErrInvalidQuantity, input.Quantity)
	}
	if input.SourceLocationID == input.DestinationLocationID {
		return domain.ErrSameLocation
	}
	for _, id := range []string{input.SourceLocationID, input.DestinationLocationID} {
		loc, err := uc.locationRepo.GetByID(ctx, id)
		if err != nil {
			return classify(err)
		}
		if loc == nil {
			return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

// attempt ejecuta un intento completo dentro de una transacción: lectura fresca del
// origen, búsqueda o creación del destino, débito y crédito condicionados a versión,
// y los dos asientos del libro. Cualquier error revierte todo.
func (uc *Coordinator) attempt(ctx context.Context, input TransferInput, groupID string) (*TransferResult, error) {
	var result *TransferResult

	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.MovementLedgerRepository,
	) error {
		source, err := stockRepo.Get(ctx, input.EquipmentKey, input.SourceLocationID)
		if err != nil {
			return classify(err)
		}
		if source == nil {
			return fmt.Errorf("%w: %s en %s", domain.ErrSourceNotFound, input.EquipmentKey, input.SourceLocationID)
		}
		if source.Quantity < input.Quantity {
			return &domain.InsufficientStockError{
				EquipmentKey: input.EquipmentKey,
				LocationID:   input.SourceLocationID,
				Requested:    input.Quantity,
				Available:    source.Quantity,
			}
		}

		dest, err := stockRepo.Get(ctx, input.EquipmentKey, input.DestinationLocationID)
		if err != nil {
			return classify(err)
		}
		if dest == nil {
			// Clonar al primer arribo: el destino hereda los metadatos descriptivos
			// del origen. En registros ya existentes los metadatos no se tocan.
			dest, err = stockRepo.CreateIfAbsent(ctx, input.EquipmentKey, input.DestinationLocationID, source.Seed())
			if err != nil {
				return classify(err)
			}
		}

		prevSource, prevDest := source.Quantity, dest.Quantity
		if err := stockRepo.CompareAndSwap(ctx, source, prevSource-input.Quantity); err != nil {
			return classify(err)
		}
		if err := stockRepo.CompareAndSwap(ctx, dest, prevDest+input.Quantity); err != nil {
			return classify(err)
		}

		reason := input.Notes
		if reason == "" {
			reason = "traslado entre ubicaciones"
		}
		now := time.Now()
		outEntry := &entity.MovementEntry{
			EquipmentKey:           input.EquipmentKey,
			LocationID:             input.SourceLocationID,
			Direction:              entity.DirectionOut,
			Quantity:               input.Quantity,
			Reason:                 reason,
			CounterpartyLocationID: input.DestinationLocationID,
			PreviousQuantity:       prevSource,
			NewQuantity:            source.Quantity,
			CreatedAt:              now,
			Actor:                  input.Actor,
			TransferGroupID:        groupID,
		}
		inEntry := &entity.MovementEntry{
			EquipmentKey:           input.EquipmentKey,
			LocationID:             input.DestinationLocationID,
			Direction:              entity.DirectionIn,
			Quantity:               input.Quantity,
			Reason:                 reason,
			CounterpartyLocationID: input.SourceLocationID,
			PreviousQuantity:       prevDest,
			NewQuantity:            dest.Quantity,
			CreatedAt:              now,
			Actor:                  input.Actor,
			TransferGroupID:        groupID,
		}
		if err := ledgerRepo.Append(ctx, outEntry); err != nil {
			return classify(err)
		}
		if err := ledgerRepo.Append(ctx, inEntry); err != nil {
			return classify(err)
		}

		result = &TransferResult{
			TransferGroupID: groupID,
			Source:          *source,
			Destination:     *dest,
			OutEntry:        outEntry,
			InEntry:         inEntry,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// replayResult reconstruye el resultado de un traslado ya comprometido a partir de
// sus asientos. Si los parámetros del request no coinciden con lo registrado, no se
// devuelve el resultado de otro traslado: se rechaza como duplicado inválido.
func (uc *Coordinator) replayResult(groupID string, entries []*entity.MovementEntry, input TransferInput) (*TransferResult, error) {
	var outEntry, inEntry *entity.MovementEntry
	for _, e := range entries {
		switch e.Direction {
		case entity.DirectionOut:
			outEntry = e
		case entity.DirectionIn:
			inEntry = e
		}
	}
	if outEntry == nil || inEntry == nil ||
		outEntry.EquipmentKey != input.EquipmentKey ||
		outEntry.LocationID != input.SourceLocationID ||
		inEntry.LocationID != input.DestinationLocationID ||
		outEntry.Quantity != input.Quantity {
		return nil, fmt.Errorf("%w: grupo %s", domain.ErrDuplicateTransfer, groupID)
	}
	return &TransferResult{
		TransferGroupID: groupID,
		Source: entity.EquipmentStockRecord{
			EquipmentKey: outEntry.EquipmentKey,
			LocationID:   outEntry.LocationID,
			Quantity:     outEntry.NewQuantity,
		},
		Destination: entity.EquipmentStockRecord{
			EquipmentKey: inEntry.EquipmentKey,
			LocationID:   inEntry.LocationID,
			Quantity:     inEntry.NewQuantity,
		},
		OutEntry:  outEntry,
		InEntry:   inEntry,
		Duplicate: true,
	}, nil
}

// classify envuelve errores de infraestructura que no son de dominio como
// ErrStorageUnavailable, para que el caller pueda distinguir fallas recuperables
// del almacenamiento de errores de precondición.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrConcurrentModification),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrSourceNotFound),
		errors.Is(err, domain.ErrDuplicateTransfer),
		errors.Is(err, domain.ErrStorageUnavailable):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
}
