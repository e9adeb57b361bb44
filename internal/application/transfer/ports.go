package transfer

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios
// atados a esa tx. Garantiza que el débito, el crédito y los dos asientos del libro
// se comprometen juntos o no se comprometen en absoluto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRecordRepository,
		ledgerRepo repository.MovementLedgerRepository,
	) error) error
}
