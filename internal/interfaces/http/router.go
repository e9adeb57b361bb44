package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/stockquery"
	"github.com/jhoicas/almacen-api/internal/application/transfer"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator  *transfer.Coordinator
	Queries      *stockquery.Service
	LocationRepo repository.LocationRepository
}

// Router registra las rutas de la API. Las rutas que mutan stock exigen actor;
// las de lectura no.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", ActorMiddleware())

	transferHandler := NewTransferHandler(deps.Coordinator)
	stockHandler := NewStockHandler(deps.Queries)
	movementHandler := NewMovementHandler(deps.Queries)
	locationHandler := NewLocationHandler(deps.LocationRepo)

	// Escritura (requiere actor)
	transfers := api.Group("/transfers", RequireActor())
	transfers.Post("/", transferHandler.Transfer)
	transfers.Post("/batch", transferHandler.TransferBatch)
	api.Post("/stock/adjustments", RequireActor(), transferHandler.Adjust)
	api.Patch("/stock/:equipmentKey/:locationID", RequireActor(), transferHandler.UpdateMetadata)

	// Lectura de stock
	api.Get("/stock/low", stockHandler.ListLowStock)
	api.Get("/stock/value", stockHandler.TotalValue)
	api.Get("/stock/:equipmentKey/distribution", stockHandler.Distribution)
	api.Get("/stock/:equipmentKey/:locationID", stockHandler.GetStock)

	// Libro de movimientos
	api.Get("/movements", movementHandler.List)
	api.Get("/movements/export", movementHandler.Export)

	// Ubicaciones
	locations := api.Group("/locations")
	locations.Post("/", RequireActor(), locationHandler.Create)
	locations.Get("/", locationHandler.List)
	locations.Get("/:locationID/stock", stockHandler.ListByLocation)
	locations.Get("/:id", locationHandler.GetByID)
}
