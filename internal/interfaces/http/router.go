package http

import (
	"github.com/gofiber/fiber/v2"
	appsync "github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC    *usecase.CatalogUseCase
	OrderUC      *usecase.OrderUseCase
	StatsUC      *usecase.StatsUseCase
	Orchestrator *appsync.Orchestrator
	JWTSecret    string
}

// Router registra las rutas de la API. Las lecturas son públicas; disparar
// corridas de sincronización exige Bearer Token con rol admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo (lectura pública)
	items := api.Group("/items")
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	items.Get("/", catalogHandler.List)
	items.Get("/:id", catalogHandler.GetByID)

	// Órdenes (lectura pública)
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)

	// Reportería (lectura pública)
	stats := api.Group("/stats")
	statsHandler := NewStatsHandler(deps.StatsUC)
	stats.Get("/inventory", statsHandler.Inventory)
	stats.Get("/regions", statsHandler.Regions)
	stats.Get("/orders", statsHandler.Orders)

	// Sincronización (protegido: Bearer Token + rol admin)
	syncGroup := api.Group("/sync", AuthMiddleware(deps.JWTSecret), RequireRole("admin"))
	syncHandler := NewSyncHandler(deps.Orchestrator)
	syncGroup.Get("/probe", syncHandler.Probe)
	syncGroup.Post("/items", syncHandler.Items)
	syncGroup.Post("/items/sweep", syncHandler.Sweep)
	syncGroup.Post("/items/from-orders", syncHandler.ItemsFromOrders)
	syncGroup.Post("/orders", syncHandler.Orders)
	syncGroup.Post("/movement", syncHandler.Movement)
}
