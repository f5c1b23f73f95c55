package router

import (
	"github.com/erp/ledger/internal/interfaces/http/handler"
)

// Handlers holds every handler the API serves
type Handlers struct {
	System        *handler.SystemHandler
	Stock         *handler.StockHandler
	Consumption   *handler.ConsumptionHandler
	Profitability *handler.ProfitabilityHandler
}

// RegisterLedgerRoutes adds the ledger API groups to r
func RegisterLedgerRoutes(r *Router, h Handlers) *Router {
	system := NewDomainGroup("system", "")
	system.GET("/health", h.System.Health)

	materials := NewDomainGroup("stock", "/materials")
	materials.GET("/critical", h.Stock.Critical)
	materials.GET("/:id/balance", h.Stock.Balance)
	materials.GET("/:id/ledger", h.Stock.History)
	materials.POST("/:id/ledger", h.Stock.Append)
	materials.GET("/:id/ledger/verify", h.Stock.Verify)

	consumptions := NewDomainGroup("consumptions", "/consumptions")
	consumptions.POST("", h.Consumption.Record)
	consumptions.GET("/:id", h.Consumption.Get)
	consumptions.DELETE("/:id", h.Consumption.Delete)

	projects := NewDomainGroup("projects", "/projects")
	projects.GET("/:id/consumptions", h.Consumption.ListByProject)
	projects.GET("/:id/profitability", h.Profitability.Get)

	return r.Register(system).Register(materials).Register(consumptions).Register(projects)
}
