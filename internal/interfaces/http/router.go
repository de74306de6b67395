package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/pos-ledger/internal/application/ledger"
	"github.com/jhoicas/pos-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Gateway     ledger.StockMovementGateway
	Reconciler  *ledger.Reconciler
	Reporter    *ledger.Reporter
	Opening     OpeningStockSetter
	Categories  CategoryLister
	PDF         ReportPDFGenerator
	Invalidator CatalogInvalidator // opcional
	JWTSecret   string
	JWTIssuer   string
}

// Router registra las rutas de la API. Todo /api/v1/pos requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	h := NewLedgerHandler(deps.Gateway, deps.Reconciler, deps.Reporter, deps.Opening, deps.Categories, deps.PDF, deps.Invalidator)

	pos := app.Group("/api/v1/pos", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	write := RequireRole(jwt.RoleAdmin, jwt.RoleCashier, jwt.RoleStock)

	pos.Get("/catalog", h.Catalog)
	pos.Get("/categories", h.Categories)

	// Entradas
	pos.Post("/create_stockIn", write, h.CreateStockIn)
	pos.Put("/update_stockIn/:id", write, h.UpdateStockIn)
	pos.Delete("/delete_stockIn/:id", write, h.DeleteStockIn)
	pos.Get("/get_stockIn", h.ListStockIn)
	pos.Get("/get_stockIn/:id", h.GetStockIn)
	pos.Post("/preview_stockIn", h.PreviewStockIn)

	// Salidas
	pos.Post("/stock-out", write, h.CreateStockOut)
	pos.Put("/update_stockOut/:id", write, h.UpdateStockOut)
	pos.Delete("/delete_stockOut/:id", write, h.DeleteStockOut)
	pos.Get("/get_stockOut", h.ListStockOut)
	pos.Get("/get_stockOut/:id", h.GetStockOut)
	pos.Post("/preview_stockOut", h.PreviewStockOut)

	pos.Post("/product_barcode/:productId", write, h.SaveBarcodes)

	// Tarjetas de stock y reportes
	pos.Get("/get_stock_record", h.ListStockRecords)
	pos.Put("/stock_record/:productId/opening", RequireRole(jwt.RoleAdmin), h.SetOpeningStock)
	pos.Get("/stock_record/:productId/statement", h.Statement)
	pos.Get("/stock_record/:productId/statement/pdf", h.StatementPDF)
	pos.Get("/stock/grouped", h.Report)
	pos.Get("/stock/grouped/pdf", h.ReportPDF)
}
