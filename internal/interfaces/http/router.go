package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/documents"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	DocumentsUC *documents.UseCase
	StockQuery  *inventory.StockQueryUseCase
	Reports     *inventory.ReportUseCase
	Alerts      *alerts.Service
	Dashboard   *appanalytics.DashboardUseCase
	JWTSecret   string
}

// documentRoutes prefijo de cada tipo de documento.
var documentRoutes = []struct {
	path    string
	docType entity.DocumentType
}{
	{"/receipts", entity.DocumentTypeReceipt},
	{"/delivery-orders", entity.DocumentTypeDeliveryOrder},
	{"/transfers", entity.DocumentTypeTransfer},
	{"/adjustments", entity.DocumentTypeAdjustment},
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)
	onlyManager := RequireRole(entity.RoleManager)

	// Documentos: mismo CRUD por tipo; validar mueve stock y es solo de manager
	for _, r := range documentRoutes {
		h := NewDocumentHandler(deps.DocumentsUC, r.docType)
		g := protected.Group(r.path)
		g.Get("/", h.List)
		g.Post("/", h.Create)
		g.Get("/:id", h.GetByID)
		g.Put("/:id", h.Update)
		g.Delete("/:id", h.Delete)
		g.Post("/:id/validate", onlyManager, h.Validate)
	}

	// Saldos y libro de movimientos (solo lectura)
	inventoryHandler := NewInventoryHandler(deps.StockQuery, deps.Reports)
	stock := protected.Group("/stock")
	stock.Get("/balances", inventoryHandler.ListBalances)
	stock.Get("/balances/:product_id/:warehouse_id", inventoryHandler.GetBalance)

	ledger := protected.Group("/ledger")
	ledger.Get("/", inventoryHandler.ListLedger)
	ledger.Get("/report.pdf", inventoryHandler.StockCardPDF)
	ledger.Get("/:id", inventoryHandler.GetLedgerEntry)

	// Alertas de stock bajo
	alertHandler := NewAlertHandler(deps.Alerts)
	alertGroup := protected.Group("/stock-alerts")
	alertGroup.Get("/active", alertHandler.ListActive)
	alertGroup.Post("/check", onlyManager, alertHandler.Check)
	alertGroup.Put("/:id/resolve", onlyManager, alertHandler.Resolve)

	// Dashboard
	protected.Get("/dashboard", NewDashboardHandler(deps.Dashboard).GetSummary)
}
