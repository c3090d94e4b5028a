package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"

	"github.com/jhoicas/stock-ledger/docs"
	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	appanalytics "github.com/jhoicas/stock-ledger/internal/application/analytics"
	"github.com/jhoicas/stock-ledger/internal/application/auth"
	"github.com/jhoicas/stock-ledger/internal/application/documents"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// @title           Stock Ledger API
// @version         1.0
// @description     Saldos por bodega, libro de movimientos y documentos de inventario.
// @BasePath        /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("storage", cfg.Storage.Driver).
		Str("sequence", cfg.Storage.SequenceDriver).
		Str("validation_mode", cfg.Stock.ValidationMode).
		Msg("iniciando aplicación")

	// Fatal corre fuera de run: los defer de run ya cerraron storage y cola.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}

func run(cfg *config.Config, log *logger.Logger) error {
	if cfg.JWT.Secret == "" {
		return errors.New("JWT_SECRET es requerido")
	}
	mode, err := documents.ParseValidationMode(cfg.Stock.ValidationMode)
	if err != nil {
		return fmt.Errorf("STOCK_VALIDATION_MODE: %w", err)
	}

	ctx := context.Background()
	stores, err := bootstrap.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		return fmt.Errorf("inicializar storage: %w", err)
	}
	defer stores.Close()

	engine := inventory.NewStockEngine(stores.TxRunner, log.Component("engine"), inventory.EngineConfig{
		MaxRetries:   cfg.Stock.MaxRetries,
		RetryBackoff: cfg.Stock.RetryBackoff,
	})
	queries := inventory.NewStockQueryUseCase(stores.Balances, stores.Ledger)
	alertSvc := alerts.NewService(stores.Products, stores.Warehouses, stores.Balances, stores.Alerts, log.Component("alerts"))

	// Con Redis el chequeo de stock bajo tras validar se delega al worker; sin Redis se hace en línea.
	var notifier documents.StockNotifier = alertSvc
	if cfg.Redis.Enabled() {
		client := jobs.NewClient(bootstrap.AsynqRedisOpt(cfg.Redis))
		defer client.Close()
		notifier = client
	}

	documentsUC := documents.NewUseCase(documents.Deps{
		Documents:  stores.Documents,
		Products:   stores.Products,
		Warehouses: stores.Warehouses,
		Sequence:   stores.Sequence,
		Engine:     engine,
		Notifier:   notifier,
		Logger:     log.Component("documents"),
	}, mode)

	reportUC := inventory.NewReportUseCase(queries, stores.Products, stores.Warehouses, infrapdf.NewStockCardGenerator(language.Spanish))
	dashboardUC := appanalytics.NewDashboardUseCase(
		stores.Products, stores.Balances, stores.Documents, stores.Alerts,
		decimal.NewFromInt(cfg.Stock.LowStockThreshold),
	)
	authUC := auth.NewAuthUseCase(stores.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    docs.SwaggerInfo.Title,
	}))
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(docs.SwaggerInfo.ReadDoc())
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		DocumentsUC: documentsUC,
		StockQuery:  queries,
		Reports:     reportUC,
		Alerts:      alertSvc,
		Dashboard:   dashboardUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	log.Info().
		Str("addr", cfg.HTTP.Addr()).
		Str("storage", cfg.Storage.Driver).
		Str("validation_mode", string(documentsUC.Mode())).
		Msg("servidor HTTP escuchando")

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
