// seed importa el catálogo (productos y bodegas) desde archivos CSV separados por ';'.
//
// Uso: go run ./cmd/seed -products productos.csv -warehouses bodegas.csv [-encoding latin1]
// Usa la misma configuración que la API (STORAGE_DRIVER debe ser postgres).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/internal/catalog"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	productsPath := flag.String("products", "", "CSV de productos: sku;nombre;categoría;unidad;stock_mínimo")
	warehousesPath := flag.String("warehouses", "", "CSV de bodegas: código;nombre;dirección")
	encoding := flag.String("encoding", "utf8", "codificación de los archivos: utf8 | latin1")
	flag.Parse()

	if *productsPath == "" && *warehousesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-seed"})
	if err := run(cfg, log, *warehousesPath, *productsPath, catalog.Encoding(*encoding)); err != nil {
		log.Fatal().Err(err).Msg("seed finalizado con error")
	}
}

func run(cfg *config.Config, log *logger.Logger, warehousesPath, productsPath string, enc catalog.Encoding) error {
	if cfg.Storage.Driver != "postgres" {
		return fmt.Errorf("seed requiere STORAGE_DRIVER=postgres (actual %q)", cfg.Storage.Driver)
	}

	ctx := context.Background()
	stores, err := bootstrap.Open(ctx, cfg, log.Component("storage"))
	if err != nil {
		return fmt.Errorf("inicializar storage: %w", err)
	}
	defer stores.Close()

	if warehousesPath != "" {
		f, err := os.Open(warehousesPath)
		if err != nil {
			return fmt.Errorf("abrir CSV de bodegas: %w", err)
		}
		whs, err := catalog.ReadWarehouses(f, enc)
		f.Close()
		if err != nil {
			return fmt.Errorf("leer bodegas: %w", err)
		}
		res, err := catalog.ImportWarehouses(ctx, stores.Warehouses, whs)
		if err != nil {
			return fmt.Errorf("importar bodegas: %w", err)
		}
		log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("bodegas importadas")
	}

	if productsPath != "" {
		f, err := os.Open(productsPath)
		if err != nil {
			return fmt.Errorf("abrir CSV de productos: %w", err)
		}
		products, err := catalog.ReadProducts(f, enc)
		f.Close()
		if err != nil {
			return fmt.Errorf("leer productos: %w", err)
		}
		res, err := catalog.ImportProducts(ctx, stores.Products, products)
		if err != nil {
			return fmt.Errorf("importar productos: %w", err)
		}
		log.Info().Int("created", res.Created).Int("skipped", res.Skipped).Msg("productos importados")
	}
	return nil
}
