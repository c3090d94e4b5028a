// Package catalog importa productos y bodegas desde CSV (exportes de hojas de cálculo,
// a menudo en ISO-8859-1).
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Encoding codificación del archivo de entrada.
type Encoding string

const (
	UTF8   Encoding = "utf8"
	Latin1 Encoding = "latin1"
)

// Result conteo de una importación.
type Result struct {
	Created int
	Skipped int // ya existían (SKU o código duplicado)
}

func newReader(r io.Reader, enc Encoding) (*csv.Reader, error) {
	switch enc {
	case "", UTF8:
	case Latin1:
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	default:
		return nil, fmt.Errorf("codificación desconocida %q", enc)
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	return cr, nil
}

// readRows lee todas las filas saltando la cabecera. minFields columnas obligatorias.
func readRows(r io.Reader, enc Encoding, minFields int) ([][]string, error) {
	cr, err := newReader(r, enc)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < minFields {
			return nil, fmt.Errorf("línea %d: se esperaban %d columnas: %w", line, minFields, domain.ErrInvalidInput)
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// ReadProducts columnas: sku;nombre;categoría;unidad;stock_mínimo.
func ReadProducts(r io.Reader, enc Encoding) ([]*entity.Product, error) {
	rows, err := readRows(r, enc, 2)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*entity.Product, 0, len(rows))
	for i, rec := range rows {
		if rec[0] == "" || rec[1] == "" {
			return nil, fmt.Errorf("producto %d: sku y nombre son requeridos: %w", i+1, domain.ErrInvalidInput)
		}
		minStock := decimal.Zero
		if s := field(rec, 4); s != "" {
			minStock, err = decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
			if err != nil || minStock.IsNegative() {
				return nil, fmt.Errorf("producto %s: stock mínimo %q inválido: %w", rec[0], s, domain.ErrInvalidInput)
			}
		}
		unit := field(rec, 3)
		if unit == "" {
			unit = "pcs"
		}
		out = append(out, &entity.Product{
			ID:            uuid.New().String(),
			SKU:           strings.ToUpper(rec[0]),
			Name:          rec[1],
			Category:      field(rec, 2),
			Unit:          unit,
			MinStockLevel: minStock,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return out, nil
}

// ReadWarehouses columnas: código;nombre;dirección.
func ReadWarehouses(r io.Reader, enc Encoding) ([]*entity.Warehouse, error) {
	rows, err := readRows(r, enc, 2)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*entity.Warehouse, 0, len(rows))
	for i, rec := range rows {
		if rec[0] == "" || rec[1] == "" {
			return nil, fmt.Errorf("bodega %d: código y nombre son requeridos: %w", i+1, domain.ErrInvalidInput)
		}
		out = append(out, &entity.Warehouse{
			ID:        uuid.New().String(),
			Code:      strings.ToUpper(rec[0]),
			Name:      rec[1],
			Address:   field(rec, 2),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return out, nil
}

// ImportProducts crea los productos; los SKU existentes se cuentan como omitidos.
func ImportProducts(ctx context.Context, repo repository.ProductRepository, products []*entity.Product) (Result, error) {
	var res Result
	for _, p := range products {
		err := repo.Create(ctx, p)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
		default:
			return res, fmt.Errorf("producto %s: %w", p.SKU, err)
		}
	}
	return res, nil
}

// ImportWarehouses crea las bodegas; los códigos existentes se cuentan como omitidos.
func ImportWarehouses(ctx context.Context, repo repository.WarehouseRepository, warehouses []*entity.Warehouse) (Result, error) {
	var res Result
	for _, w := range warehouses {
		err := repo.Create(ctx, w)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
		default:
			return res, fmt.Errorf("bodega %s: %w", w.Code, err)
		}
	}
	return res, nil
}
