package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-bakery/pkg/catalog"
	"github.com/goliatone/go-bakery/pkg/inventory"
)

type productRow struct {
	ProductType     string  `db:"product_type"`
	ID              int64   `db:"id"`
	Name            string  `db:"name"`
	Description     string  `db:"description"`
	FlourKG         float64 `db:"flour_kg"`
	YeastKG         float64 `db:"yeast_kg"`
	EnhancerKG      float64 `db:"enhancer_kg"`
	WaterCost       string  `db:"water_cost"`
	ElectricityCost string  `db:"electricity_cost"`
	SellingPrice    string  `db:"selling_price"`
	Brand           string  `db:"brand"`
	CostPerKG       string  `db:"cost_per_kg"`
}

func (r productRow) product() catalog.Product {
	return catalog.Product{
		ID:              uint64(r.ID),
		Type:            catalog.ProductType(r.ProductType),
		Name:            r.Name,
		Description:     r.Description,
		FlourKG:         r.FlourKG,
		YeastKG:         r.YeastKG,
		EnhancerKG:      r.EnhancerKG,
		WaterCost:       r.WaterCost,
		ElectricityCost: r.ElectricityCost,
		SellingPrice:    r.SellingPrice,
		Brand:           r.Brand,
		CostPerKG:       r.CostPerKG,
	}
}

func fromProduct(p catalog.Product) productRow {
	return productRow{
		ProductType:     string(p.Type),
		ID:              int64(p.ID),
		Name:            p.Name,
		Description:     p.Description,
		FlourKG:         p.FlourKG,
		YeastKG:         p.YeastKG,
		EnhancerKG:      p.EnhancerKG,
		WaterCost:       p.WaterCost,
		ElectricityCost: p.ElectricityCost,
		SellingPrice:    p.SellingPrice,
		Brand:           p.Brand,
		CostPerKG:       p.CostPerKG,
	}
}

const productColumns = `product_type, id, name, description, flour_kg, yeast_kg, enhancer_kg,
	water_cost, electricity_cost, selling_price, brand, cost_per_kg`

// PutProduct stores product, replacing an entry with the same type and id.
func (s *Store) PutProduct(ctx context.Context, product catalog.Product) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (:product_type, :id, :name, :description, :flour_kg, :yeast_kg, :enhancer_kg,
			:water_cost, :electricity_cost, :selling_price, :brand, :cost_per_kg)
		ON CONFLICT(product_type, id) DO UPDATE SET
			name             = excluded.name,
			description      = excluded.description,
			flour_kg         = excluded.flour_kg,
			yeast_kg         = excluded.yeast_kg,
			enhancer_kg      = excluded.enhancer_kg,
			water_cost       = excluded.water_cost,
			electricity_cost = excluded.electricity_cost,
			selling_price    = excluded.selling_price,
			brand            = excluded.brand,
			cost_per_kg      = excluded.cost_per_kg
	`, fromProduct(product))
	if err != nil {
		return fmt.Errorf("sqlitestore: put product: %w", err)
	}
	return nil
}

// Product returns one product or inventory.ErrNotFound.
func (s *Store) Product(ctx context.Context, productType catalog.ProductType, id uint64) (catalog.Product, error) {
	var row productRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+productColumns+` FROM products WHERE product_type = ? AND id = ?`,
		string(productType), int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, inventory.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, fmt.Errorf("sqlitestore: get product: %w", err)
	}
	return row.product(), nil
}

// ProductsByType returns the products of one type ordered by id.
func (s *Store) ProductsByType(ctx context.Context, productType catalog.ProductType) ([]catalog.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+productColumns+` FROM products WHERE product_type = ? ORDER BY id`,
		string(productType))
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list products: %w", err)
	}
	return toProducts(rows), nil
}

// Products returns the whole catalog ordered by type and id.
func (s *Store) Products(ctx context.Context) ([]catalog.Product, error) {
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+productColumns+` FROM products ORDER BY product_type, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: list products: %w", err)
	}
	return toProducts(rows), nil
}

func toProducts(rows []productRow) []catalog.Product {
	if len(rows) == 0 {
		return nil
	}
	out := make([]catalog.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.product())
	}
	return out
}
