package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ginutri/internal/catalog"
)

// CatalogRepository entrega el contenido estatico (cardapio, plantillas, tablas de iconos).
type CatalogRepository interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// StaticCatalogRepository devuelve el catalogo embebido en el binario.
type StaticCatalogRepository struct {
	catalog *catalog.Catalog
}

func NewStaticCatalogRepository(c *catalog.Catalog) *StaticCatalogRepository {
	return &StaticCatalogRepository{catalog: c}
}

func (r *StaticCatalogRepository) Load(_ context.Context) (*catalog.Catalog, error) {
	return r.catalog, nil
}

// PgCatalogRepository lee el cardapio y la lista de compras desde Postgres;
// el resto del catalogo sale del documento embebido.
type PgCatalogRepository struct {
	pool *pgxpool.Pool
	base *catalog.Catalog
}

func NewPgCatalogRepository(pool *pgxpool.Pool, base *catalog.Catalog) *PgCatalogRepository {
	return &PgCatalogRepository{pool: pool, base: base}
}

type menuDishRow struct {
	Day        string
	Slot       string
	Accessible string
	Premium    string
}

func (r *PgCatalogRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	const dishesQuery = `
		SELECT day, slot, accessible, premium
		FROM menu_dishes
	`
	rows, err := r.pool.Query(ctx, dishesQuery)
	if err != nil {
		return nil, fmt.Errorf("query menu dishes: %w", err)
	}
	dishes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (menuDishRow, error) {
		var d menuDishRow
		err := row.Scan(&d.Day, &d.Slot, &d.Accessible, &d.Premium)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan menu dishes: %w", err)
	}

	const shoppingQuery = `
		SELECT aisle, name, quantity
		FROM shopping_templates
		ORDER BY position ASC
	`
	rows, err = r.pool.Query(ctx, shoppingQuery)
	if err != nil {
		return nil, fmt.Errorf("query shopping templates: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.ShoppingTemplate, error) {
		var it catalog.ShoppingTemplate
		err := row.Scan(&it.Aisle, &it.Name, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan shopping templates: %w", err)
	}

	return assembleCatalog(r.base, dishes, items)
}

// assembleCatalog combina las filas de la base con el catalogo embebido y valida el resultado.
func assembleCatalog(base *catalog.Catalog, dishes []menuDishRow, items []catalog.ShoppingTemplate) (*catalog.Catalog, error) {
	out := *base
	if len(dishes) > 0 {
		out.Menu = make(map[catalog.Day]map[catalog.Slot]catalog.MenuVariants, len(catalog.Week))
		for _, d := range dishes {
			day := catalog.Day(d.Day)
			if out.Menu[day] == nil {
				out.Menu[day] = make(map[catalog.Slot]catalog.MenuVariants)
			}
			out.Menu[day][catalog.Slot(d.Slot)] = catalog.MenuVariants{Accessible: d.Accessible, Premium: d.Premium}
		}
	}
	if len(items) > 0 {
		out.Shopping = items
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// SeedCatalog copia el catalogo embebido a las tablas si estan vacias.
func SeedCatalog(ctx context.Context, pool *pgxpool.Pool, c *catalog.Catalog) (bool, error) {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_dishes`).Scan(&count); err != nil {
		return false, fmt.Errorf("count menu dishes: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, day := range catalog.Week {
		for _, slot := range catalog.MenuSlots {
			v := c.Menu[day][slot]
			batch.Queue(`
				INSERT INTO menu_dishes (day, slot, accessible, premium)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (day, slot) DO NOTHING
			`, string(day), string(slot), v.Accessible, v.Premium)
		}
	}
	for i, it := range c.Shopping {
		batch.Queue(`
			INSERT INTO shopping_templates (position, aisle, name, quantity)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (position) DO NOTHING
		`, i+1, it.Aisle, it.Name, it.Quantity)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, fmt.Errorf("seed catalog: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit seed: %w", err)
	}
	return true, nil
}
