package pricing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads price tables.
type Repository interface {
	GetTable(ctx context.Context, id int64) (PriceTable, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) GetTable(ctx context.Context, id int64) (PriceTable, error) {
	table := PriceTable{ID: id}
	err := r.db.QueryRow(ctx, `SELECT name FROM price_tables WHERE id = $1`, id).Scan(&table.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PriceTable{}, ErrTableNotFound
		}
		return PriceTable{}, err
	}

	rows, err := r.db.Query(ctx, `SELECT p.id, p.code, p.name, i.gross_price, i.promo_price
		FROM price_table_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.price_table_id = $1
		ORDER BY i.position, p.code`, id)
	if err != nil {
		return PriceTable{}, err
	}
	defer rows.Close()

	table.Items = make([]Item, 0)
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ProductID, &item.Code, &item.Name, &item.GrossPrice, &item.PromoPrice); err != nil {
			return PriceTable{}, err
		}
		table.Items = append(table.Items, item)
	}
	return table, rows.Err()
}
