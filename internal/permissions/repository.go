package permissions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-comercial/internal/platform/db"
)

// Repository persists permission sets on the authorization service side.
type Repository interface {
	LoadSet(ctx context.Context, actor string) (Set, error)
	ReplaceSet(ctx context.Context, actor string, set Set) error
	ListActors(ctx context.Context) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Postgres backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) LoadSet(ctx context.Context, actor string) (Set, error) {
	var set Set
	err := r.pool.QueryRow(ctx,
		`SELECT master, management FROM permission_actors WHERE actor_id = $1`, actor,
	).Scan(&set.Master, &set.Management)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Set{}, ErrNotFound
		}
		return Set{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT menu_index, hidden, can_insert, can_modify, can_delete
		FROM permission_records WHERE actor_id = $1 ORDER BY menu_index`, actor)
	if err != nil {
		return Set{}, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.MenuIndex, &rec.Hidden, &rec.CanInsert, &rec.CanModify, &rec.CanDelete); err != nil {
			return Set{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return Set{}, err
	}
	return NewSet(set.Master, set.Management, records...), nil
}

func (r *repository) ReplaceSet(ctx context.Context, actor string, set Set) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		if _, err := tx.Exec(ctx, `INSERT INTO permission_actors (actor_id, master, management, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (actor_id) DO UPDATE SET master = EXCLUDED.master, management = EXCLUDED.management, updated_at = EXCLUDED.updated_at`,
			actor, set.Master, set.Management, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM permission_records WHERE actor_id = $1`, actor); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, rec := range set.Records {
			batch.Queue(`INSERT INTO permission_records (actor_id, menu_index, hidden, can_insert, can_modify, can_delete)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				actor, rec.MenuIndex, rec.Hidden, rec.CanInsert, rec.CanModify, rec.CanDelete)
		}
		if batch.Len() == 0 {
			return nil
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if db.IsConstraintViolation(err) {
		return fmt.Errorf("%w: %v", ErrInvalidSet, err)
	}
	return err
}

func (r *repository) ListActors(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT actor_id FROM permission_actors ORDER BY actor_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actors := make([]string, 0)
	for rows.Next() {
		var actor string
		if err := rows.Scan(&actor); err != nil {
			return nil, err
		}
		actors = append(actors, actor)
	}
	return actors, rows.Err()
}
