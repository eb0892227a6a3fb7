package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	log "github.com/sirupsen/logrus"
)

// PostgresRepository keeps the store in Postgres. The schema comes from database.MigratePostgres.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Load(ctx context.Context) (Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Snapshot{}, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, "SELECT id, name, created_at FROM category ORDER BY seq")
	if err != nil {
		log.Errorf("failed to query categories: %v", err)
		return Snapshot{}, err
	}
	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (category.Category, error) {
		var c category.Category
		err := row.Scan(&c.ID, &c.Name, &c.CreatedAt)
		c.CreatedAt = c.CreatedAt.UTC()
		return c, err
	})
	if err != nil {
		log.Errorf("failed to read categories: %v", err)
		return Snapshot{}, err
	}

	rows, err = tx.Query(ctx, "SELECT id, name, purchase_date, price, category_id, created_at FROM item")
	if err != nil {
		log.Errorf("failed to query items: %v", err)
		return Snapshot{}, err
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (item.Item, error) {
		var i item.Item
		var categoryID *string
		err := row.Scan(&i.ID, &i.Name, &i.PurchaseDate, &i.Price, &categoryID, &i.CreatedAt)
		if categoryID != nil {
			i.CategoryID = *categoryID
		}
		i.PurchaseDate = i.PurchaseDate.UTC()
		i.CreatedAt = i.CreatedAt.UTC()
		return i, err
	})
	if err != nil {
		log.Errorf("failed to read items: %v", err)
		return Snapshot{}, err
	}

	return Snapshot{Categories: categories, Items: items}, nil
}

func (r *PostgresRepository) Commit(ctx context.Context, changes ChangeSet) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, c := range changes.UpsertCategories {
		batch.Queue(`INSERT INTO category (id, name, created_at) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
			c.ID, c.Name, c.CreatedAt)
	}
	for _, i := range changes.UpsertItems {
		var categoryID *string
		if i.HasCategory() {
			categoryID = &i.CategoryID
		}
		batch.Queue(`INSERT INTO item (id, name, purchase_date, price, category_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, purchase_date = excluded.purchase_date,
				price = excluded.price, category_id = excluded.category_id`,
			i.ID, i.Name, i.PurchaseDate, i.Price, categoryID, i.CreatedAt)
	}
	for _, id := range changes.DeleteItems {
		batch.Queue("DELETE FROM item WHERE id = $1", id)
	}
	for _, id := range changes.DeleteCategories {
		batch.Queue("DELETE FROM category WHERE id = $1", id)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		log.Errorf("failed to apply changes: %v", err)
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}
