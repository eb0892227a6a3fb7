package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mystuff/mystuff/pkg/category"
	"github.com/mystuff/mystuff/pkg/item"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

// SQLiteRepository keeps the store in a local SQLite database. The schema comes
// from database.MigrateSQLite.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) (Snapshot, error) {
	categories, err := r.loadCategories(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	items, err := r.loadItems(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Categories: categories, Items: items}, nil
}

func (r *SQLiteRepository) loadCategories(ctx context.Context) ([]category.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM category ORDER BY seq")
	if err != nil {
		log.Errorf("failed to query categories: %v", err)
		return nil, err
	}
	defer rows.Close()

	categories := make([]category.Category, 0)
	for rows.Next() {
		var c category.Category
		var createdAt int64
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			log.Errorf("failed to scan category: %v", err)
			return nil, err
		}
		c.CreatedAt = time.Unix(0, createdAt).UTC()
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *SQLiteRepository) loadItems(ctx context.Context) ([]item.Item, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, purchase_date, price, category_id, created_at FROM item")
	if err != nil {
		log.Errorf("failed to query items: %v", err)
		return nil, err
	}
	defer rows.Close()

	items := make([]item.Item, 0)
	for rows.Next() {
		var i item.Item
		var purchaseDate string
		var categoryID sql.NullString
		var createdAt int64
		if err := rows.Scan(&i.ID, &i.Name, &purchaseDate, &i.Price, &categoryID, &createdAt); err != nil {
			log.Errorf("failed to scan item: %v", err)
			return nil, err
		}
		i.PurchaseDate, err = time.Parse(dateLayout, purchaseDate)
		if err != nil {
			return nil, fmt.Errorf("item %s has invalid purchase date %q: %w", i.ID, purchaseDate, err)
		}
		i.CategoryID = categoryID.String
		i.CreatedAt = time.Unix(0, createdAt).UTC()
		items = append(items, i)
	}
	return items, rows.Err()
}

func (r *SQLiteRepository) Commit(ctx context.Context, changes ChangeSet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes.UpsertCategories {
		_, err := tx.ExecContext(ctx, `INSERT INTO category (id, name, created_at, seq)
			VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM category))
			ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
			c.ID, c.Name, c.CreatedAt.UnixNano())
		if err != nil {
			log.Errorf("failed to upsert category %s: %v", c.ID, err)
			return err
		}
	}
	for _, i := range changes.UpsertItems {
		_, err := tx.ExecContext(ctx, `INSERT INTO item (id, name, purchase_date, price, category_id, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET name = excluded.name, purchase_date = excluded.purchase_date,
				price = excluded.price, category_id = excluded.category_id`,
			i.ID, i.Name, i.PurchaseDate.Format(dateLayout), i.Price, nullableID(i.CategoryID), i.CreatedAt.UnixNano())
		if err != nil {
			log.Errorf("failed to upsert item %s: %v", i.ID, err)
			return err
		}
	}
	for _, id := range changes.DeleteItems {
		if _, err := tx.ExecContext(ctx, "DELETE FROM item WHERE id = ?", id); err != nil {
			log.Errorf("failed to delete item %s: %v", id, err)
			return err
		}
	}
	for _, id := range changes.DeleteCategories {
		if _, err := tx.ExecContext(ctx, "DELETE FROM category WHERE id = ?", id); err != nil {
			log.Errorf("failed to delete category %s: %v", id, err)
			return err
		}
	}

	return tx.Commit()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}
