package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSQLite(t *testing.T) {
	t.Run("creates the schema with foreign keys enforced", func(t *testing.T) {
		// given
		db, err := OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		// when
		err = MigrateSQLite(db)

		// then
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO item (id, name, purchase_date, price, category_id, created_at)
			VALUES ('i1', 'Laptop', '2024-03-01', 10, 'missing', 0)`)
		assert.Error(t, err, "dangling category reference must be rejected")
	})

	t.Run("is idempotent", func(t *testing.T) {
		db, err := OpenSQLite(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		require.NoError(t, MigrateSQLite(db))
		assert.NoError(t, MigrateSQLite(db))
	})
}

func TestOpenSQLite_CreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mystuff.db")

	db, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	assert.NoError(t, db.Ping())
	assert.FileExists(t, path)
}
