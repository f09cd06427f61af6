package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := OpenSQLite(context.Background(), path, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenSQLite(t *testing.T) {
	db := openTestSQLite(t)

	_, err := os.Stat(db.Path())
	assert.NoError(t, err, "Database file should exist")
	assert.NoError(t, db.Health(context.Background()))

	var fk int
	require.NoError(t, db.DB.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk, "foreign keys should be enforced")
}

func TestOpenSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	db, err := OpenSQLite(ctx, path, quietLogger())
	require.NoError(t, err)
	_, err = db.DB.Exec(`INSERT INTO genes (symbol, full_name, function_summary) VALUES ('TP53', 'Tumor protein p53', 'Tumor suppressor')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, path, quietLogger())
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM genes`).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteDB_WithinTx(t *testing.T) {
	db := openTestSQLite(t)
	ctx := context.Background()

	insert := func(ctx context.Context) error {
		_, err := db.Conn(ctx).ExecContext(ctx,
			`INSERT INTO genes (symbol, full_name, function_summary) VALUES ('EGFR', 'Epidermal growth factor receptor', 'Receptor tyrosine kinase')`)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM genes`).Scan(&n))
		return n
	}

	boom := errors.New("boom")
	err := db.WithinTx(ctx, func(ctx context.Context) error {
		require.NotNil(t, SQLTxFromContext(ctx))
		require.NoError(t, insert(ctx))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, count())

	err = db.WithinTx(ctx, func(ctx context.Context) error {
		// nested call joins the outer transaction
		return db.WithinTx(ctx, insert)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())
}

func TestSQLiteSchema_Cascade(t *testing.T) {
	db := openTestSQLite(t)

	_, err := db.DB.Exec(`INSERT INTO genes (id, symbol, full_name, function_summary) VALUES (1, 'KRAS', 'KRAS proto-oncogene', 'GTPase')`)
	require.NoError(t, err)
	_, err = db.DB.Exec(`INSERT INTO genetic_variants (id, gene_id, chromosome, position, reference_base, alternate_base, impact)
		VALUES ('v1', 1, '12', 25245350, 'C', 'A', 'HIGH')`)
	require.NoError(t, err)
	_, err = db.DB.Exec(`INSERT INTO patient_variant_reports (id, patient_id, variant_id, detection_date, allele_frequency)
		VALUES ('r1', 'P1', 'v1', '2024-01-01', 500)`)
	require.NoError(t, err)

	_, err = db.DB.Exec(`DELETE FROM genes WHERE id = 1`)
	require.NoError(t, err)

	var variants, reports int
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM genetic_variants`).Scan(&variants))
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM patient_variant_reports`).Scan(&reports))
	assert.Zero(t, variants)
	assert.Zero(t, reports)

	_, err = db.DB.Exec(`INSERT INTO genetic_variants (id, gene_id, chromosome, position, reference_base, alternate_base, impact)
		VALUES ('v2', 99, '1', 1, 'A', 'G', 'LOW')`)
	assert.Error(t, err, "unknown gene must be rejected")
}
