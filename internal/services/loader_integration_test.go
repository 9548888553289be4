package services_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sdss/catalogdb/internal/db"
	"github.com/sdss/catalogdb/internal/tabledef"
	testhelpers "github.com/sdss/catalogdb/internal/testing"
	"github.com/sdss/catalogdb/pkg/catalogdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gaiaDefinition = `# gaia subset
[source_id] bigint
ra double precision
dec double precision
`

const gaiaRows = "1,10.5,-3.2\n2,11.0,-3.1\n3,12.25,-2.9\n"

func setupGaiaTable(t *testing.T, connString string) string {
	t.Helper()

	dir := t.TempDir()
	defPath := filepath.Join(dir, "gaia.sql")
	require.NoError(t, os.WriteFile(defPath, []byte(gaiaDefinition), 0644))

	columns, err := tabledef.ReadFile(defPath)
	require.NoError(t, err)
	require.Equal(t, []string{"source_id bigint", "ra double precision", "dec double precision"}, columns)

	schema := testhelpers.CreateTestSchema(t, connString)
	testhelpers.CreateTable(t, connString, schema, "gaia", columns)
	return schema
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeGzipFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func writeZstdFile(t *testing.T, name, content string) string {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return writeFile(t, name, string(enc.EncodeAll([]byte(content), nil)))
}

func TestLoadService_Integration_PlainFile(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	schema := setupGaiaTable(t, connString)
	loader := testhelpers.NewTestLoader(t)

	ok, err := loader.CopyCSVWithConfig(context.Background(), cfg, catalogdb.LoadRequest{
		Table:  "gaia",
		Schema: schema,
		File:   writeFile(t, "gaia.csv", gaiaRows),
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), testhelpers.CountRows(t, connString, schema, "gaia"))
}

func TestLoadService_Integration_HeaderAndDelimiter(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	schema := setupGaiaTable(t, connString)
	loader := testhelpers.NewTestLoader(t)

	ok, err := loader.CopyCSVWithConfig(context.Background(), cfg, catalogdb.LoadRequest{
		Table:     "gaia",
		Schema:    schema,
		File:      writeFile(t, "gaia.psv", "source_id|ra|dec\n1|10.5|-3.2\n2|11.0|-3.1\n"),
		Header:    true,
		Delimiter: "|",
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), testhelpers.CountRows(t, connString, schema, "gaia"))
}

type gaiaRow struct {
	SourceID int64
	RA, Dec  float64
}

func selectGaiaRows(t *testing.T, connString, schema, table string) []gaiaRow {
	t.Helper()

	sql := "SELECT source_id, ra, dec FROM " + pgx.Identifier{schema, table}.Sanitize() + " ORDER BY source_id"
	rows, err := testhelpers.Connect(t, connString).Query(context.Background(), sql)
	require.NoError(t, err)
	defer rows.Close()

	var out []gaiaRow
	for rows.Next() {
		var r gaiaRow
		require.NoError(t, rows.Scan(&r.SourceID, &r.RA, &r.Dec))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestLoadService_Integration_CompressedMatchesPlain(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	loader := testhelpers.NewTestLoader(t)

	columns, err := tabledef.Parse([]byte(gaiaDefinition))
	require.NoError(t, err)
	schema := testhelpers.CreateTestSchema(t, connString)

	files := map[string]string{
		"gaia_plain": writeFile(t, "gaia.csv", gaiaRows),
		"gaia_gzip":  writeGzipFile(t, "gaia.csv.gz", gaiaRows),
		"gaia_zstd":  writeZstdFile(t, "gaia.csv.zst", gaiaRows),
	}
	for table, file := range files {
		testhelpers.CreateTable(t, connString, schema, table, columns)

		ok, err := loader.CopyCSVWithConfig(context.Background(), cfg, catalogdb.LoadRequest{
			Table:  table,
			Schema: schema,
			File:   file,
		})
		require.NoError(t, err, table)
		require.True(t, ok, table)
	}

	plain := selectGaiaRows(t, connString, schema, "gaia_plain")
	require.Len(t, plain, 3)
	assert.Equal(t, gaiaRow{SourceID: 3, RA: 12.25, Dec: -2.9}, plain[2])
	assert.Equal(t, plain, selectGaiaRows(t, connString, schema, "gaia_gzip"))
	assert.Equal(t, plain, selectGaiaRows(t, connString, schema, "gaia_zstd"))
}

func TestLoadService_Integration_MissingTable(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	schema := testhelpers.CreateTestSchema(t, connString)
	loader := testhelpers.NewTestLoader(t)

	ok, err := loader.CopyCSVWithConfig(context.Background(), cfg, catalogdb.LoadRequest{
		Table:  "does_not_exist",
		Schema: schema,
		File:   writeFile(t, "gaia.csv", gaiaRows),
	})

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoadService_Integration_MalformedRowRollsBack(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	schema := setupGaiaTable(t, connString)
	loader := testhelpers.NewTestLoader(t)

	ok, err := loader.CopyCSVWithConfig(context.Background(), cfg, catalogdb.LoadRequest{
		Table:  "gaia",
		Schema: schema,
		File:   writeFile(t, "gaia.csv", "1,10.5,-3.2\n2,not-a-number,-3.1\n"),
	})

	assert.False(t, ok)
	require.Error(t, err)
	assert.Equal(t, catalogdb.ExitCopyFailed, catalogdb.ExitCodeForError(err))
	assert.Equal(t, int64(0), testhelpers.CountRows(t, connString, schema, "gaia"))
}

func TestLoadService_Integration_ExistingConnection(t *testing.T) {
	cfg := testhelpers.RequireConfig(t)
	connString := db.BuildConnectionString(cfg)
	schema := setupGaiaTable(t, connString)
	loader := testhelpers.NewTestLoader(t)

	connector, err := db.NewConnector(cfg)
	require.NoError(t, err)
	conn, err := connector.Connect(context.Background())
	require.NoError(t, err)

	ok, err := loader.CopyCSV(context.Background(), conn, catalogdb.LoadRequest{
		Table:  "gaia",
		Schema: schema,
		File:   writeFile(t, "gaia.csv", gaiaRows),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// The loader owns the connection; a second close is a no-op.
	assert.NoError(t, conn.Close(context.Background()))
	assert.Equal(t, int64(3), testhelpers.CountRows(t, connString, schema, "gaia"))
}
