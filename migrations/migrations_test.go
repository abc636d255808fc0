package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(files, "sql")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Errorf("unexpected file %s", name)
		}
	}

	assert.Equal(t, ups, downs)
	assert.Contains(t, ups, "20250213121331_tariffs")
	assert.Contains(t, ups, "20250213121500_warehouses")
	assert.Contains(t, ups, "20250213121721_tariff-warehouse")
}

func TestTariffWarehouseMigrationDeclaresUpsertKey(t *testing.T) {
	content, err := fs.ReadFile(files, "sql/20250213121721_tariff-warehouse.up.sql")
	require.NoError(t, err)

	sql := string(content)
	assert.Contains(t, sql, `uq_tariff_warehouse_tariff_warehouse_fetch_date`)
	assert.Contains(t, sql, `(tariff_id, warehouse_id, "fetchDate")`)
	assert.Equal(t, 2, strings.Count(sql, "ON DELETE CASCADE"))
}

func TestUpRejectsBadURL(t *testing.T) {
	err := Up("unknown://nowhere", nil)
	assert.Error(t, err)
}
