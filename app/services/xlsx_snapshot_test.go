package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXSnapshotWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "tariffs.xlsx")
	writer := NewXLSXSnapshotWriter(path)

	written, err := writer.WriteSnapshot("Sheet1", [][]any{
		{"2025-02-14", "2025-02-28", "Коледино", uint(1)},
		{"2025-02-14", "2025-02-28", "Подольск", uint(2)},
	})
	require.NoError(t, err)
	assert.Equal(t, path, written)

	xl, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = xl.Close() }()

	rows, err := xl.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2025-02-14", "2025-02-28", "Подольск", "2"}, rows[1])
}
