package writer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memsnap/heapdom/internal/domtree"
)

func TestNewSQLiteWriter_MigratesTable(t *testing.T) {
	w, err := NewSQLiteWriter(":memory:")
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.db.Migrator().HasTable(&DominatorRow{}))
}

func TestSQLiteWriter_WriteBulkExtract(t *testing.T) {
	w, err := NewSQLiteWriter(":memory:")
	require.NoError(t, err)
	defer w.Close()

	extract := domtree.BulkExtract{
		ObjectAddresses:     []uint64{0x100, 0x200},
		ImmediateDominators: []uint64{0, 0x100},
		DominatedSizes:      []uint64{30, 20},
		DominatedCounts:     []uint64{2, 1},
	}

	require.NoError(t, w.WriteBulkExtract(context.Background(), "run-1", extract))

	var rows []DominatorRow
	require.NoError(t, w.db.Where("runtime_id = ?", "run-1").Order("object_id").Find(&rows).Error)
	require.Len(t, rows, 2)

	assert.EqualValues(t, 0x100, rows[0].ObjectID)
	assert.EqualValues(t, 0, rows[0].ImmediateDominatorID)
	assert.EqualValues(t, 30, rows[0].DominatedSizeBytes)
	assert.EqualValues(t, 2, rows[0].DominatedCount)

	assert.EqualValues(t, 0x200, rows[1].ObjectID)
	assert.EqualValues(t, 0x100, rows[1].ImmediateDominatorID)
}

func TestSQLiteWriter_WriteBulkExtract_Empty(t *testing.T) {
	w, err := NewSQLiteWriter(":memory:")
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.WriteBulkExtract(context.Background(), "run-empty", domtree.BulkExtract{}))

	var count int64
	require.NoError(t, w.db.Model(&DominatorRow{}).Count(&count).Error)
	assert.Zero(t, count)
}
