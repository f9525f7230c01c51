// Package writer provides output writers that consume the dominator
// engine's bulk extract and Top-K enumeration.
package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/memsnap/heapdom/internal/domtree"
	"github.com/memsnap/heapdom/pkg/telemetry"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// DominatorRow is the persisted shape of one BulkExtract row, named per the
// process-boundary schema: object_id, immediate_dominator_id,
// dominated_size_bytes, dominated_count.
type DominatorRow struct {
	ID                    int64  `gorm:"column:id;primaryKey;autoIncrement"`
	RuntimeID             string `gorm:"column:runtime_id;type:varchar(64);index"`
	ObjectID              uint64 `gorm:"column:object_id;index"`
	ImmediateDominatorID  uint64 `gorm:"column:immediate_dominator_id"`
	DominatedSizeBytes    uint64 `gorm:"column:dominated_size_bytes"`
	DominatedCount        uint64 `gorm:"column:dominated_count"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for DominatorRow.
func (DominatorRow) TableName() string {
	return "dominator_row"
}

// SQLiteWriter persists a BulkExtract into a local SQLite database via
// GORM. This is the engine's stand-in for a columnar (parquet) emitter:
// no parquet library exists anywhere in the retrieved reference corpus, so
// the same row-oriented SQLite path the teacher uses for its task
// repository is reused here as the bulk-extract sink (see DESIGN.md).
type SQLiteWriter struct {
	db *gorm.DB
}

// NewSQLiteWriter opens (creating if necessary) a SQLite database at path
// and ensures the dominator_row table exists.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, fmt.Errorf("failed to enable telemetry: %w", err)
		}
	}

	if err := db.AutoMigrate(&DominatorRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate dominator_row: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

// WriteBulkExtract inserts one row per entry in extract, tagged with
// runtimeID so multiple snapshots can share a database.
func (w *SQLiteWriter) WriteBulkExtract(ctx context.Context, runtimeID string, extract domtree.BulkExtract) error {
	rows := make([]DominatorRow, len(extract.ObjectAddresses))
	for i := range extract.ObjectAddresses {
		rows[i] = DominatorRow{
			RuntimeID:            runtimeID,
			ObjectID:             extract.ObjectAddresses[i],
			ImmediateDominatorID: extract.ImmediateDominators[i],
			DominatedSizeBytes:   extract.DominatedSizes[i],
			DominatedCount:       extract.DominatedCounts[i],
		}
	}
	if len(rows) == 0 {
		return nil
	}

	const batchSize = 500
	if err := w.db.WithContext(ctx).CreateInBatches(rows, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert dominator rows: %w", err)
	}
	return nil
}

// Close releases the underlying database connection.
func (w *SQLiteWriter) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
