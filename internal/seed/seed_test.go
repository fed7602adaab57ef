package seed

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// errorRecorder keeps every error gorm traces.
type errorRecorder struct {
	errs []error
}

func (r *errorRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *errorRecorder) Info(context.Context, string, ...interface{}) {}
func (r *errorRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *errorRecorder) Error(context.Context, string, ...interface{}) {}
func (r *errorRecorder) Trace(_ context.Context, _ time.Time, _ func() (string, int64), err error) {
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

func openSeedDB(t *testing.T, cfg *gorm.Config) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), cfg)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(db))
	return db
}

func TestEnsureDemoDataIsIdempotent(t *testing.T) {
	db := openSeedDB(t, &gorm.Config{})

	require.NoError(t, EnsureDemoData(db))
	require.NoError(t, EnsureDemoData(db))

	var invoices, items int64
	require.NoError(t, db.Model(&Invoice{}).Count(&invoices).Error)
	require.NoError(t, db.Model(&InvoiceItem{}).Count(&items).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, int64(2), items)
}

func TestEnsureDemoDataOnEmptyDatabaseLogsNoErrors(t *testing.T) {
	recorder := &errorRecorder{}
	db := openSeedDB(t, &gorm.Config{Logger: recorder})

	require.NoError(t, EnsureDemoData(db))
	assert.Empty(t, recorder.errs)
}

func TestEnsureDemoDataSkipsSoftDeletedInvoice(t *testing.T) {
	db := openSeedDB(t, &gorm.Config{})
	require.NoError(t, EnsureDemoData(db))
	require.NoError(t, db.Delete(&Invoice{}, demoInvoiceID).Error)

	require.NoError(t, EnsureDemoData(db))

	var live, all int64
	require.NoError(t, db.Model(&Invoice{}).Count(&live).Error)
	require.NoError(t, db.Unscoped().Model(&Invoice{}).Count(&all).Error)
	assert.Equal(t, int64(0), live)
	assert.Equal(t, int64(1), all)
}
