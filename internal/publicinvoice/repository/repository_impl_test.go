package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/repairdesk/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFindRepairPicksNewestLiveInvoice(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, seed.EnsureSchema(db))
	require.NoError(t, seed.EnsureDemoData(db))

	repairID := int64(1)
	newer := seed.Invoice{ID: 5, RepairRequestID: &repairID, Currency: "EGP", Status: "draft", CreatedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)}
	newest := seed.Invoice{ID: 6, RepairRequestID: &repairID, Currency: "EGP", Status: "draft", CreatedAt: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&newer).Error)
	require.NoError(t, db.Create(&newest).Error)
	require.NoError(t, db.Delete(&seed.Invoice{}, 6).Error)

	r := Provide(db)
	rec, err := r.FindRepair(context.Background(), 1)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "01000000000", rec.CustomerPhone)
	require.True(t, rec.HasInvoice())
	assert.Equal(t, int64(5), *rec.InvoiceID)

	missing, err := r.FindRepair(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
