package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dinehall/comanda/models"
)

func TestChangeLogRecordsTableLifecycle(t *testing.T) {
	db := setupServiceDB(t)
	tables := NewTableService(db)

	table, err := tables.CreateTable(3, 2)
	assert.NoError(t, err)

	var inserted int64
	db.Model(&models.DBChange{}).
		Where("table_name = ? AND record_id = ? AND action_type = ?", "tables", table.ID, "INSERT").
		Count(&inserted)
	assert.EqualValues(t, 1, inserted)

	assert.NoError(t, tables.DeleteTable(table.ID))

	var deleted int64
	db.Model(&models.DBChange{}).
		Where("table_name = ? AND record_id = ? AND action_type = ?", "tables", table.ID, "DELETE").
		Count(&deleted)
	assert.EqualValues(t, 1, deleted, "the delete trigger records the removal")
}

func TestChangeMonitorDrainsBatch(t *testing.T) {
	db := setupServiceDB(t)

	// checkChanges reads through the pool while its batch transaction is
	// open, so a single-connection pool would starve it.
	sqlDB, err := db.DB()
	assert.NoError(t, err)
	sqlDB.SetMaxOpenConns(2)

	tables := NewTableService(db)
	sessions := NewSessionService(db)
	orders := NewOrderService(db, sessions)

	table, err := tables.CreateTable(4, 2)
	assert.NoError(t, err)
	_, err = orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)

	spare, err := tables.CreateTable(9, 2)
	assert.NoError(t, err)
	assert.NoError(t, tables.DeleteTable(spare.ID))

	var pending int64
	db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&pending)
	assert.True(t, pending > 0)

	cm := NewChangeMonitor(db)
	cm.checkChanges()

	var remaining int64
	db.Model(&models.DBChange{}).Where("processed = ?", false).Count(&remaining)
	assert.EqualValues(t, 0, remaining, "a pass marks every logged change as processed")
}
