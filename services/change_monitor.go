package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/dinehall/comanda/kds"
	"github.com/dinehall/comanda/models"
	"github.com/dinehall/comanda/utils"
)

// ChangeMonitor drains the db_changes log (written by the triggers in
// database.EnsureConstraints) and pushes the matching events to connected
// displays. This is how writes from other processes still reach the
// dashboards of this one.
type ChangeMonitor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration
}

func NewChangeMonitor(db *gorm.DB) *ChangeMonitor {
	return &ChangeMonitor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 1 * time.Second,
	}
}

func (cm *ChangeMonitor) Start() {
	go func() {
		ticker := time.NewTicker(cm.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cm.checkChanges()
			case <-cm.StopChan:
				return
			}
		}
	}()
}

func (cm *ChangeMonitor) Stop() {
	close(cm.StopChan)
}

func (cm *ChangeMonitor) checkChanges() {
	var changes []models.DBChange

	tx := cm.DB.Begin()

	if err := tx.Where("processed = ?", false).
		Order("changed_at ASC").
		Limit(100).
		Find(&changes).Error; err != nil {
		tx.Rollback()
		utils.ErrorLogger.Printf("Error fetching changes: %v", err)
		return
	}

	for _, change := range changes {
		switch change.TableName {
		case "tables":
			cm.processTableChange(change)
		case "sessions":
			cm.processSessionChange(change)
		case "orders":
			cm.processOrderChange(change)
		}

		if err := tx.Model(&models.DBChange{}).
			Where("id = ?", change.ID).
			Update("processed", true).Error; err != nil {
			tx.Rollback()
			utils.ErrorLogger.Printf("Error marking change as processed: %v", err)
			return
		}
	}

	if err := tx.Commit().Error; err != nil {
		utils.ErrorLogger.Printf("Error committing change batch: %v", err)
		tx.Rollback()
		return
	}

	if len(changes) > 0 {
		kds.BroadcastDashboardUpdate(map[string]interface{}{
			"changes": len(changes),
		})
		utils.InfoLogger.Printf("Processed %d change log entries", len(changes))
	}
}

func (cm *ChangeMonitor) processTableChange(change models.DBChange) {
	if change.ActionType == "DELETE" {
		kds.BroadcastTableDelete(models.Table{ID: uint(change.RecordID)})
		return
	}

	var table models.Table
	if err := cm.DB.First(&table, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching table %d: %v", change.RecordID, err)
		return
	}

	if change.ActionType == "INSERT" {
		kds.BroadcastTableCreate(table)
	} else {
		kds.BroadcastTableUpdate(table)
	}
}

func (cm *ChangeMonitor) processSessionChange(change models.DBChange) {
	var session models.Session
	if err := cm.DB.First(&session, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching session %d: %v", change.RecordID, err)
		return
	}

	if session.IsOpen() {
		kds.BroadcastSessionOpen(session)
	} else {
		kds.BroadcastSessionClose(session)
	}
}

func (cm *ChangeMonitor) processOrderChange(change models.DBChange) {
	var order models.Order
	if err := cm.DB.First(&order, change.RecordID).Error; err != nil {
		utils.ErrorLogger.Printf("Error fetching order %d: %v", change.RecordID, err)
		return
	}

	if change.ActionType == "INSERT" {
		kds.BroadcastOrderCreate(order)
	} else {
		kds.BroadcastOrderUpdate(order)
	}
}
