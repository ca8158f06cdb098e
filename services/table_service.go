package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/dinehall/comanda/models"
	"github.com/dinehall/comanda/utils"
)

// TableService is the table registry. Tables are created and deactivated by
// administration and never deleted while they carry session history.
type TableService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTableService(db *gorm.DB) *TableService {
	return &TableService{DB: db, Now: time.Now}
}

// CreateTable -> registers a new table with a unique display number.
func (ts *TableService) CreateTable(number, capacity int) (*models.Table, error) {
	if number <= 0 {
		return nil, &ValidationError{Reason: "table number must be positive"}
	}
	if capacity < 1 {
		return nil, &ValidationError{Reason: "capacity must be at least 1"}
	}

	var existing models.Table
	if err := ts.DB.Where("number = ?", number).First(&existing).Error; err == nil {
		return nil, &ConflictError{Reason: fmt.Sprintf("table %d already exists", number)}
	}

	now := ts.Now()
	table := models.Table{
		Number:    number,
		Capacity:  capacity,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := ts.DB.Create(&table).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d created (capacity=%d)", table.Number, table.Capacity)
	return &table, nil
}

// GetTable -> one table by id.
func (ts *TableService) GetTable(tableID uint) (*models.Table, error) {
	var table models.Table
	if err := ts.DB.First(&table, tableID).Error; err != nil {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}
	return &table, nil
}

// ListTables -> all tables, or only active ones, ordered by display number.
func (ts *TableService) ListTables(activeOnly bool) ([]models.Table, error) {
	var tables []models.Table
	q := ts.DB.Order("number asc")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	if err := q.Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

// SetActive -> activates or deactivates a table. Inactive tables are hidden
// from new-session creation but keep their history.
func (ts *TableService) SetActive(tableID uint, active bool) (*models.Table, error) {
	table, err := ts.GetTable(tableID)
	if err != nil {
		return nil, err
	}

	table.Active = active
	table.UpdatedAt = ts.Now()
	if err := ts.DB.Save(table).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Table %d active=%v", table.Number, table.Active)
	return table, nil
}

// DeleteTable -> removes a table, refused while any session history exists.
func (ts *TableService) DeleteTable(tableID uint) error {
	table, err := ts.GetTable(tableID)
	if err != nil {
		return err
	}

	var sessions int64
	if err := ts.DB.Model(&models.Session{}).Where("table_id = ?", tableID).Count(&sessions).Error; err != nil {
		return err
	}
	if sessions > 0 {
		return &ConflictError{Reason: fmt.Sprintf("table %d has session history and cannot be deleted", table.Number)}
	}

	if err := ts.DB.Delete(&models.Table{}, tableID).Error; err != nil {
		return err
	}
	utils.InfoLogger.Printf("Table %d deleted", table.Number)
	return nil
}
