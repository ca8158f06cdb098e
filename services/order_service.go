package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/dinehall/comanda/models"
	"github.com/dinehall/comanda/utils"
)

// OrderService is the order ledger: line items within a session, their
// status progression and their paid flags.
type OrderService struct {
	DB       *gorm.DB
	Sessions *SessionService
	Now      func() time.Time
}

func NewOrderService(db *gorm.DB, sessions *SessionService) *OrderService {
	return &OrderService{DB: db, Sessions: sessions, Now: time.Now}
}

// AddOrder -> appends a line item to the table's active session, opening one
// when none exists. The append runs inside the per-table session scope so it
// cannot race a concurrent release of the same table.
func (osvc *OrderService) AddOrder(tableID, staffID uint, product string, quantity int, unitPrice float64, notes string) (*models.Order, error) {
	if strings.TrimSpace(product) == "" {
		return nil, &ValidationError{Reason: "product is required"}
	}
	if quantity < 1 {
		return nil, &ValidationError{Reason: "quantity must be at least 1"}
	}
	if unitPrice < 0 {
		return nil, &ValidationError{Reason: "unit price cannot be negative"}
	}

	var order models.Order
	_, err := osvc.Sessions.WithActiveSession(tableID, func(session *models.Session) error {
		now := osvc.Now()
		order = models.Order{
			TableID:   tableID,
			SessionID: session.ID,
			StaffID:   staffID,
			Product:   strings.TrimSpace(product),
			Quantity:  quantity,
			UnitPrice: unitPrice,
			Notes:     notes,
			Status:    models.StatusPending,
			Paid:      false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return osvc.DB.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d (%s x%d) added to session %d by staff %d",
		order.ID, order.Product, order.Quantity, order.SessionID, staffID)
	return &order, nil
}

// SetStatus -> sets an order's kitchen-progress tag. All four values are
// reachable from each other; no ordering is enforced between them.
func (osvc *OrderService) SetStatus(orderID uint, status string) (*models.Order, error) {
	if !models.ValidStatus(status) {
		return nil, &InvalidTransitionError{Status: status}
	}

	var order models.Order
	if err := osvc.DB.First(&order, orderID).Error; err != nil {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}

	order.Status = status
	order.UpdatedAt = osvc.Now()
	if err := osvc.DB.Save(&order).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Order %d status -> %s", order.ID, order.Status)
	return &order, nil
}

// MarkPaid -> idempotently settles a single order.
func (osvc *OrderService) MarkPaid(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := osvc.DB.First(&order, orderID).Error; err != nil {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}

	if order.Paid {
		return &order, nil
	}

	order.Paid = true
	order.UpdatedAt = osvc.Now()
	if err := osvc.DB.Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkSessionPaid -> settles every unpaid order in the table's active
// session in one logical operation. Returns how many orders flipped.
func (osvc *OrderService) MarkSessionPaid(tableID uint) (int64, error) {
	if err := osvc.DB.First(&models.Table{}, tableID).Error; err != nil {
		return 0, &NotFoundError{Entity: "table", ID: tableID}
	}

	var session models.Session
	if err := osvc.DB.Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
		First(&session).Error; err != nil {
		return 0, &NoActiveSessionError{TableID: tableID}
	}

	res := osvc.DB.Model(&models.Order{}).
		Where("session_id = ? AND paid = ?", session.ID, false).
		Updates(map[string]interface{}{"paid": true, "updated_at": osvc.Now()})
	if res.Error != nil {
		return 0, res.Error
	}

	utils.InfoLogger.Printf("Session %d: %d orders marked paid", session.ID, res.RowsAffected)
	return res.RowsAffected, nil
}

// OrdersForSession -> the session's line items, oldest first.
func (osvc *OrderService) OrdersForSession(sessionID uint) ([]models.Order, error) {
	if err := osvc.DB.First(&models.Session{}, sessionID).Error; err != nil {
		return nil, &NotFoundError{Entity: "session", ID: sessionID}
	}

	var orders []models.Order
	if err := osvc.DB.Where("session_id = ?", sessionID).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersForTableOn -> a table's orders for one calendar day, newest first.
func (osvc *OrderService) OrdersForTableOn(tableID uint, day time.Time) ([]models.Order, error) {
	if err := osvc.DB.First(&models.Table{}, tableID).Error; err != nil {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}

	var orders []models.Order
	if err := osvc.DB.Where("table_id = ? AND DATE(created_at) = ?", tableID, day.Format("2006-01-02")).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// KitchenQueue -> every pending or preparing order system-wide, oldest first,
// for the kitchen display.
func (osvc *OrderService) KitchenQueue() ([]models.Order, error) {
	var orders []models.Order
	if err := osvc.DB.Where("status IN ?", []string{models.StatusPending, models.StatusPreparing}).
		Order("created_at asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder -> one order by id.
func (osvc *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := osvc.DB.First(&order, orderID).Error; err != nil {
		return nil, &NotFoundError{Entity: "order", ID: orderID}
	}
	return &order, nil
}
