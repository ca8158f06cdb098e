package models

import "time"

const (
	StatusPending   = "pending"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusDelivered = "delivered"
)

// OrderStatuses lists the recognized kitchen-progress values. There is no
// enforced transition graph between them: any value may be set from any
// other on explicit request.
var OrderStatuses = []string{StatusPending, StatusPreparing, StatusReady, StatusDelivered}

type Order struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	TableID   uint    `gorm:"index;not null" json:"table_id"`
	Table     Table   `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SessionID uint    `gorm:"index;not null" json:"session_id"`
	Session   Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	// StaffID is a non-owning back-reference for attribution; staff records
	// live in the surrounding auth layer.
	StaffID   uint      `gorm:"index;not null" json:"staff_id"`
	Product   string    `gorm:"type:varchar(200);not null" json:"product"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	UnitPrice float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"unit_price"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Paid      bool      `gorm:"not null;default:false" json:"paid"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// LineTotal -> quantity x unit price
func (o *Order) LineTotal() float64 {
	return float64(o.Quantity) * o.UnitPrice
}

// ValidStatus reports whether s is one of the four recognized values.
func ValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}
