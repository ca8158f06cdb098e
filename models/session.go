package models

import "time"

const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// Session is one continuous occupation of a table by a party. At most one
// session per table may have status 'open'; the partial unique index /
// trigger installed in database.EnsureConstraints backs that invariant.
type Session struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TableID    uint       `gorm:"index;not null" json:"table_id"`
	Table      Table      `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SessionKey string     `gorm:"type:varchar(64);not null" json:"session_key"`
	Status     string     `gorm:"type:varchar(20);not null;default:'open'" json:"status"`
	StartedAt  time.Time  `gorm:"not null" json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
	// CachedTotal is written once at close time; recompute through the
	// stats service for open sessions.
	CachedTotal float64   `gorm:"type:decimal(10,2);not null;default:0.00" json:"cached_total"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (s *Session) IsOpen() bool {
	return s.Status == SessionOpen
}
