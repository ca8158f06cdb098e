package services

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dinehall/comanda/models"
	"github.com/dinehall/comanda/utils"
)

// SessionService owns the session lifecycle: at most one open session per
// table at any instant. Get-or-open and close for the same table run under a
// per-table lock, so two concurrent "add order" calls cannot open two
// sessions and a close cannot interleave with an append. The storage layer
// carries a second guard (see database.EnsureConstraints) for deployments
// with more than one process.
type SessionService struct {
	DB  *gorm.DB
	Now func() time.Time

	mu     sync.Mutex
	tables map[uint]*sync.Mutex
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{
		DB:     db,
		Now:    time.Now,
		tables: make(map[uint]*sync.Mutex),
	}
}

// tableLock -> the lock scoped to one table, created lazily.
func (ss *SessionService) tableLock(tableID uint) *sync.Mutex {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	lock, ok := ss.tables[tableID]
	if !ok {
		lock = &sync.Mutex{}
		ss.tables[tableID] = lock
	}
	return lock
}

// GetOrOpenActiveSession -> the table's open session, creating one when none
// exists. Fails with NotFoundError when the table is missing or inactive.
func (ss *SessionService) GetOrOpenActiveSession(tableID uint) (*models.Session, error) {
	lock := ss.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	return ss.getOrOpenLocked(tableID)
}

// WithActiveSession -> resolves (or opens) the active session and runs fn
// while still holding the table lock. The order ledger appends line items
// through this so an append can never race a close on the same table.
func (ss *SessionService) WithActiveSession(tableID uint, fn func(session *models.Session) error) (*models.Session, error) {
	lock := ss.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	session, err := ss.getOrOpenLocked(tableID)
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (ss *SessionService) getOrOpenLocked(tableID uint) (*models.Session, error) {
	var table models.Table
	if err := ss.DB.First(&table, tableID).Error; err != nil {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}
	if !table.Active {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}

	var session models.Session
	err := ss.DB.Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
		First(&session).Error
	if err == nil {
		return &session, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := ss.createOpenSession(tableID)
	if err != nil {
		if _, ok := err.(*ConflictError); ok {
			// The loser of the race observes the just-created session.
			var winner models.Session
			if ferr := ss.DB.Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
				First(&winner).Error; ferr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d opened for table %d", created.ID, tableID)
	return created, nil
}

// createOpenSession inserts a fresh open session. Every rejection comes back
// as a ConflictError: either the in-transaction re-check found an open
// session another process created meanwhile, or the storage guard (partial
// unique index / trigger) refused the duplicate insert.
func (ss *SessionService) createOpenSession(tableID uint) (*models.Session, error) {
	now := ss.Now()
	session := models.Session{
		TableID:    tableID,
		SessionKey: uuid.NewString(),
		Status:     models.SessionOpen,
		StartedAt:  now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		var open int64
		if err := tx.Model(&models.Session{}).
			Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return &ConflictError{Reason: "another open session exists for this table"}
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		if _, ok := err.(*ConflictError); ok {
			return nil, err
		}
		return nil, &ConflictError{Reason: err.Error()}
	}
	return &session, nil
}

// CloseSession -> releases a table: every order in the open session is forced
// to delivered and paid, the end time is stamped and the total cached. The
// party leaves and the bill is settled in full; partial settlement is not a
// thing this models.
func (ss *SessionService) CloseSession(tableID uint) (*models.Session, error) {
	lock := ss.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	var table models.Table
	if err := ss.DB.First(&table, tableID).Error; err != nil {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}

	var session models.Session
	if err := ss.DB.Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
		First(&session).Error; err != nil {
		return nil, &NoActiveSessionError{TableID: tableID}
	}

	now := ss.Now()
	err := ss.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).
			Where("session_id = ? AND status != ?", session.ID, models.StatusDelivered).
			Updates(map[string]interface{}{"status": models.StatusDelivered, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).
			Where("session_id = ? AND paid = ?", session.ID, false).
			Updates(map[string]interface{}{"paid": true, "updated_at": now}).Error; err != nil {
			return err
		}

		// Everything is paid now, so the cached total is the grand total.
		var total float64
		if err := tx.Model(&models.Order{}).
			Where("session_id = ?", session.ID).
			Select("COALESCE(SUM(quantity * unit_price), 0)").
			Row().Scan(&total); err != nil {
			return err
		}

		session.Status = models.SessionClosed
		session.EndedAt = &now
		session.CachedTotal = total
		session.UpdatedAt = now
		return tx.Save(&session).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Printf("Session %d closed for table %d (total=%.2f)", session.ID, tableID, session.CachedTotal)
	return &session, nil
}

// GetSession -> one session by id.
func (ss *SessionService) GetSession(sessionID uint) (*models.Session, error) {
	var session models.Session
	if err := ss.DB.First(&session, sessionID).Error; err != nil {
		return nil, &NotFoundError{Entity: "session", ID: sessionID}
	}
	return &session, nil
}
