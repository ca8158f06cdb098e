package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dinehall/comanda/models"
)

// DefaultLookbackDays bounds the history view when no date is selected.
const DefaultLookbackDays = 7

// Totals is a three-way money partition over a set of orders. GrandTotal is
// always the sum of the two partitions, so the identity holds exactly.
type Totals struct {
	GrandTotal  float64 `json:"grand_total"`
	PaidTotal   float64 `json:"paid_total"`
	UnpaidTotal float64 `json:"unpaid_total"`
}

// DaySummary is one calendar day of history.
type DaySummary struct {
	Date       string `json:"date"`
	OrderCount int    `json:"order_count"`
	Totals
}

// TableSnapshot is the dashboard tile for one table, scoped to its active
// session when one is open.
type TableSnapshot struct {
	TableID        uint       `json:"table_id"`
	Number         int        `json:"number"`
	Capacity       int        `json:"capacity"`
	HasOpenSession bool       `json:"has_open_session"`
	SessionStart   *time.Time `json:"session_start,omitempty"`
	OrderCount     int        `json:"order_count"`
	AnyUnpaid      bool       `json:"any_unpaid"`
	AllDelivered   bool       `json:"all_delivered"`
}

// StatsService derives totals, queues and snapshots from the ledger. Query
// only: nothing in here mutates a record.
type StatsService struct {
	DB       *gorm.DB
	Now      func() time.Time
	Lookback int
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db, Now: time.Now, Lookback: DefaultLookbackDays}
}

// OrderTotal -> one line item's amount.
func (st *StatsService) OrderTotal(order *models.Order) float64 {
	return order.LineTotal()
}

func sumTotals(orders []models.Order) Totals {
	var t Totals
	for i := range orders {
		if orders[i].Paid {
			t.PaidTotal += orders[i].LineTotal()
		} else {
			t.UnpaidTotal += orders[i].LineTotal()
		}
	}
	t.GrandTotal = t.PaidTotal + t.UnpaidTotal
	return t
}

// SessionTotals -> the session's money partition, computed from a single
// read of that session's orders.
func (st *StatsService) SessionTotals(sessionID uint) (*Totals, error) {
	if err := st.DB.First(&models.Session{}, sessionID).Error; err != nil {
		return nil, &NotFoundError{Entity: "session", ID: sessionID}
	}

	var orders []models.Order
	if err := st.DB.Where("session_id = ?", sessionID).Find(&orders).Error; err != nil {
		return nil, err
	}

	t := sumTotals(orders)
	return &t, nil
}

// DayTotalsFor -> one calendar day's summary. A valid day with no orders
// answers an explicit zero summary rather than falling back to a wider view.
func (st *StatsService) DayTotalsFor(day time.Time) (*DaySummary, error) {
	date := day.Format("2006-01-02")

	var orders []models.Order
	if err := st.DB.Where("DATE(created_at) = ?", date).Find(&orders).Error; err != nil {
		return nil, err
	}

	summary := DaySummary{Date: date, OrderCount: len(orders), Totals: sumTotals(orders)}
	return &summary, nil
}

// RecentDayTotals -> summaries for the most recent lookback window, newest
// day first. Days without orders are omitted, matching the history view.
func (st *StatsService) RecentDayTotals() ([]DaySummary, error) {
	lookback := st.Lookback
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}

	today := st.Now()
	since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).
		AddDate(0, 0, -(lookback - 1))

	var orders []models.Order
	if err := st.DB.Where("created_at >= ?", since).
		Order("created_at desc").
		Find(&orders).Error; err != nil {
		return nil, err
	}

	byDay := make(map[string][]models.Order)
	var order []string
	for i := range orders {
		date := orders[i].CreatedAt.Format("2006-01-02")
		if _, seen := byDay[date]; !seen {
			order = append(order, date)
		}
		byDay[date] = append(byDay[date], orders[i])
	}

	summaries := make([]DaySummary, 0, len(order))
	for _, date := range order {
		day := byDay[date]
		summaries = append(summaries, DaySummary{
			Date:       date,
			OrderCount: len(day),
			Totals:     sumTotals(day),
		})
	}
	return summaries, nil
}

// TableSnapshotFor -> the dashboard tile for one table. With no open session
// the counts are zero and the start time is null.
func (st *StatsService) TableSnapshotFor(tableID uint) (*TableSnapshot, error) {
	var table models.Table
	if err := st.DB.First(&table, tableID).Error; err != nil {
		return nil, &NotFoundError{Entity: "table", ID: tableID}
	}

	snap := TableSnapshot{
		TableID:      table.ID,
		Number:       table.Number,
		Capacity:     table.Capacity,
		AllDelivered: true,
	}

	var session models.Session
	err := st.DB.Where("table_id = ? AND status = ?", tableID, models.SessionOpen).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &snap, nil
		}
		return nil, err
	}

	snap.HasOpenSession = true
	snap.SessionStart = &session.StartedAt

	var orders []models.Order
	if err := st.DB.Where("session_id = ?", session.ID).Find(&orders).Error; err != nil {
		return nil, err
	}

	snap.OrderCount = len(orders)
	for i := range orders {
		if !orders[i].Paid {
			snap.AnyUnpaid = true
		}
		if orders[i].Status != models.StatusDelivered {
			snap.AllDelivered = false
		}
	}
	return &snap, nil
}

// DashboardSnapshots -> tiles for every active table, ordered by number.
func (st *StatsService) DashboardSnapshots() ([]TableSnapshot, error) {
	var tables []models.Table
	if err := st.DB.Where("active = ?", true).Order("number asc").Find(&tables).Error; err != nil {
		return nil, err
	}

	snapshots := make([]TableSnapshot, 0, len(tables))
	for i := range tables {
		snap, err := st.TableSnapshotFor(tables[i].ID)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snap)
	}
	return snapshots, nil
}
