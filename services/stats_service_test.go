package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dinehall/comanda/models"
)

func TestSessionTotalsPartition(t *testing.T) {
	orders, _, table := newLedger(t)
	stats := NewStatsService(orders.DB)

	o1, err := orders.AddOrder(table.ID, 1, "Soup", 2, 5.00, "")
	assert.NoError(t, err)
	_, err = orders.AddOrder(table.ID, 2, "Bread", 1, 2.50, "")
	assert.NoError(t, err)

	totals, err := stats.SessionTotals(o1.SessionID)
	assert.NoError(t, err)
	assert.InDelta(t, 12.50, totals.GrandTotal, 0.0001)
	assert.InDelta(t, 0, totals.PaidTotal, 0.0001)
	assert.InDelta(t, 12.50, totals.UnpaidTotal, 0.0001)

	// Pay one line and the partition shifts while the identity holds.
	_, err = orders.MarkPaid(o1.ID)
	assert.NoError(t, err)

	totals, err = stats.SessionTotals(o1.SessionID)
	assert.NoError(t, err)
	assert.InDelta(t, 10.00, totals.PaidTotal, 0.0001)
	assert.InDelta(t, 2.50, totals.UnpaidTotal, 0.0001)
	assert.Equal(t, totals.GrandTotal, totals.PaidTotal+totals.UnpaidTotal)
}

func TestSessionTotalsUnknownSession(t *testing.T) {
	db := setupServiceDB(t)
	stats := NewStatsService(db)

	_, err := stats.SessionTotals(42)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestOrderTotal(t *testing.T) {
	db := setupServiceDB(t)
	stats := NewStatsService(db)

	order := models.Order{Quantity: 3, UnitPrice: 4.25}
	assert.InDelta(t, 12.75, stats.OrderTotal(&order), 0.0001)
}

func TestDayTotalsExplicitEmptyDay(t *testing.T) {
	db := setupServiceDB(t)
	stats := NewStatsService(db)

	// A valid day with no orders answers zero, not a fallback view.
	summary, err := stats.DayTotalsFor(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.Equal(t, "2024-03-10", summary.Date)
	assert.Equal(t, 0, summary.OrderCount)
	assert.InDelta(t, 0, summary.GrandTotal, 0.0001)
}

func TestRecentDayTotals(t *testing.T) {
	orders, _, table := newLedger(t)
	stats := NewStatsService(orders.DB)

	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	stats.Now = func() time.Time { return base }

	// Two orders today, one yesterday, one outside the window.
	for _, seed := range []struct {
		day   time.Time
		price float64
		paid  bool
	}{
		{base, 5.00, true},
		{base, 2.50, false},
		{base.AddDate(0, 0, -1), 7.00, false},
		{base.AddDate(0, 0, -10), 99.00, false},
	} {
		orders.Now = func() time.Time { return seed.day }
		o, err := orders.AddOrder(table.ID, 1, "Dish", 1, seed.price, "")
		assert.NoError(t, err)
		if seed.paid {
			_, err = orders.MarkPaid(o.ID)
			assert.NoError(t, err)
		}
	}

	summaries, err := stats.RecentDayTotals()
	assert.NoError(t, err)
	assert.Len(t, summaries, 2, "the old order is outside the lookback window")

	assert.Equal(t, "2024-03-10", summaries[0].Date)
	assert.Equal(t, 2, summaries[0].OrderCount)
	assert.InDelta(t, 7.50, summaries[0].GrandTotal, 0.0001)
	assert.InDelta(t, 5.00, summaries[0].PaidTotal, 0.0001)
	assert.InDelta(t, 2.50, summaries[0].UnpaidTotal, 0.0001)

	assert.Equal(t, "2024-03-09", summaries[1].Date)
	assert.Equal(t, 1, summaries[1].OrderCount)
	assert.InDelta(t, 7.00, summaries[1].GrandTotal, 0.0001)
}

func TestTableSnapshot(t *testing.T) {
	orders, sessions, table := newLedger(t)
	stats := NewStatsService(orders.DB)

	// No open session: empty tile.
	snap, err := stats.TableSnapshotFor(table.ID)
	assert.NoError(t, err)
	assert.False(t, snap.HasOpenSession)
	assert.Nil(t, snap.SessionStart)
	assert.Equal(t, 0, snap.OrderCount)
	assert.False(t, snap.AnyUnpaid)
	assert.True(t, snap.AllDelivered)

	o1, err := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)
	_, err = orders.AddOrder(table.ID, 1, "Bread", 1, 2.50, "")
	assert.NoError(t, err)

	snap, err = stats.TableSnapshotFor(table.ID)
	assert.NoError(t, err)
	assert.True(t, snap.HasOpenSession)
	assert.NotNil(t, snap.SessionStart)
	assert.Equal(t, 2, snap.OrderCount)
	assert.True(t, snap.AnyUnpaid)
	assert.False(t, snap.AllDelivered)

	_, err = orders.SetStatus(o1.ID, models.StatusDelivered)
	assert.NoError(t, err)
	snap, _ = stats.TableSnapshotFor(table.ID)
	assert.False(t, snap.AllDelivered, "one delivered line is not all of them")

	// After release the tile goes back to empty.
	_, err = sessions.CloseSession(table.ID)
	assert.NoError(t, err)
	snap, err = stats.TableSnapshotFor(table.ID)
	assert.NoError(t, err)
	assert.False(t, snap.HasOpenSession)
	assert.Equal(t, 0, snap.OrderCount)
}

func TestDashboardSnapshots(t *testing.T) {
	db := setupServiceDB(t)
	stats := NewStatsService(db)

	t2 := models.Table{Number: 2, Capacity: 4, Active: true}
	t1 := models.Table{Number: 1, Capacity: 2, Active: true}
	hidden := models.Table{Number: 3, Capacity: 6, Active: false}
	db.Create(&t2)
	db.Create(&t1)
	db.Create(&hidden)

	snapshots, err := stats.DashboardSnapshots()
	assert.NoError(t, err)
	assert.Len(t, snapshots, 2, "inactive tables stay off the dashboard")
	assert.Equal(t, 1, snapshots[0].Number)
	assert.Equal(t, 2, snapshots[1].Number)
}
