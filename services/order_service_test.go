package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dinehall/comanda/models"
)

func newLedger(t *testing.T) (*OrderService, *SessionService, models.Table) {
	t.Helper()
	db := setupServiceDB(t)
	table := seedTable(t, db, 1)
	sessions := NewSessionService(db)
	return NewOrderService(db, sessions), sessions, table
}

func TestAddOrderValidation(t *testing.T) {
	orders, _, table := newLedger(t)

	cases := []struct {
		name      string
		product   string
		quantity  int
		unitPrice float64
	}{
		{"empty product", "  ", 1, 5.00},
		{"zero quantity", "Soup", 0, 5.00},
		{"negative quantity", "Soup", -2, 5.00},
		{"negative price", "Soup", 1, -0.01},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := orders.AddOrder(table.ID, 1, tc.product, tc.quantity, tc.unitPrice, "")
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestAddOrderDefaults(t *testing.T) {
	orders, _, table := newLedger(t)

	order, err := orders.AddOrder(table.ID, 3, "Soup", 2, 5.00, "extra hot")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.False(t, order.Paid)
	assert.EqualValues(t, 3, order.StaffID)
	assert.Equal(t, table.ID, order.TableID)
	assert.InDelta(t, 10.00, order.LineTotal(), 0.0001)

	// Zero price is a valid line item (a free refill, say).
	free, err := orders.AddOrder(table.ID, 3, "Water", 1, 0, "")
	assert.NoError(t, err)
	assert.InDelta(t, 0, free.LineTotal(), 0.0001)
}

func TestSetStatusAnyToAny(t *testing.T) {
	orders, _, table := newLedger(t)

	order, err := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)

	// No forward-only restriction between the four values.
	updated, err := orders.SetStatus(order.ID, models.StatusPreparing)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Status)

	updated, err = orders.SetStatus(order.ID, models.StatusPending)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)

	updated, err = orders.SetStatus(order.ID, models.StatusDelivered)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	orders, _, table := newLedger(t)

	order, err := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)

	_, err = orders.SetStatus(order.ID, "burnt")
	var transition *InvalidTransitionError
	assert.ErrorAs(t, err, &transition)

	_, err = orders.SetStatus(9999, models.StatusReady)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestMarkPaidIdempotent(t *testing.T) {
	orders, _, table := newLedger(t)

	order, err := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)

	paid, err := orders.MarkPaid(order.ID)
	assert.NoError(t, err)
	assert.True(t, paid.Paid)

	again, err := orders.MarkPaid(order.ID)
	assert.NoError(t, err)
	assert.True(t, again.Paid)
}

func TestMarkSessionPaid(t *testing.T) {
	orders, _, table := newLedger(t)

	o1, _ := orders.AddOrder(table.ID, 1, "Soup", 2, 5.00, "")
	o2, _ := orders.AddOrder(table.ID, 2, "Bread", 1, 2.50, "")
	_, err := orders.MarkPaid(o1.ID)
	assert.NoError(t, err)

	count, err := orders.MarkSessionPaid(table.ID)
	assert.NoError(t, err)
	assert.EqualValues(t, 1, count, "only the unpaid order flips")

	refreshed, _ := orders.GetOrder(o2.ID)
	assert.True(t, refreshed.Paid)
}

func TestMarkSessionPaidNoActiveSession(t *testing.T) {
	orders, _, table := newLedger(t)

	_, err := orders.MarkSessionPaid(table.ID)
	var noSession *NoActiveSessionError
	assert.ErrorAs(t, err, &noSession)
}

func TestKitchenQueue(t *testing.T) {
	orders, _, table := newLedger(t)

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tick := 0
	orders.Now = func() time.Time {
		tick++
		return now.Add(time.Duration(tick) * time.Minute)
	}

	first, _ := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	second, _ := orders.AddOrder(table.ID, 1, "Bread", 1, 2.50, "")
	third, _ := orders.AddOrder(table.ID, 1, "Steak", 1, 20.00, "")
	fourth, _ := orders.AddOrder(table.ID, 1, "Wine", 1, 8.00, "")

	orders.SetStatus(second.ID, models.StatusPreparing)
	orders.SetStatus(third.ID, models.StatusReady)
	orders.SetStatus(fourth.ID, models.StatusDelivered)

	queue, err := orders.KitchenQueue()
	assert.NoError(t, err)
	assert.Len(t, queue, 2, "only pending and preparing belong to the queue")
	assert.Equal(t, first.ID, queue[0].ID, "oldest first")
	assert.Equal(t, second.ID, queue[1].ID)
}

func TestOrdersForTableOn(t *testing.T) {
	orders, _, table := newLedger(t)

	today := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
	orders.Now = func() time.Time { return today }
	todayOrder, err := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	assert.NoError(t, err)

	yesterday := today.AddDate(0, 0, -1)
	orders.Now = func() time.Time { return yesterday }
	_, err = orders.AddOrder(table.ID, 1, "Bread", 1, 2.50, "")
	assert.NoError(t, err)

	listed, err := orders.OrdersForTableOn(table.ID, today)
	assert.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.Equal(t, todayOrder.ID, listed[0].ID)
}

func TestOrdersForSession(t *testing.T) {
	orders, sessions, table := newLedger(t)

	o1, _ := orders.AddOrder(table.ID, 1, "Soup", 1, 5.00, "")
	o2, _ := orders.AddOrder(table.ID, 1, "Bread", 1, 2.50, "")

	listed, err := orders.OrdersForSession(o1.SessionID)
	assert.NoError(t, err)
	assert.Len(t, listed, 2)
	assert.Equal(t, o1.ID, listed[0].ID)
	assert.Equal(t, o2.ID, listed[1].ID)

	_, err = orders.OrdersForSession(9999)
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)

	// The session reference never moves after creation.
	_, err = sessions.CloseSession(table.ID)
	assert.NoError(t, err)
	still, _ := orders.GetOrder(o1.ID)
	assert.Equal(t, o1.SessionID, still.SessionID)
}
