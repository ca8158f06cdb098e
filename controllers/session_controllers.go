package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/kds"
	"github.com/dinehall/comanda/services"
	"github.com/dinehall/comanda/utils"
)

type SessionController struct {
	Sessions *services.SessionService
	Orders   *services.OrderService
	Stats    *services.StatsService
}

func NewSessionController(sessions *services.SessionService, orders *services.OrderService, stats *services.StatsService) *SessionController {
	return &SessionController{Sessions: sessions, Orders: orders, Stats: stats}
}

// ReleaseTable -> closes the table's active session. Every order is forced
// to delivered and paid in the same operation: the party left and the bill
// is settled in full.
func (sc *SessionController) ReleaseTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	session, err := sc.Sessions.CloseSession(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastSessionClose(*session)
	kds.BroadcastStaffNotification(fmt.Sprintf("Table %d released", tableID))

	utils.RespondJSON(c, http.StatusOK, "Table released", session)
}

// GetSession -> one session with its orders and totals
func (sc *SessionController) GetSession(c *gin.Context) {
	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}

	session, err := sc.Sessions.GetSession(sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orders, err := sc.Orders.OrdersForSession(sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	totals, err := sc.Stats.SessionTotals(sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session detail", gin.H{
		"session": session,
		"orders":  orders,
		"totals":  totals,
	})
}
