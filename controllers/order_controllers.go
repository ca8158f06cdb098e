package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/kds"
	"github.com/dinehall/comanda/middlewares"
	"github.com/dinehall/comanda/services"
	"github.com/dinehall/comanda/utils"
)

type OrderController struct {
	Orders *services.OrderService
	Stats  *services.StatsService
}

func NewOrderController(orders *services.OrderService, stats *services.StatsService) *OrderController {
	return &OrderController{Orders: orders, Stats: stats}
}

// CreateOrder -> appends a line item to the table's active session, opening
// a session first when the table has none.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	var req struct {
		Product   string  `json:"product" binding:"required"`
		Quantity  int     `json:"quantity"`
		UnitPrice float64 `json:"unit_price"`
		Notes     string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	order, err := oc.Orders.AddOrder(tableID, middlewares.StaffID(c), req.Product, req.Quantity, req.UnitPrice, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastOrderCreate(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> one line item
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Orders.GetOrder(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// UpdateOrderStatus -> sets the kitchen-progress tag; any of the four values
// may be requested from any other.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.SetStatus(orderID, body.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// MarkOrderPaid -> settles one order; repeating it is harmless.
func (oc *OrderController) MarkOrderPaid(c *gin.Context) {
	orderID, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	order, err := oc.Orders.MarkPaid(orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastOrderUpdate(*order)
	utils.RespondJSON(c, http.StatusOK, "Order marked as paid", order)
}

// PayTable -> settles every unpaid order in the table's active session.
func (oc *OrderController) PayTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	count, err := oc.Orders.MarkSessionPaid(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session marked as paid", gin.H{
		"table_id":    tableID,
		"orders_paid": count,
	})
}

// GetTableOrders -> a table's orders for one day; ?date=YYYY-MM-DD, default
// today.
func (oc *OrderController) GetTableOrders(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Reason: "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	orders, err := oc.Orders.OrdersForTableOn(tableID, day)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Orders for table", orders)
}

// GetKitchenQueue -> pending and preparing orders, oldest first.
func (oc *OrderController) GetKitchenQueue(c *gin.Context) {
	orders, err := oc.Orders.KitchenQueue()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen queue", orders)
}
