package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/kds"
	"github.com/dinehall/comanda/services"
	"github.com/dinehall/comanda/utils"
)

type TableController struct {
	Tables *services.TableService
	Stats  *services.StatsService
}

func NewTableController(tables *services.TableService, stats *services.StatsService) *TableController {
	return &TableController{Tables: tables, Stats: stats}
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Reason: "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// CreateTable -> registers a new table
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Number   int `json:"number" binding:"required"`
		Capacity int `json:"capacity"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Capacity == 0 {
		req.Capacity = 4
	}

	table, err := tc.Tables.CreateTable(req.Number, req.Capacity)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastTableCreate(*table)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list of tables; ?active=true limits to active ones
func (tc *TableController) GetAllTables(c *gin.Context) {
	activeOnly := c.Query("active") == "true"

	tables, err := tc.Tables.ListTables(activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> one table's registry entry
func (tc *TableController) GetTableByID(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	table, err := tc.Tables.GetTable(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// SetTableActive -> activates or deactivates a table
func (tc *TableController) SetTableActive(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.SetActive(tableID, *body.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	kds.BroadcastTableUpdate(*table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> removes a table without session history
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	if err := tc.Tables.DeleteTable(tableID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

// GetTableSnapshot -> one table's dashboard tile
func (tc *TableController) GetTableSnapshot(c *gin.Context) {
	tableID, ok := paramID(c, "table_id")
	if !ok {
		return
	}

	snap, err := tc.Stats.TableSnapshotFor(tableID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table snapshot", snap)
}
