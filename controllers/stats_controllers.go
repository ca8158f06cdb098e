package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dinehall/comanda/services"
	"github.com/dinehall/comanda/utils"
)

type StatsController struct {
	Stats *services.StatsService
}

func NewStatsController(stats *services.StatsService) *StatsController {
	return &StatsController{Stats: stats}
}

// GetDashboard -> snapshot tiles for every active table
func (sc *StatsController) GetDashboard(c *gin.Context) {
	snapshots, err := sc.Stats.DashboardSnapshots()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard snapshots", snapshots)
}

// GetHistory -> day totals. With ?date=YYYY-MM-DD the answer is that day,
// explicitly empty when it has no orders; without a date, the recent window.
// An invalid date is an error, never a silent fallback.
func (sc *StatsController) GetHistory(c *gin.Context) {
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, &services.ValidationError{Reason: "invalid date, expected YYYY-MM-DD"})
			return
		}

		summary, err := sc.Stats.DayTotalsFor(day)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Day totals", []services.DaySummary{*summary})
		return
	}

	summaries, err := sc.Stats.RecentDayTotals()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recent day totals", summaries)
}
