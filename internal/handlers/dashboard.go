package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-manager/internal/auth"
	"rental-manager/internal/dashboard"
)

func (h *Handler) dashboard(c *gin.Context) *dashboard.Service {
	return dashboard.NewService(h.session(c), h.clock)
}

// DashboardStats returns entity counts and the monthly revenue from active contracts
func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.dashboard(c).Stats(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) DashboardSummary(c *gin.Context) {
	summary, err := h.dashboard(c).Summary(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RevenueChart returns received payments for the last ?months (default 12)
func (h *Handler) RevenueChart(c *gin.Context) {
	months, ok := queryInt(c, "months", 12, 1, dashboard.MaxChartMonths)
	if !ok {
		return
	}
	data, err := h.dashboard(c).RevenueChart(auth.UserID(c), months)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) PropertyPerformance(c *gin.Context) {
	data, err := h.dashboard(c).PropertyPerformance(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) RecentActivity(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 10, 1, dashboard.MaxActivityLimit)
	if !ok {
		return
	}
	data, err := h.dashboard(c).RecentActivity(auth.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) RevenueVsExpenses(c *gin.Context) {
	months, ok := queryInt(c, "months", 12, 1, dashboard.MaxChartMonths)
	if !ok {
		return
	}
	propertyID, ok := queryUint(c, "property_id")
	if !ok {
		return
	}
	data, err := h.dashboard(c).RevenueVsExpenses(auth.UserID(c), months, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// FinancialOverview totals ?start_date..?end_date, the current month when
// either bound is missing
func (h *Handler) FinancialOverview(c *gin.Context) {
	start, ok := queryDate(c, "start_date")
	if !ok {
		return
	}
	end, ok := queryDate(c, "end_date")
	if !ok {
		return
	}
	propertyID, ok := queryUint(c, "property_id")
	if !ok {
		return
	}
	overview, err := h.dashboard(c).FinancialOverview(auth.UserID(c), start, end, propertyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) PropertiesStatus(c *gin.Context) {
	status, err := h.dashboard(c).PropertiesStatus(auth.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
