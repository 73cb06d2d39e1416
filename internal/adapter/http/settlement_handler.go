package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grigobio237-eng/Youniqle-sub001/internal/usecase"
)

type SettlementHandler struct {
	report *usecase.SettlementReport
}

func NewSettlementHandler(report *usecase.SettlementReport) *SettlementHandler {
	return &SettlementHandler{report: report}
}

// PartnerSettlement returns one partner's revenue/commission rollup for the
// last N days plus growth against the preceding N days. A partner with no
// orders gets an all-zero report, not an error.
func (h *SettlementHandler) PartnerSettlement(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be 1..365"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	out, err := h.report.Partner(ctx, c.Param("partnerId"), time.Duration(days)*24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server_error"})
		return
	}
	c.JSON(http.StatusOK, out)
}
