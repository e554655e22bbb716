package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cabs/internal/domain"
	"cabs/internal/service"
)

// DriverReportHandler handles HTTP requests for driver reports.
type DriverReportHandler struct {
	reportService *service.DriverReportService
}

// NewDriverReportHandler creates a new DriverReportHandler.
func NewDriverReportHandler(reportService *service.DriverReportService) *DriverReportHandler {
	return &DriverReportHandler{reportService: reportService}
}

// DriverReportEntryResponse is one transit in a driver report.
type DriverReportEntryResponse struct {
	TransitID string        `json:"transit_id"`
	Status    string        `json:"status"`
	Category  string        `json:"category"`
	DateTime  string        `json:"date_time"`
	Distance  string        `json:"distance"`
	Price     *domain.Money `json:"price,omitempty"`
}

// DriverReportResponse is the HTTP response for a driver report.
type DriverReportResponse struct {
	DriverID       string                      `json:"driver_id"`
	LastDays       int                         `json:"last_days"`
	From           string                      `json:"from"`
	To             string                      `json:"to"`
	Transits       []DriverReportEntryResponse `json:"transits"`
	CompletedCount int                         `json:"completed_count"`
	TotalEarnings  domain.Money                `json:"total_earnings"`
}

// GetReport handles GET /driverreport/:driverId?lastDays=N
func (h *DriverReportHandler) GetReport(c *gin.Context) {
	lastDays := service.DefaultReportDays
	if raw := c.Query("lastDays"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, service.ErrInvalidLookback)
			return
		}
		lastDays = n
	}

	report, err := h.reportService.CreateReport(c.Request.Context(), c.Param("driverId"), lastDays)
	if err != nil {
		respondError(c, err)
		return
	}

	response := DriverReportResponse{
		DriverID:       report.DriverID,
		LastDays:       report.LastDays,
		From:           formatTime(report.From),
		To:             formatTime(report.To),
		Transits:       make([]DriverReportEntryResponse, 0, len(report.Transits)),
		CompletedCount: report.CompletedCount,
		TotalEarnings:  report.TotalEarnings,
	}
	for _, e := range report.Transits {
		distance, _ := e.Distance.PrintIn("km")
		response.Transits = append(response.Transits, DriverReportEntryResponse{
			TransitID: e.TransitID,
			Status:    string(e.Status),
			Category:  string(e.Category),
			DateTime:  formatTime(e.DateTime),
			Distance:  distance,
			Price:     e.Price,
		})
	}

	respondJSON(c, http.StatusOK, response)
}
