package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cabs/internal/domain"
	"cabs/internal/pricing"
	"cabs/internal/service"
)

// TransitHandler handles HTTP requests for transits.
type TransitHandler struct {
	transitService *service.TransitService
	receiptService *service.ReceiptService
}

// NewTransitHandler creates a new TransitHandler.
func NewTransitHandler(transitService *service.TransitService, receiptService *service.ReceiptService) *TransitHandler {
	return &TransitHandler{
		transitService: transitService,
		receiptService: receiptService,
	}
}

// CreateTransitRequest is the HTTP request body for creating a transit.
type CreateTransitRequest struct {
	ClientID      string    `json:"client_id"`
	DriverID      string    `json:"driver_id,omitempty"`
	FromAddressID string    `json:"from_address_id"`
	ToAddressID   string    `json:"to_address_id"`
	CarClass      string    `json:"car_class,omitempty"` // ECO, REGULAR, VAN, PREMIUM
	DateTime      time.Time `json:"date_time"`
	DistanceKm    float64   `json:"distance_km"`
}

// CancelTransitRequest is the HTTP request body for cancelling a transit.
type CancelTransitRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TransitResponse is the HTTP response for transit operations.
type TransitResponse struct {
	ID             string        `json:"id"`
	ClientID       string        `json:"client_id"`
	DriverID       string        `json:"driver_id,omitempty"`
	FromAddressID  string        `json:"from_address_id"`
	ToAddressID    string        `json:"to_address_id"`
	CarClass       string        `json:"car_class"`
	Status         string        `json:"status"`
	DateTime       string        `json:"date_time"`
	Distance       string        `json:"distance"`
	DistanceKm     float64       `json:"distance_km"`
	EstimatedPrice *domain.Money `json:"estimated_price,omitempty"`
	Price          *domain.Money `json:"price,omitempty"`
	CompletedAt    string        `json:"completed_at,omitempty"`
	CancelledAt    string        `json:"cancelled_at,omitempty"`
	CancelReason   string        `json:"cancel_reason,omitempty"`
}

// QuoteResponse describes how a price was reached.
type QuoteResponse struct {
	TransitID   string       `json:"transit_id"`
	Category    string       `json:"category"`
	BaseFee     domain.Money `json:"base_fee"`
	DistanceFee domain.Money `json:"distance_fee"`
	Total       domain.Money `json:"total"`
}

// ReceiptInfo contains receipt details in the response.
type ReceiptInfo struct {
	ID          string       `json:"id"`
	Category    string       `json:"category"`
	BaseFee     domain.Money `json:"base_fee"`
	DistanceFee domain.Money `json:"distance_fee"`
	Total       domain.Money `json:"total"`
	Distance    string       `json:"distance"`
	Text        string       `json:"text"`
}

// CompleteTransitResponse is the HTTP response for completing a transit.
type CompleteTransitResponse struct {
	Transit TransitResponse `json:"transit"`
	Quote   QuoteResponse   `json:"quote"`
	Receipt *ReceiptInfo    `json:"receipt,omitempty"`
}

// EstimateResponse is the HTTP response for estimating a transit.
type EstimateResponse struct {
	Transit TransitResponse `json:"transit"`
	Quote   QuoteResponse   `json:"quote"`
}

// CreateTransit handles POST /v1/transits
func (h *TransitHandler) CreateTransit(c *gin.Context) {
	var req CreateTransitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	transit, err := h.transitService.CreateTransit(c.Request.Context(), service.CreateTransitRequest{
		ClientID:      req.ClientID,
		DriverID:      req.DriverID,
		FromAddressID: req.FromAddressID,
		ToAddressID:   req.ToAddressID,
		CarClass:      req.CarClass,
		DateTime:      req.DateTime,
		DistanceKm:    req.DistanceKm,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toTransitResponse(transit))
}

// GetTransit handles GET /v1/transits/:id
func (h *TransitHandler) GetTransit(c *gin.Context) {
	transit, err := h.transitService.GetTransit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

// EstimateCost handles POST /v1/transits/:id/estimate
func (h *TransitHandler) EstimateCost(c *gin.Context) {
	result, err := h.transitService.EstimateCost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimateResponse{
		Transit: toTransitResponse(result.Transit),
		Quote:   toQuoteResponse(result.Transit.ID, result.Quote),
	})
}

// CalculateFinalCost handles GET /v1/transits/:id/final-cost
func (h *TransitHandler) CalculateFinalCost(c *gin.Context) {
	transitID := c.Param("id")

	quote, err := h.transitService.CalculateFinalCost(c.Request.Context(), transitID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toQuoteResponse(transitID, *quote))
}

// CompleteTransit handles POST /v1/transits/:id/complete
func (h *TransitHandler) CompleteTransit(c *gin.Context) {
	result, err := h.transitService.CompleteTransit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := CompleteTransitResponse{
		Transit: toTransitResponse(result.Transit),
		Quote:   toQuoteResponse(result.Transit.ID, result.Quote),
	}

	if result.Receipt != nil {
		distance, _ := result.Receipt.Distance.PrintIn("km")
		response.Receipt = &ReceiptInfo{
			ID:          result.Receipt.ID,
			Category:    result.Receipt.Category,
			BaseFee:     result.Receipt.BaseFee,
			DistanceFee: result.Receipt.DistanceFee,
			Total:       result.Receipt.Total,
			Distance:    distance,
		}
		if h.receiptService != nil {
			response.Receipt.Text = h.receiptService.FormatReceipt(result.Receipt)
		}
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelTransit handles POST /v1/transits/:id/cancel
func (h *TransitHandler) CancelTransit(c *gin.Context) {
	var req CancelTransitRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	transit, err := h.transitService.CancelTransit(c.Request.Context(), service.CancelTransitRequest{
		TransitID: c.Param("id"),
		Reason:    req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toTransitResponse(transit))
}

func toTransitResponse(t *domain.Transit) TransitResponse {
	distance, _ := t.Distance.PrintIn("km")
	return TransitResponse{
		ID:             t.ID,
		ClientID:       t.ClientID,
		DriverID:       t.DriverID,
		FromAddressID:  t.FromAddressID,
		ToAddressID:    t.ToAddressID,
		CarClass:       string(t.CarClass),
		Status:         string(t.Status),
		DateTime:       formatTime(t.DateTime),
		Distance:       distance,
		DistanceKm:     t.Distance.Km(),
		EstimatedPrice: t.EstimatedPrice,
		Price:          t.Price,
		CompletedAt:    formatTime(t.CompletedAt),
		CancelledAt:    formatTime(t.CancelledAt),
		CancelReason:   t.CancelReason,
	}
}

func toQuoteResponse(transitID string, q pricing.Quote) QuoteResponse {
	return QuoteResponse{
		TransitID:   transitID,
		Category:    string(q.Category),
		BaseFee:     q.Charge.BaseFee,
		DistanceFee: q.Charge.DistanceFee,
		Total:       q.Total,
	}
}
