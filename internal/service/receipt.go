package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabs/internal/domain"
	"cabs/internal/pricing"
)

// ReceiptService handles receipt generation.
type ReceiptService struct {
	notificationService *NotificationService
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(notificationService *NotificationService) *ReceiptService {
	return &ReceiptService{
		notificationService: notificationService,
	}
}

// GenerateReceipt builds the receipt for a completed transit from its final quote.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, transit *domain.Transit, quote pricing.Quote) (*domain.Receipt, error) {
	if transit == nil || transit.ID == "" {
		return nil, ErrInvalidTransitID
	}
	if transit.Status != domain.TransitStatusCompleted {
		return nil, domain.ErrInvalidState
	}

	receipt := &domain.Receipt{
		ID:          uuid.New().String(),
		TransitID:   transit.ID,
		ClientID:    transit.ClientID,
		DriverID:    transit.DriverID,
		CarClass:    transit.CarClass,
		Category:    string(quote.Category),
		Distance:    transit.Distance,
		BaseFee:     quote.Charge.BaseFee,
		DistanceFee: quote.Charge.DistanceFee,
		Total:       quote.Total,
		DateTime:    transit.DateTime,
		CompletedAt: transit.CompletedAt,
		CreatedAt:   time.Now(),
	}

	if s.notificationService != nil {
		_ = s.notificationService.NotifyReceiptReady(ctx, receipt)
	}

	return receipt, nil
}

// FormatReceipt formats the receipt as plain text (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	distance, _ := receipt.Distance.PrintIn("km")

	var b strings.Builder
	b.WriteString("=====================================\n")
	b.WriteString("           TRANSIT RECEIPT\n")
	b.WriteString("=====================================\n")
	b.WriteString("Receipt ID: " + receipt.ID + "\n")
	b.WriteString("Transit ID: " + receipt.TransitID + "\n")
	b.WriteString("Date:       " + receipt.DateTime.Format("Jan 02, 2006 15:04") + "\n")
	b.WriteString("\nTRANSIT DETAILS\n")
	b.WriteString("-------------------------------------\n")
	b.WriteString("Car class:  " + string(receipt.CarClass) + "\n")
	b.WriteString("Tariff:     " + receipt.Category + "\n")
	b.WriteString("Distance:   " + distance + "\n")
	b.WriteString("\nFARE BREAKDOWN\n")
	b.WriteString("-------------------------------------\n")
	b.WriteString("Base fee:     " + receipt.BaseFee.String() + "\n")
	b.WriteString("Distance fee: " + receipt.DistanceFee.String() + "\n")
	b.WriteString("-------------------------------------\n")
	b.WriteString("TOTAL:        " + receipt.Total.String() + "\n")
	b.WriteString("=====================================\n")
	return b.String()
}
