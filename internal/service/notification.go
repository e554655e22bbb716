package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cabs/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTransitCreated   NotificationType = "TRANSIT_CREATED"
	NotificationTransitEstimated NotificationType = "TRANSIT_ESTIMATED"
	NotificationTransitCompleted NotificationType = "TRANSIT_COMPLETED"
	NotificationTransitCancelled NotificationType = "TRANSIT_CANCELLED"
	NotificationReceiptReady     NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string // client or driver ID
	Title       string
	Message     string
	Data        map[string]any
	CreatedAt   time.Time
}

// NotificationService delivers notifications to clients and drivers.
// Delivery is currently a structured log line per notification.
type NotificationService struct {
	logger *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{logger: logger}
}

// NotifyTransitCreated tells the client their transit was registered.
func (s *NotificationService) NotifyTransitCreated(ctx context.Context, transit *domain.Transit) error {
	return s.send(ctx, Notification{
		Type:        NotificationTransitCreated,
		RecipientID: transit.ClientID,
		Title:       "Transit Created",
		Message:     "Your transit has been registered.",
		Data: map[string]any{
			"transit_id": transit.ID,
			"date_time":  transit.DateTime,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTransitEstimated sends the client a price estimate.
func (s *NotificationService) NotifyTransitEstimated(ctx context.Context, transit *domain.Transit, estimate domain.Money) error {
	return s.send(ctx, Notification{
		Type:        NotificationTransitEstimated,
		RecipientID: transit.ClientID,
		Title:       "Price Estimate",
		Message:     fmt.Sprintf("Your transit is estimated at %s.", estimate),
		Data: map[string]any{
			"transit_id": transit.ID,
			"estimate":   estimate.String(),
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTransitCompleted tells the client and the driver the final price.
func (s *NotificationService) NotifyTransitCompleted(ctx context.Context, transit *domain.Transit, price domain.Money) error {
	recipients := []string{transit.ClientID}
	if transit.DriverID != "" {
		recipients = append(recipients, transit.DriverID)
	}

	for _, recipientID := range recipients {
		if err := s.send(ctx, Notification{
			Type:        NotificationTransitCompleted,
			RecipientID: recipientID,
			Title:       "Transit Completed",
			Message:     fmt.Sprintf("Transit completed. Final price: %s.", price),
			Data: map[string]any{
				"transit_id": transit.ID,
				"price":      price.String(),
			},
			CreatedAt: time.Now(),
		}); err != nil {
			return err
		}
	}
	return nil
}

// NotifyTransitCancelled tells the client the transit was cancelled.
func (s *NotificationService) NotifyTransitCancelled(ctx context.Context, transit *domain.Transit) error {
	message := "Your transit has been cancelled."
	if transit.CancelReason != "" {
		message = fmt.Sprintf("Your transit has been cancelled: %s", transit.CancelReason)
	}

	return s.send(ctx, Notification{
		Type:        NotificationTransitCancelled,
		RecipientID: transit.ClientID,
		Title:       "Transit Cancelled",
		Message:     message,
		Data: map[string]any{
			"transit_id": transit.ID,
			"reason":     transit.CancelReason,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyReceiptReady tells the client a receipt is available.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.ClientID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Your receipt for %s is ready.", receipt.Total),
		Data: map[string]any{
			"receipt_id": receipt.ID,
			"transit_id": receipt.TransitID,
		},
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) send(_ context.Context, n Notification) error {
	s.logger.Info("notification sent",
		zap.String("type", string(n.Type)),
		zap.String("recipient_id", n.RecipientID),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
		zap.Any("data", n.Data),
	)
	return nil
}
