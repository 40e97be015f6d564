package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/buyzaar/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/buyzaar/internal/errors"
	"github.com/aaravmahajanofficial/buyzaar/internal/models"
	repository "github.com/aaravmahajanofficial/buyzaar/internal/repositories"
	"github.com/aaravmahajanofficial/buyzaar/pkg/sendgrid"
	"github.com/google/uuid"
)

type NotificationService interface {
	// SendOrderConfirmation records the notification before sending and marks
	// it sent or failed afterwards.
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) (*models.Notification, error)
}

type notificationService struct {
	repo         repository.NotificationRepository
	emailService sendgrid.EmailService
}

func NewNotificationService(repo repository.NotificationRepository, emailService sendgrid.EmailService) NotificationService {
	return &notificationService{repo: repo, emailService: emailService}
}

func (s *notificationService) SendOrderConfirmation(ctx context.Context, to string, order *models.Order) (*models.Notification, error) {
	logger := middleware.LoggerFromContext(ctx).With(slog.String("orderId", order.ID.String()))

	message := orderConfirmationEmail(to, order)

	notification := &models.Notification{
		ID:        uuid.New(),
		Type:      models.NotificationTypeEmail,
		Recipient: to,
		Subject:   message.Subject,
		Content:   message.Content,
		Status:    models.NotificationStatusPending,
	}

	if err := s.repo.CreateNotification(ctx, notification); err != nil {
		return nil, appErrors.DatabaseError("Failed to create notification record").WithError(err)
	}

	if err := s.emailService.Send(ctx, message); err != nil {
		notification.Status = models.NotificationStatusFailed
		notification.ErrorMessage = err.Error()

		if updateErr := s.repo.UpdateNotificationStatus(ctx, notification.ID, notification.Status, notification.ErrorMessage); updateErr != nil {
			logger.Error("Failed to mark notification as failed", slog.Any("error", updateErr))
		}

		return nil, appErrors.ThirdPartyError("Failed to send email").WithError(err)
	}

	notification.Status = models.NotificationStatusSent

	if err := s.repo.UpdateNotificationStatus(ctx, notification.ID, notification.Status, ""); err != nil {
		return nil, appErrors.DatabaseError("Email sent but failed to update notification status").WithError(err)
	}

	logger.Info("Order confirmation sent", slog.String("notificationId", notification.ID.String()))

	return notification, nil
}

func orderConfirmationEmail(to string, order *models.Order) *models.EmailMessage {
	var text, markup strings.Builder

	fmt.Fprintf(&text, "Thank you for your order %s.\n\n", order.ID)
	markup.WriteString("<p>Thank you for your order <strong>" + order.ID.String() + "</strong>.</p><ul>")

	for _, item := range order.Items {
		subtotal := item.Subtotal()

		fmt.Fprintf(&text, "%d x %s: %s\n", item.Quantity, item.Name, subtotal.StringFixed(2))
		fmt.Fprintf(&markup, "<li>%d &times; %s: %s</li>", item.Quantity, html.EscapeString(item.Name), subtotal.StringFixed(2))
	}

	fmt.Fprintf(&text, "\nTotal: %s\nPayment method: %s\n", order.TotalPrice.StringFixed(2), order.PaymentMethod)
	fmt.Fprintf(&markup, "</ul><p>Total: <strong>%s</strong></p><p>Payment method: %s</p>",
		order.TotalPrice.StringFixed(2), html.EscapeString(string(order.PaymentMethod)))

	return &models.EmailMessage{
		To:          to,
		Subject:     "Your BuyZaar order " + order.ID.String(),
		Content:     text.String(),
		HTMLContent: markup.String(),
	}
}
