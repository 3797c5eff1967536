// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/uniform-backend/internal/config"
	"github.com/javajoker/uniform-backend/internal/events"
	"github.com/javajoker/uniform-backend/internal/models"
)

// NotificationService consumes bus events and turns them into emails:
// order receipts and void notices to buyers, restock notices to buyers
// with open pre-orders, low-stock alerts to the ops mailbox.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// HandleEvent is the bus subscription entry point. Failures are logged
// and dropped; notification delivery never feeds back into the ledger.
func (s *NotificationService) HandleEvent(e events.Event) {
	var err error
	switch ev := e.(type) {
	case events.OrderCreated:
		err = s.sendOrderReceipt(ev)
	case events.OrderStatusChanged:
		err = s.sendStatusNotice(ev)
	case events.StockChanged:
		if ev.Restocked {
			err = s.notifyPreOrderBuyers(ev)
		}
	case events.LowStock:
		err = s.sendLowStockAlert(ev)
	}
	if err != nil {
		logrus.WithError(err).WithField("event", e.Name()).Warn("Failed to send notification")
	}
}

func (s *NotificationService) sendOrderReceipt(ev events.OrderCreated) error {
	tmpl := s.getEmailTemplate("order_receipt")

	data := map[string]interface{}{
		"OrderNumber": ev.OrderNumber,
		"Kind":        string(ev.Kind),
		"Items":       ev.Items,
		"Total":       ev.Total.StringFixed(2),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, ev.OrderID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := "Order Received - " + ev.OrderNumber
	if ev.Kind == models.OrderKindPreOrder {
		subject = "Pre-Order Received - " + ev.OrderNumber
	}
	return s.sendEmail(ev.BuyerEmail, subject, body)
}

func (s *NotificationService) sendStatusNotice(ev events.OrderStatusChanged) error {
	var tmplName, subject string
	switch ev.To {
	case models.OrderStatusVoided:
		tmplName = "order_voided"
		subject = "Order Voided - " + ev.OrderNumber
	case models.OrderStatusPaid:
		tmplName = "order_paid"
		subject = "Payment Recorded - " + ev.OrderNumber
	case models.OrderStatusClaimed:
		tmplName = "order_claimed"
		subject = "Order Claimed - " + ev.OrderNumber
	default:
		return nil
	}

	tmpl := s.getEmailTemplate(tmplName)
	data := map[string]interface{}{
		"OrderNumber": ev.OrderNumber,
		"From":        string(ev.From),
		"To":          string(ev.To),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, ev.OrderID),
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.sendEmail(ev.BuyerEmail, subject, body)
}

// notifyPreOrderBuyers emails every buyer holding an active pre-order for
// the restocked item so they can ask staff to convert it.
func (s *NotificationService) notifyPreOrderBuyers(ev events.StockChanged) error {
	var orders []models.Order
	if err := s.db.
		Where("kind = ? AND status IN ?", models.OrderKindPreOrder,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusPaid}).
		Where("items @> ?", fmt.Sprintf(`[{"name":%q}]`, ev.ItemName)).
		Find(&orders).Error; err != nil {
		return classifyStorageErr(err)
	}

	tmpl := s.getEmailTemplate("restock")
	for _, order := range orders {
		data := map[string]interface{}{
			"ItemName":    ev.ItemName,
			"Size":        ev.Size,
			"OrderNumber": order.OrderNumber,
			"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
		}
		body, err := s.renderTemplate(tmpl.Body, data)
		if err != nil {
			return fmt.Errorf("failed to render email template: %w", err)
		}
		if err := s.sendEmail(order.BuyerEmail, "Back in Stock - "+ev.ItemName, body); err != nil {
			logrus.WithError(err).WithField("order", order.OrderNumber).Warn("Failed to send restock notice")
		}
	}
	return nil
}

func (s *NotificationService) sendLowStockAlert(ev events.LowStock) error {
	tmpl := s.getEmailTemplate("low_stock")

	data := map[string]interface{}{
		"ItemName":     ev.ItemName,
		"Level":        string(ev.Level),
		"Size":         ev.Size,
		"Stock":        ev.Stock,
		"ReorderLevel": ev.ReorderLevel,
	}

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}
	return s.sendEmail(s.config.Email.OpsEmail, "Low Stock - "+ev.ItemName, body)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped, SMTP not configured")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	// In a real implementation, these would be loaded from files or database
	templates := map[string]EmailTemplate{
		"order_receipt": {
			Subject: "Order Received",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Order {{.OrderNumber}}</h2>
	<p>We received your {{.Kind}} order.</p>
	<ul>
	{{range .Items}}<li>{{.Name}} {{.Size}} x{{.Quantity}}</li>{{end}}
	</ul>
	<p>Total: {{.Total}}</p>
	<a href="{{.OrderURL}}">View Order</a>
	<p>Please confirm pickup within the claim window, or the order will be voided.</p>
</body>
</html>`,
		},
		"order_voided": {
			Subject: "Order Voided",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Order {{.OrderNumber}} was voided</h2>
	<p>Your order was not confirmed within the claim window and has been voided. Its stock has been released.</p>
	<p>You are welcome to place a new order.</p>
</body>
</html>`,
		},
		"restock": {
			Subject: "Back in Stock",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>{{.ItemName}} is back in stock</h2>
	<p>Size {{.Size}} of {{.ItemName}} has been restocked. Your pre-order {{.OrderNumber}} can now be fulfilled; please visit the store or contact staff.</p>
	<a href="{{.OrderURL}}">View Pre-Order</a>
</body>
</html>`,
		},
		"low_stock": {
			Subject: "Low Stock",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Low stock: {{.ItemName}}</h2>
	<p>{{.ItemName}} ({{.Level}}, size {{.Size}}) is down to {{.Stock}} units, at or below the reorder level of {{.ReorderLevel}}.</p>
</body>
</html>`,
		},
	}

	if template, exists := templates[templateType]; exists {
		return template
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
