package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rental-mngt-admin/internal/domain"
	"rental-mngt-admin/internal/logger"
)

// mailSender is the part of the SendGrid client the service uses.
type mailSender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type emailService struct {
	sender   mailSender
	from     string
	fromName string
}

// NewEmailService returns a SendGrid-backed service. Without an API key
// messages are only logged.
func NewEmailService(apiKey, from, fromName string) EmailService {
	s := &emailService{from: from, fromName: fromName}
	if apiKey != "" {
		s.sender = sendgrid.NewSendClient(apiKey)
	}
	return s
}

func (s *emailService) SendMaintenanceReminder(ctx context.Context, to []string, machines []domain.Machine) error {
	if len(machines) == 0 {
		return nil
	}
	subject := fmt.Sprintf("Maintenance due for %d machine(s)", len(machines))

	var text, body strings.Builder
	text.WriteString("The following machines are due for maintenance:\n\n")
	body.WriteString("<html><body><h2>Upcoming maintenance</h2><ul>")
	for _, m := range machines {
		due := "unknown"
		if m.NextMaintenance != nil {
			due = m.NextMaintenance.Format(time.DateOnly)
		}
		fmt.Fprintf(&text, "- %s: %s\n", m.Name, due)
		fmt.Fprintf(&body, "<li><strong>%s</strong>: %s</li>", html.EscapeString(m.Name), due)
	}
	body.WriteString("</ul></body></html>")

	return s.send(ctx, to, subject, text.String(), body.String())
}

func (s *emailService) SendUnpaidRentalsDigest(ctx context.Context, to []string, rentals []domain.RentalWithMachine) error {
	if len(rentals) == 0 {
		return nil
	}
	subject := fmt.Sprintf("%d unpaid rental(s) past their return date", len(rentals))

	var text, body strings.Builder
	text.WriteString("The following rentals have been returned but are not paid:\n\n")
	body.WriteString("<html><body><h2>Unpaid rentals</h2><ul>")
	for _, r := range rentals {
		returned := ""
		if r.ReturnDate != nil {
			returned = r.ReturnDate.Format(time.DateOnly)
		}
		fmt.Fprintf(&text, "- %s, %s (%s), returned %s\n", r.MachineRented.Name, r.ClientName(), r.ClientEmail, returned)
		fmt.Fprintf(&body, "<li><strong>%s</strong>: %s (%s), returned %s</li>",
			html.EscapeString(r.MachineRented.Name), html.EscapeString(r.ClientName()), html.EscapeString(r.ClientEmail), returned)
	}
	body.WriteString("</ul></body></html>")

	return s.send(ctx, to, subject, text.String(), body.String())
}

func (s *emailService) send(ctx context.Context, to []string, subject, plainText, htmlContent string) error {
	if len(to) == 0 {
		logger.WarnContext(ctx, "No recipients, e-mail not sent", "subject", subject)
		return nil
	}
	if s.sender == nil {
		logger.InfoContext(ctx, "SendGrid disabled, e-mail logged only", "to", to, "subject", subject)
		return nil
	}

	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(s.fromName, s.from))
	message.Subject = subject
	p := mail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(mail.NewEmail("", addr))
	}
	message.AddPersonalizations(p)
	message.AddContent(mail.NewContent("text/plain", plainText), mail.NewContent("text/html", htmlContent))

	start := time.Now()
	logger.ExternalServiceCall(ctx, "sendgrid", "send", "subject", subject, "recipients", len(to))
	response, err := s.sender.SendWithContext(ctx, message)
	logger.ExternalServiceResult(ctx, "sendgrid", "send", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
