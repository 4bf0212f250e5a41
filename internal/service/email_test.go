package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-mngt-admin/internal/domain"
)

type fakeSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeSender) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	if f.err != nil {
		return nil, f.err
	}
	if f.response != nil {
		return f.response, nil
	}
	return &rest.Response{StatusCode: 202}, nil
}

func TestSendMaintenanceReminder(t *testing.T) {
	sender := &fakeSender{}
	svc := &emailService{sender: sender, from: "noreply@example.com", fromName: "Rental admin"}

	err := svc.SendMaintenanceReminder(context.Background(), []string{"ops@example.com", "boss@example.com"}, []domain.Machine{
		{Name: "Mini <excavator>", NextMaintenance: datePtr("2024-06-03T00:00:00Z")},
		{Name: "Plate compactor"},
	})
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "Maintenance due for 2 machine(s)", msg.Subject)
	assert.Equal(t, "noreply@example.com", msg.From.Address)
	require.Len(t, msg.Personalizations, 1)
	assert.Len(t, msg.Personalizations[0].To, 2)
	require.Len(t, msg.Content, 2)
	assert.Contains(t, msg.Content[0].Value, "Mini <excavator>: 2024-06-03")
	assert.Contains(t, msg.Content[1].Value, "Mini &lt;excavator&gt;")
	assert.Contains(t, msg.Content[0].Value, "Plate compactor: unknown")
}

func TestSendUnpaidRentalsDigest(t *testing.T) {
	sender := &fakeSender{}
	svc := &emailService{sender: sender, from: "noreply@example.com"}

	rental := domain.RentalWithMachine{
		Rental: domain.Rental{
			ClientFirstName: "Jeanne",
			ClientLastName:  "Martin",
			ClientEmail:     "jeanne@example.com",
			ReturnDate:      datePtr("2024-05-03T00:00:00Z"),
		},
		MachineRented: domain.MachineSummary{Name: "Mini excavator"},
	}
	require.NoError(t, svc.SendUnpaidRentalsDigest(context.Background(), []string{"ops@example.com"}, []domain.RentalWithMachine{rental}))

	require.Len(t, sender.sent, 1)
	assert.True(t, strings.HasPrefix(sender.sent[0].Subject, "1 unpaid rental(s)"))
	assert.Contains(t, sender.sent[0].Content[0].Value, "Mini excavator, Jeanne Martin (jeanne@example.com), returned 2024-05-03")
}

func TestEmail_NothingToSend(t *testing.T) {
	sender := &fakeSender{}
	svc := &emailService{sender: sender}

	require.NoError(t, svc.SendMaintenanceReminder(context.Background(), []string{"ops@example.com"}, nil))
	require.NoError(t, svc.SendUnpaidRentalsDigest(context.Background(), nil, []domain.RentalWithMachine{{}}))
	assert.Empty(t, sender.sent)

	// No API key: logged only.
	disabled := NewEmailService("", "noreply@example.com", "")
	assert.NoError(t, disabled.SendMaintenanceReminder(context.Background(), []string{"ops@example.com"}, []domain.Machine{{Name: "x"}}))
}

func TestEmail_SendErrors(t *testing.T) {
	machines := []domain.Machine{{Name: "x"}}

	failing := &emailService{sender: &fakeSender{err: errors.New("timeout")}}
	assert.ErrorContains(t, failing.SendMaintenanceReminder(context.Background(), []string{"a@example.com"}, machines), "timeout")

	rejected := &emailService{sender: &fakeSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}}
	assert.ErrorContains(t, rejected.SendMaintenanceReminder(context.Background(), []string{"a@example.com"}, machines), "status 401")
}
