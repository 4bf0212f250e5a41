package domain

import "time"

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "SUCCESS"
	NotificationError   NotificationLevel = "ERROR"
	NotificationInfo    NotificationLevel = "INFO"
)

// Notification is a one-shot user-facing message, shown by the UI as a toast.
type Notification struct {
	ID        int64             `json:"id"`
	Recipient string            `json:"recipient"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"is_read"`
	CreatedOn time.Time         `json:"created_on"`
}
