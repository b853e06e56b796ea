package domain

import "time"

// NotificationType classifies a notification for display.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is an in-app message shown to the user.
type Notification struct {
	ID        string           `json:"id" yaml:"id"`
	Title     string           `json:"title" yaml:"title"`
	Message   string           `json:"message" yaml:"message"`
	Type      NotificationType `json:"type" yaml:"type"`
	Read      bool             `json:"read" yaml:"read"`
	CreatedAt time.Time        `json:"created_at" yaml:"created_at"`
}
