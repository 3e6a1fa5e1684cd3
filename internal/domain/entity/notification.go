package entity

// NotificationType defines the type of the notification
type NotificationType string

const (
	PriceDropAlert   NotificationType = "price_drop_alert"
	CartConfirmation NotificationType = "cart_confirmation"
)

// Notification is a fully rendered outbound message. Templates
// produce it; the notifier only transports it.
type Notification struct {
	Type    NotificationType
	To      string
	Subject string
	Body    string
}
