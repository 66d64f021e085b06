package enums

import "fmt"

// NotificationType labels an in-app notification row.
type NotificationType string

const (
	NotificationTypeApprovalRequest NotificationType = "approval_request"
	NotificationTypeOrderApproved   NotificationType = "order_approved"
	NotificationTypeOrderRejected   NotificationType = "order_rejected"
	NotificationTypeOrderSent       NotificationType = "order_sent"
	NotificationTypeOrderDelivered  NotificationType = "order_delivered"
	NotificationTypeLowStock        NotificationType = "low_stock"
	NotificationTypeImportFinished  NotificationType = "import_finished"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeApprovalRequest,
	NotificationTypeOrderApproved,
	NotificationTypeOrderRejected,
	NotificationTypeOrderSent,
	NotificationTypeOrderDelivered,
	NotificationTypeLowStock,
	NotificationTypeImportFinished,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
