package enums

import "fmt"

// PurchaseOrderStatus tracks the approval lifecycle of a purchase order.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "draft"
	PurchaseOrderStatusPendingApproval PurchaseOrderStatus = "pending_approval"
	PurchaseOrderStatusApproved        PurchaseOrderStatus = "approved"
	PurchaseOrderStatusRejected        PurchaseOrderStatus = "rejected"
	PurchaseOrderStatusSentToVendor    PurchaseOrderStatus = "sent_to_vendor"
	PurchaseOrderStatusDelivered       PurchaseOrderStatus = "delivered"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusDraft,
	PurchaseOrderStatusPendingApproval,
	PurchaseOrderStatusApproved,
	PurchaseOrderStatusRejected,
	PurchaseOrderStatusSentToVendor,
	PurchaseOrderStatusDelivered,
}

// String implements fmt.Stringer.
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PurchaseOrderStatus.
func (s PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePurchaseOrderStatus converts raw input into a PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
