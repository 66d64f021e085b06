package enums

import "fmt"

// AuditAction labels what a recorded audit entry describes.
type AuditAction string

const (
	AuditActionCreate          AuditAction = "CREATE"
	AuditActionUpdate          AuditAction = "UPDATE"
	AuditActionDelete          AuditAction = "DELETE"
	AuditActionSubmitApproval  AuditAction = "SUBMIT_APPROVAL"
	AuditActionApprove         AuditAction = "APPROVE"
	AuditActionReject          AuditAction = "REJECT"
	AuditActionSendToVendor    AuditAction = "SEND_TO_VENDOR"
	AuditActionDeliver         AuditAction = "DELIVER"
	AuditActionRecall          AuditAction = "RECALL"
	AuditActionResubmit        AuditAction = "RESUBMIT"
	AuditActionStockAdjustment AuditAction = "STOCK_ADJUSTMENT"
	AuditActionTransfer        AuditAction = "TRANSFER"
	AuditActionImport          AuditAction = "IMPORT"
)

var validAuditActions = []AuditAction{
	AuditActionCreate,
	AuditActionUpdate,
	AuditActionDelete,
	AuditActionSubmitApproval,
	AuditActionApprove,
	AuditActionReject,
	AuditActionSendToVendor,
	AuditActionDeliver,
	AuditActionRecall,
	AuditActionResubmit,
	AuditActionStockAdjustment,
	AuditActionTransfer,
	AuditActionImport,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}
