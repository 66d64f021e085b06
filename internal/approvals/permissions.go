package approvals

import "github.com/stockroomhq/stockroom-backend/pkg/enums"

type transition struct {
	from enums.PurchaseOrderStatus
	to   enums.PurchaseOrderStatus
}

// workflowPermissions is the static role gate for every legal transition.
// A transition absent from this table is illegal for everyone.
var workflowPermissions = map[transition][]enums.UserRole{
	{enums.PurchaseOrderStatusDraft, enums.PurchaseOrderStatusPendingApproval}: {
		enums.UserRoleAdmin, enums.UserRoleManager,
	},
	{enums.PurchaseOrderStatusPendingApproval, enums.PurchaseOrderStatusApproved}: {
		enums.UserRoleAdmin,
	},
	{enums.PurchaseOrderStatusPendingApproval, enums.PurchaseOrderStatusRejected}: {
		enums.UserRoleAdmin,
	},
	{enums.PurchaseOrderStatusPendingApproval, enums.PurchaseOrderStatusDraft}: {
		enums.UserRoleAdmin, enums.UserRoleManager,
	},
	{enums.PurchaseOrderStatusApproved, enums.PurchaseOrderStatusSentToVendor}: {
		enums.UserRoleAdmin, enums.UserRoleManager,
	},
	{enums.PurchaseOrderStatusSentToVendor, enums.PurchaseOrderStatusDelivered}: {
		enums.UserRoleAdmin, enums.UserRoleManager,
	},
	{enums.PurchaseOrderStatusRejected, enums.PurchaseOrderStatusDraft}: {
		enums.UserRoleAdmin, enums.UserRoleManager,
	},
}

// Allowed reports whether role may move an order from one status to another.
func Allowed(role enums.UserRole, from, to enums.PurchaseOrderStatus) bool {
	roles, ok := workflowPermissions[transition{from: from, to: to}]
	if !ok {
		return false
	}
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// TransitionExists reports whether any role may perform the transition.
func TransitionExists(from, to enums.PurchaseOrderStatus) bool {
	_, ok := workflowPermissions[transition{from: from, to: to}]
	return ok
}
