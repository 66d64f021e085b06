package notifications

import "fmt"

const mailSignature = "Best regards,\nStockroom Inventory Management"

func approvalRequestMail(poNumber, supplierName, totalAmount, approverName string) (string, string) {
	subject := fmt.Sprintf("Purchase Order Approval Required - %s", poNumber)
	body := fmt.Sprintf(`Dear %s,

A new purchase order requires your approval:

Purchase Order Number: %s
Supplier: %s
Total Amount: $%s

Please review and approve or reject this purchase order in the system.

%s
`, approverName, poNumber, supplierName, totalAmount, mailSignature)
	return subject, body
}

func approvalGrantedMail(poNumber, supplierName, totalAmount, requesterName string) (string, string) {
	subject := fmt.Sprintf("Purchase Order Approved - %s", poNumber)
	body := fmt.Sprintf(`Dear %s,

Your purchase order has been approved:

Purchase Order Number: %s
Supplier: %s
Total Amount: $%s

The purchase order is now ready to be sent to the vendor.

%s
`, requesterName, poNumber, supplierName, totalAmount, mailSignature)
	return subject, body
}

func approvalRejectedMail(poNumber, supplierName, totalAmount, requesterName, comments string) (string, string) {
	if comments == "" {
		comments = "No comments provided"
	}
	subject := fmt.Sprintf("Purchase Order Rejected - %s", poNumber)
	body := fmt.Sprintf(`Dear %s,

Your purchase order has been rejected:

Purchase Order Number: %s
Supplier: %s
Total Amount: $%s

Comments: %s

Please review the feedback and make necessary changes before resubmitting.

%s
`, requesterName, poNumber, supplierName, totalAmount, comments, mailSignature)
	return subject, body
}

func orderSentMail(poNumber, supplierName, totalAmount string) (string, string) {
	subject := fmt.Sprintf("Purchase Order - %s", poNumber)
	body := fmt.Sprintf(`Dear %s,

We would like to place the following purchase order:

Purchase Order Number: %s
Total Amount: $%s

Please confirm receipt and provide an estimated delivery date.

%s
`, supplierName, poNumber, totalAmount, mailSignature)
	return subject, body
}
