package approvals

import (
	"testing"
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

func TestComputeLeadTimesNilUntilEndpointExists(t *testing.T) {
	ordered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	submitted := ordered.Add(24 * time.Hour)
	order := models.PurchaseOrder{CreatedAt: ordered, SubmittedAt: &submitted}

	metrics := computeLeadTimes(order)
	if metrics.ApprovalDays != nil {
		t.Fatal("approval_days must be nil without approved_at")
	}
	if metrics.TotalDays != nil {
		t.Fatal("total_days must be nil without delivered_at")
	}
	if metrics.VarianceDays != nil {
		t.Fatal("variance_days must be nil without expected_date")
	}
}

func TestComputeLeadTimesAnchorAtOrderDate(t *testing.T) {
	ordered := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	submitted := ordered.Add(24 * time.Hour)
	approved := ordered.Add(48 * time.Hour)

	order := models.PurchaseOrder{
		CreatedAt:   ordered,
		SubmittedAt: &submitted,
		ApprovedAt:  &approved,
	}

	metrics := computeLeadTimes(order)
	if metrics.ApprovalDays == nil || *metrics.ApprovalDays != 2 {
		t.Fatalf("approval_days must count from the order date, got %v", metrics.ApprovalDays)
	}
}

func TestComputeLeadTimesWholeDays(t *testing.T) {
	ordered := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	submitted := ordered.Add(24 * time.Hour)
	approved := ordered.Add(49 * time.Hour)  // 2 days and an hour after ordering
	sent := approved.Add(24 * time.Hour)     // 1 day
	delivered := sent.Add(96 * time.Hour)    // 4 days
	expected := ordered.Add(120 * time.Hour) // delivered 49h late

	order := models.PurchaseOrder{
		CreatedAt:    ordered,
		SubmittedAt:  &submitted,
		ApprovedAt:   &approved,
		SentAt:       &sent,
		DeliveredAt:  &delivered,
		ExpectedDate: &expected,
	}

	metrics := computeLeadTimes(order)
	assertDays := func(name string, got *int, want int) {
		t.Helper()
		if got == nil {
			t.Fatalf("%s is nil", name)
		}
		if *got != want {
			t.Fatalf("%s = %d, want %d", name, *got, want)
		}
	}
	assertDays("approval_days", metrics.ApprovalDays, 2)
	assertDays("send_days", metrics.SendDays, 1)
	assertDays("delivery_days", metrics.DeliveryDays, 4)
	assertDays("total_days", metrics.TotalDays, 7)
	assertDays("variance_days", metrics.VarianceDays, 2)
}
