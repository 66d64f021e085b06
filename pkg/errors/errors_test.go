package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal metadata, got status %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Wrap(CodeDependency, cause, "publishing import event")

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %q", err.Code())
	}
}

func TestAsFindsTypedErrorInChain(t *testing.T) {
	inner := New(CodeInsufficientStock, "only 3 units at source").WithDetails(map[string]any{"available": 3})
	wrapped := fmt.Errorf("transfer failed: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error in chain")
	}
	if typed.Code() != CodeInsufficientStock {
		t.Fatalf("unexpected code %q", typed.Code())
	}
	if !HasCode(wrapped, CodeInsufficientStock) {
		t.Fatalf("HasCode should match through wrapping")
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatalf("plain errors should not coerce")
	}
	if As(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
