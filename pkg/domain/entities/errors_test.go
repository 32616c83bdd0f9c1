package entities

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_KindMatching(t *testing.T) {
	err := InsufficientStockf("ledger.apply", "insufficient stock for item %d", 7)
	wrapped := fmt.Errorf("settle transfer 3: %w", err)

	if !errors.Is(wrapped, ErrInsufficientStock) {
		t.Error("Expected wrapped error to match ErrInsufficientStock")
	}
	if errors.Is(wrapped, ErrNotFound) {
		t.Error("Expected wrapped error not to match ErrNotFound")
	}
	if KindOf(wrapped) != KindInsufficientStock {
		t.Errorf("Expected kind InsufficientStock, got %s", KindOf(wrapped))
	}
	if err.Error() != "ledger.apply: insufficient stock for item 7" {
		t.Errorf("Unexpected message %q", err.Error())
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("Expected plain errors to classify as internal")
	}
	if KindOf(nil) != KindInternal {
		t.Error("Expected nil to classify as internal")
	}
}
