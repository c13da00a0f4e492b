package enums

import "testing"

func TestParseMetalType(t *testing.T) {
	got, err := ParseMetalType("white_gold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MetalTypeWhiteGold {
		t.Fatalf("expected white_gold, got %s", got)
	}
	if _, err := ParseMetalType("bronze"); err == nil {
		t.Fatal("expected error for unknown metal")
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	if !OrderStatusShipped.IsValid() {
		t.Fatal("shipped should be valid")
	}
	if OrderStatus("lost").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestParsePaymentMethodRejectsACH(t *testing.T) {
	if _, err := ParsePaymentMethod("ach"); err == nil {
		t.Fatal("ach is not offered by the storefront")
	}
	if pm, err := ParsePaymentMethod("transfer"); err != nil || pm != PaymentMethodTransfer {
		t.Fatalf("expected transfer, got %q err=%v", pm, err)
	}
}

func TestReconcilePolicyAndStorageDriver(t *testing.T) {
	if p, err := ParseReconcilePolicy("sequence"); err != nil || p != ReconcileSequence {
		t.Fatalf("expected sequence policy, got %q err=%v", p, err)
	}
	if StorageDriver("etcd").IsValid() {
		t.Fatal("etcd is not a supported storage driver")
	}
}

func TestOrderStatusIsOpen(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		if !status.IsOpen() {
			t.Fatalf("%s should be open", status)
		}
	}
	if OrderStatusDelivered.IsOpen() || OrderStatusCancelled.IsOpen() {
		t.Fatal("delivered and cancelled orders are closed")
	}
}
