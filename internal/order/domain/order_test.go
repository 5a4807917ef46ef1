package domain

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func TestCancel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cancellable := []OrderStatus{OrderStatusPending, OrderStatusPaid, OrderStatusProcessing}
	for _, st := range cancellable {
		t.Run(string(st)+" can be cancelled", func(t *testing.T) {
			o := Order{Status: st}
			if err := o.Cancel("changed my mind", now); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.Status != OrderStatusCancelled {
				t.Fatalf("expected CANCELLED, got %s", o.Status)
			}
			if o.CancelReason != "changed my mind" {
				t.Fatalf("expected reason recorded, got %q", o.CancelReason)
			}
			if o.CancelledAt == nil || !o.CancelledAt.Equal(now) {
				t.Fatalf("expected cancelledAt=%v, got %v", now, o.CancelledAt)
			}
		})
	}

	t.Run("shipped rejects with shipped message", func(t *testing.T) {
		o := Order{Status: OrderStatusShipped}
		err := o.Cancel("", now)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if !strings.Contains(err.Error(), "shipped") {
			t.Fatalf("expected shipped message, got %q", err.Error())
		}
		if o.Status != OrderStatusShipped {
			t.Fatalf("order must be unchanged, got %s", o.Status)
		}
	})

	t.Run("cancelled rejects with already cancelled message", func(t *testing.T) {
		o := Order{Status: OrderStatusCancelled}
		err := o.Cancel("", now)
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
		if !strings.Contains(err.Error(), "already cancelled") {
			t.Fatalf("expected already-cancelled message, got %q", err.Error())
		}
	})

	t.Run("refunded rejects", func(t *testing.T) {
		o := Order{Status: OrderStatusRefunded}
		if err := o.Cancel("", now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})
}

func TestNewOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 7, 9, 30, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^ORD-250307-\d{4}$`)

	for i := 0; i < 100; i++ {
		n := NewOrderNumber(now)
		if !pattern.MatchString(n) {
			t.Fatalf("order number %q does not match %s", n, pattern)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	if !OrderStatusPaid.Valid() {
		t.Fatal("PAID should be valid")
	}
	if OrderStatus("UNKNOWN").Valid() {
		t.Fatal("UNKNOWN should be invalid")
	}
}
