package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {

	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{STATUS_PENDING, STATUS_PROCESSING, true},
		{STATUS_PENDING, STATUS_EXPIRED, true},
		{STATUS_PENDING, STATUS_CANCELLED, true},
		{STATUS_PENDING, STATUS_FAILED, true},
		{STATUS_PENDING, STATUS_CONFIRMED, false},
		{STATUS_PENDING, STATUS_REFUNDED, false},

		{STATUS_PROCESSING, STATUS_CONFIRMED, true},
		{STATUS_PROCESSING, STATUS_FAILED, true},
		{STATUS_PROCESSING, STATUS_EXPIRED, true},
		{STATUS_PROCESSING, STATUS_CANCELLED, true},
		{STATUS_PROCESSING, STATUS_PENDING, false},

		// confirmed is not terminal, a merchant cancel still applies
		{STATUS_CONFIRMED, STATUS_REFUNDED, true},
		{STATUS_CONFIRMED, STATUS_PARTIALLY_REFUNDED, true},
		{STATUS_CONFIRMED, STATUS_CANCELLED, true},
		{STATUS_CONFIRMED, STATUS_FAILED, false},

		{STATUS_PARTIALLY_REFUNDED, STATUS_REFUNDED, true},
		{STATUS_PARTIALLY_REFUNDED, STATUS_PARTIALLY_REFUNDED, true},
		{STATUS_PARTIALLY_REFUNDED, STATUS_CANCELLED, true},
		{STATUS_PARTIALLY_REFUNDED, STATUS_CONFIRMED, false},

		// terminal statuses never move
		{STATUS_FAILED, STATUS_PENDING, false},
		{STATUS_EXPIRED, STATUS_PROCESSING, false},
		{STATUS_CANCELLED, STATUS_CONFIRMED, false},
		{STATUS_REFUNDED, STATUS_PARTIALLY_REFUNDED, false},
	}

	for _, x := range tests {
		if got := x.from.CanTransition(x.to); got != x.allowed {
			t.Fatalf("%s -> %s = %v, want %v", x.from.ToString(), x.to.ToString(), got, x.allowed)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{STATUS_FAILED, STATUS_EXPIRED, STATUS_CANCELLED, STATUS_REFUNDED} {
		if !s.IsTerminal() {
			t.Fatalf("%s must be terminal", s.ToString())
		}
	}
	for _, s := range []Status{STATUS_PENDING, STATUS_PROCESSING, STATUS_CONFIRMED, STATUS_PARTIALLY_REFUNDED} {
		if s.IsTerminal() {
			t.Fatalf("%s must not be terminal", s.ToString())
		}
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now().Unix()

	p := &Payments{Status: STATUS_PENDING, EndTimestamp: now - 10}
	if !p.IsExpired(now) {
		t.Fatal("pending payment past end timestamp must be expired")
	}

	p.EndTimestamp = now + 10
	if p.IsExpired(now) {
		t.Fatal("payment before end timestamp must not be expired")
	}

	// a settled payment never expires
	p.Status = STATUS_CONFIRMED
	p.EndTimestamp = now - 10
	if p.IsExpired(now) {
		t.Fatal("confirmed payment must not expire")
	}
}

func TestRefundRemaining(t *testing.T) {
	p := &Payments{
		PaymentAmount:  decimal.NewFromInt(10),
		RefundedAmount: decimal.NewFromInt(3),
	}

	if !p.RefundRemaining().Equal(decimal.NewFromInt(7)) {
		t.Fatalf("remaining = %s, want 7", p.RefundRemaining())
	}
}

func TestStatusEvent(t *testing.T) {
	tests := []struct {
		status Status
		event  string
	}{
		{STATUS_CONFIRMED, EVENT_PAYMENT_CONFIRMED},
		{STATUS_FAILED, EVENT_PAYMENT_FAILED},
		{STATUS_EXPIRED, EVENT_PAYMENT_EXPIRED},
		{STATUS_CANCELLED, EVENT_PAYMENT_CANCELLED},
		{STATUS_REFUNDED, EVENT_PAYMENT_REFUNDED},
		{STATUS_PARTIALLY_REFUNDED, EVENT_PAYMENT_REFUNDED},
		{STATUS_PENDING, ""},
	}

	for _, x := range tests {
		if got := StatusEvent(x.status); got != x.event {
			t.Fatalf("%s: event = %q, want %q", x.status.ToString(), got, x.event)
		}
	}
}

func TestStrToStatus(t *testing.T) {
	for i, name := range Statuses {
		if StrToStatus(name) != Status(i) {
			t.Fatalf("round trip failed for %s", name)
		}
	}
	if StrToStatus("bogus") != STATUS_PENDING {
		t.Fatal("unknown status must map to pending")
	}
}
