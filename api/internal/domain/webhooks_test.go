package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestEventList(t *testing.T) {
	w := &Webhooks{Events: "payment.created, payment.confirmed ,payment.failed"}

	want := []string{"payment.created", "payment.confirmed", "payment.failed"}
	if !reflect.DeepEqual(w.EventList(), want) {
		t.Fatalf("event list = %v, want %v", w.EventList(), want)
	}

	empty := &Webhooks{}
	if empty.EventList() != nil {
		t.Fatal("empty events must give a nil list")
	}
}

// merchants verify signatures over these exact keys, renaming them breaks
// every integration
func TestWebhookPayloadWireKeys(t *testing.T) {
	body, err := json.Marshal(WebhookEventPayload{
		Event: "payment.confirmed",
		Payment: WebhookEventPayment{
			Id:            "pay_1",
			Status:        "confirmed",
			Amount:        "100",
			Currency:      "USD",
			PaymentMethod: "sbtc",
			ConfirmedAt:   "2026-01-01T00:00:00Z",
		},
		Timestamp: "2026-01-01T00:00:00Z",
	})
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		t.Fatal(err)
	}

	var payment map[string]json.RawMessage
	if err := json.Unmarshal(raw["payment"], &payment); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"id", "status", "amount", "currency", "paymentMethod", "confirmedAt"} {
		if _, ok := payment[key]; !ok {
			t.Fatalf("payment object missing wire key %q, got %v", key, payment)
		}
	}
}

func TestMatchesEvent(t *testing.T) {

	tests := []struct {
		events string
		event  string
		match  bool
	}{
		{"payment.created", "payment.created", true},
		{"payment.created", "payment.confirmed", false},
		{"payment.created,payment.confirmed", "payment.confirmed", true},

		{"payment.*", "payment.created", true},
		{"payment.*", "payment.refunded", true},
		{"payment.*", "webhook.test", false},

		{"webhook.*", "webhook.test", true},
		{"", "payment.created", false},

		// the wildcard needs the resource prefix, "*" alone matches nothing
		{"*", "payment.created", false},
	}

	for _, x := range tests {
		w := &Webhooks{Events: x.events}
		if got := w.MatchesEvent(x.event); got != x.match {
			t.Fatalf("events %q with %q = %v, want %v", x.events, x.event, got, x.match)
		}
	}
}
