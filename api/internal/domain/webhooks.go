package domain

import "strings"

// one row per merchant-registered endpoint. created/updated by merchant
// configuration, read by the webhook sender
type Webhooks struct {
	Model
	ID         uint   `gorm:"primaryKey"`
	WebhookID  string `gorm:"unique;not null"`
	MerchantID string `gorm:"size:36;not null"`
	Url        string `gorm:"type:text;not null"`
	Secret     string `gorm:"size:64;not null"`
	Events     string `gorm:"type:text"` // comma separated, supports "payment.*" wildcard
	Enabled    bool   `gorm:"default:true"`

	// delivery accounting, incremented once per delivery (not per attempt)
	DeliveryTotal      int64
	DeliverySuccessful int64
	DeliveryFailed     int64
	LastFailureReason  string `gorm:"type:text"`
}

func (w *Webhooks) EventList() []string {
	if w.Events == "" {
		return nil
	}

	split := strings.Split(w.Events, ",")
	for i := range split {
		split[i] = strings.TrimSpace(split[i])
	}
	return split
}

// exact match or "resource.*" wildcard
func (w *Webhooks) MatchesEvent(event string) bool {
	for _, e := range w.EventList() {
		if e == event {
			return true
		}
		if resource, ok := strings.CutSuffix(e, ".*"); ok {
			if strings.HasPrefix(event, resource+".") {
				return true
			}
		}
	}
	return false
}

// wire format of a delivery, signed with the endpoint secret
type WebhookEventPayload struct {
	Event     string              `json:"event"`
	Payment   WebhookEventPayment `json:"payment"`
	Timestamp string              `json:"timestamp"` // ISO8601
}

type WebhookEventPayment struct {
	Id            string `json:"id"`
	Status        string `json:"status"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	PaymentMethod string `json:"paymentMethod"`
	ConfirmedAt   string `json:"confirmedAt,omitempty"`
	Metadata      string `json:"metadata,omitempty"`
}

const SignatureHeader = "X-StacksPay-Signature"
