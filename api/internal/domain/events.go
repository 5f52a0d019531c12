package domain

import "time"

const (
	// webhook delivery that exhausted its retry chain, replayed later
	EVENT_WEBHOOK_REDELIVERY = "webhook_redelivery"
)

type Events struct {
	ID         uint   `gorm:"primaryKey"`
	RelationID uint   `gorm:"not null"`
	Type       string `gorm:"type:varchar(255)"` //const type Event*
	Payload    string
	Status     string // new/done
	CreatedAt  time.Time
}

// event payloads
type PayloadWebhookRedelivery struct {
	WebhookID string `json:"webhook_id"`
	Url       string `json:"url"`
	Event     string `json:"event"`
	Body      string `json:"body"`      // exact signed body, resent as-is
	Signature string `json:"signature"` // sha256=<hex>
}
