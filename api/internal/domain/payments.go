package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payments struct {
	Model
	ID         uint   `gorm:"primaryKey"`
	PaymentID  string `gorm:"unique;not null"`
	MerchantID string `gorm:"size:36;not null"`
	Status     Status `gorm:"type:int8"`

	// requested terms
	Amount        decimal.Decimal `gorm:"type:numeric"`
	Currency      string          `gorm:"type:text"`
	PaymentMethod string          `gorm:"type:text"`
	PayoutMethod  string          `gorm:"type:text"`

	// computed terms. payment leg = requested currency -> method currency,
	// payout leg = method currency -> payout currency
	PaymentAmount     decimal.Decimal `gorm:"type:numeric"`
	PaymentCurrency   string          `gorm:"type:text"`
	PayoutAmount      decimal.Decimal `gorm:"type:numeric"`
	PayoutCurrency    string          `gorm:"type:text"`
	ConversionFee     decimal.Decimal `gorm:"type:numeric"` // both legs summed
	NetworkFee        decimal.Decimal `gorm:"type:numeric"`
	TotalFees         decimal.Decimal `gorm:"type:numeric"`
	NetAmount         decimal.Decimal `gorm:"type:numeric"`
	FinalPayoutAmount decimal.Decimal `gorm:"type:numeric"` // computed at confirmation when payout != payment method

	// deposit address and method-specific script material
	PaymentAddress  string `gorm:"type:text"`
	DepositScript   string `gorm:"type:text"`
	ReclaimScript   string `gorm:"type:text"`
	SignerPublicKey string `gorm:"type:text"`
	IsDemo          bool   // address was substituted because the merchant has no receiving wallet

	Confirmations         int
	RequiredConfirmations int

	// on-chain observation
	TxID        string `gorm:"type:text"`
	BlockHeight int64
	TxTimestamp int64

	Refunded       bool
	RefundedAmount decimal.Decimal `gorm:"type:numeric;default:0"`
	ConfirmedAt    *time.Time

	EndTimestamp int64  // unix payment expiry timestamp
	Description  string `gorm:"type:text"`
	Metadata     string `gorm:"type:text"` // opaque merchant json, echoed in webhooks
}

type Status uint8

const (
	STATUS_PENDING Status = iota
	STATUS_PROCESSING
	STATUS_CONFIRMED
	STATUS_FAILED
	STATUS_EXPIRED
	STATUS_CANCELLED
	STATUS_REFUNDED
	STATUS_PARTIALLY_REFUNDED
)

var Statuses = [...]string{"pending", "processing", "confirmed", "failed", "expired", "cancelled", "refunded", "partially_refunded"}

func StrToStatus(s string) Status {
	for i, statusName := range Statuses {
		if s == statusName {
			return Status(i)
		}
	}
	return STATUS_PENDING
}

func (s Status) ToString() string {
	return Statuses[s]
}

// failed/expired/cancelled/refunded never revert. confirmed is not terminal:
// refunds are still possible from it
func (s Status) IsTerminal() bool {
	return s == STATUS_FAILED || s == STATUS_EXPIRED || s == STATUS_CANCELLED || s == STATUS_REFUNDED
}

func (s Status) IsConfirmed() bool {
	return s == STATUS_CONFIRMED
}

func (s Status) IsPending() bool {
	return s == STATUS_PENDING
}

// the directed status graph. every mutation goes through this guard,
// concurrent monitors rely on it instead of locks
func (s Status) CanTransition(to Status) bool {
	switch s {
	case STATUS_PENDING:
		return to == STATUS_PROCESSING || to == STATUS_EXPIRED || to == STATUS_CANCELLED || to == STATUS_FAILED
	case STATUS_PROCESSING:
		return to == STATUS_CONFIRMED || to == STATUS_FAILED || to == STATUS_EXPIRED || to == STATUS_CANCELLED
	case STATUS_CONFIRMED:
		return to == STATUS_REFUNDED || to == STATUS_PARTIALLY_REFUNDED || to == STATUS_CANCELLED
	case STATUS_PARTIALLY_REFUNDED:
		return to == STATUS_REFUNDED || to == STATUS_PARTIALLY_REFUNDED || to == STATUS_CANCELLED
	default:
		return false
	}
}

func (p *Payments) IsExpired(now int64) bool {
	return now > p.EndTimestamp && (p.Status == STATUS_PENDING || p.Status == STATUS_PROCESSING)
}

// amount still refundable
func (p *Payments) RefundRemaining() decimal.Decimal {
	return p.PaymentAmount.Sub(p.RefundedAmount)
}

// webhook event names
const (
	EVENT_PAYMENT_CREATED   = "payment.created"
	EVENT_PAYMENT_CONFIRMED = "payment.confirmed"
	EVENT_PAYMENT_FAILED    = "payment.failed"
	EVENT_PAYMENT_EXPIRED   = "payment.expired"
	EVENT_PAYMENT_CANCELLED = "payment.cancelled"
	EVENT_PAYMENT_REFUNDED  = "payment.refunded"
	EVENT_WEBHOOK_TEST      = "webhook.test"
)

func StatusEvent(s Status) string {
	switch s {
	case STATUS_CONFIRMED:
		return EVENT_PAYMENT_CONFIRMED
	case STATUS_FAILED:
		return EVENT_PAYMENT_FAILED
	case STATUS_EXPIRED:
		return EVENT_PAYMENT_EXPIRED
	case STATUS_CANCELLED:
		return EVENT_PAYMENT_CANCELLED
	case STATUS_REFUNDED, STATUS_PARTIALLY_REFUNDED:
		return EVENT_PAYMENT_REFUNDED
	}
	return ""
}
