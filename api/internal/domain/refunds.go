package domain

import "github.com/shopspring/decimal"

type RefundStatus uint8

const (
	REFUND_NONE RefundStatus = iota // only for init
	REFUND_PROCESSING
	REFUND_COMPLETED
	REFUND_FAILED
)

var RefundStatuses = [...]string{"none", "processing", "completed", "failed"}

func (rs RefundStatus) ToString() string {
	return RefundStatuses[rs]
}

func StrToRefundStatus(s string) RefundStatus {
	for i, statusName := range RefundStatuses {
		if s == statusName {
			return RefundStatus(i)
		}
	}
	return REFUND_NONE
}

// one row per refund against a payment. refund execution happens outside
// the gateway, the caller hands us the settled transaction id
type Refunds struct {
	Model
	ID uint `gorm:"primaryKey"`

	RefundID      string          `gorm:"unique;not null"`
	PaymentID     string          `gorm:"not null"`
	MerchantID    string          `gorm:"size:36;not null"`
	Amount        decimal.Decimal `gorm:"type:numeric"`
	TransactionID string          `gorm:"not null"`
	Status        RefundStatus    `gorm:"type:int8"`
	Reason        string          `gorm:"type:text"`
}
