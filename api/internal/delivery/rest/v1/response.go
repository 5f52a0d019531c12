package v1

import (
	"time"

	"stackspay/api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type responseError struct {
	Error   bool   `json:"error"`
	ErrorID string `json:"error_id"`
	Msg     string `json:"msg"`
}

// /payment/create
type responsePaymentWallet struct {
	QrCode          string          `json:"qr_code"`
	Address         string          `json:"address"`
	AmountToPay     decimal.Decimal `json:"amount_to_pay"`
	PaymentCurrency string          `json:"payment_currency"`
	DepositScript   string          `json:"deposit_script,omitempty"`
	ReclaimScript   string          `json:"reclaim_script,omitempty"`
	SignerPublicKey string          `json:"signer_public_key,omitempty"`
	IsDemo          bool            `json:"is_demo,omitempty"`
}

type responsePaymentFees struct {
	ConversionFee decimal.Decimal `json:"conversion_fee"`
	NetworkFee    decimal.Decimal `json:"network_fee"`
	Total         decimal.Decimal `json:"total"`
}

type responsePaymentCreatedInfo struct {
	Id             string                `json:"id"`
	Status         string                `json:"status"`
	PayoutAmount   decimal.Decimal       `json:"payout_amount"`
	PayoutCurrency string                `json:"payout_currency"`
	Fees           responsePaymentFees   `json:"fees"`
	Wallet         responsePaymentWallet `json:"wallet"`
	Instructions   string                `json:"instructions"`
	ExpiresAt      string                `json:"expires_at"`
}

type responsePaymentCreated struct {
	Error   bool                       `json:"error"`
	Payment responsePaymentCreatedInfo `json:"payment"`
}

// /payment/update-status, /payment/verify-signature, /payment/refund, /payment/cancel
type responsePaymentStatus struct {
	Error   bool                       `json:"error"`
	Payment domain.ResponsePaymentInfo `json:"payment"`
}

// /payment/list
type responsePaymentList struct {
	Error    bool                         `json:"error"`
	Total    int64                        `json:"total"`
	Payments []domain.ResponsePaymentInfo `json:"payments"`
}

// /currency/convert
type responseConverterOK struct {
	Error         bool            `json:"error"`
	From          string          `json:"from"`
	To            string          `json:"to"`
	Amount        decimal.Decimal `json:"amount"`
	Converted     decimal.Decimal `json:"converted"`
	Rate          decimal.Decimal `json:"rate"`
	ConversionFee decimal.Decimal `json:"conversion_fee"`
	NetworkFee    decimal.Decimal `json:"network_fee"`
	TotalFees     decimal.Decimal `json:"total_fees"`
	EstimatedTime string          `json:"estimated_time"`
}

// /currency/rates
type responseRatesOK struct {
	Error bool                       `json:"error"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

type responseMerchantCreated struct {
	Error      bool   `json:"error"`
	ApiKey     string `json:"api_key"`
	MerchantId string `json:"merchant_id"`
}

// /webhook/register
type responseWebhookCreated struct {
	Error     bool   `json:"error"`
	WebhookID string `json:"webhook_id"`
	Url       string `json:"url"`
	Secret    string `json:"secret"` // shown once, at registration
	Events    string `json:"events"`
}

type responseWebhookInfo struct {
	WebhookID          string `json:"webhook_id"`
	Url                string `json:"url"`
	Events             string `json:"events"`
	Enabled            bool   `json:"enabled"`
	DeliveryTotal      int64  `json:"delivery_total"`
	DeliverySuccessful int64  `json:"delivery_successful"`
	DeliveryFailed     int64  `json:"delivery_failed"`
	LastFailureReason  string `json:"last_failure_reason,omitempty"`
}

type responseWebhookList struct {
	Error    bool                  `json:"error"`
	Webhooks []responseWebhookInfo `json:"webhooks"`
}

type responseOK struct {
	Error bool `json:"error"`
}

func paymentInfoResponse(payment *domain.Payments) domain.ResponsePaymentInfo {
	return domain.ResponsePaymentInfo{
		Id:              payment.PaymentID,
		Amount:          payment.Amount.String(),
		Currency:        payment.Currency,
		PaymentMethod:   payment.PaymentMethod,
		PaymentAmount:   payment.PaymentAmount.String(),
		PaymentCurrency: payment.PaymentCurrency,
		PaymentAddress:  payment.PaymentAddress,
		Status:          payment.Status.ToString(),
		Confirmations:   payment.Confirmations,
		IsDemo:          payment.IsDemo,
		CreatedAt:       payment.CreatedAt.Format("2006-01-02 15:04:05"),
		ExpiresAt:       time.Unix(payment.EndTimestamp, 0).UTC().Format("2006-01-02 15:04:05"),
	}
}

func responseErr(c *gin.Context, statusCode int, msg, errorID string) {
	c.AbortWithStatusJSON(statusCode, responseError{true, errorID, msg})
}
