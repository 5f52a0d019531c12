package logger

import (
	"github.com/shopspring/decimal"
)

func (l Logger) TemplPaymentErr(message string, errorId string, paymentId string, amount decimal.Decimal, currency string, uri string, merchantId string, ip string) string {
	l.Error(message, LS_PAYMENTS, true, "payment_id", paymentId, "amount", amount.String(), "currency", currency, "uri", uri, "error_id", errorId, "ip", ip, "merchant_id", merchantId)
	return errorId
}

func (l Logger) TemplPaymentInfo(message string, errorId string, paymentId string, amount decimal.Decimal, currency string, uri string, merchantId string, ip string) string {
	l.Info(message, LS_PAYMENTS, true, "payment_id", paymentId, "amount", amount.String(), "currency", currency, "uri", uri, "error_id", errorId, "ip", ip, "merchant_id", merchantId)
	return errorId
}

// use only for fatal errors
func (l Logger) TemplHTTPError(message string, ipv4 string, err error) {
	l.Fatal(message, LS_FATAL, true, "error", err.Error(), "ipv4", ipv4)
}

func (l Logger) TemplNatsError(message, natsUrl string, err error) {
	l.Error(message, LS_NATS, true, "nats_url", natsUrl, "error", err.Error())
}

func (l Logger) TemplNatsInfo(message, natsUrl string) {
	l.Info(message, LS_NATS, true, "nats_url", natsUrl, "error", "N/A")
}

func (l Logger) TemplWebhookErr(message, url string, attempt int, event string, payload []byte) {
	l.Error(message, LS_WEBHOOKS, true, "url", url, "attempt", attempt, "event", event, "payload", string(payload))
}

func (l Logger) TemplWebhookInfo(message, url string, event string) {
	l.Info(message, LS_WEBHOOKS, true, "url", url, "event", event)
}
