package domain

import (
	"errors"
	"fmt"
	"net/http"
)

type ResponsePaymentInfo struct {
	Id              string `json:"id"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethod   string `json:"payment_method"`
	PaymentAmount   string `json:"payment_amount"`
	PaymentCurrency string `json:"payment_currency"`
	PaymentAddress  string `json:"payment_address"`
	Status          string `json:"status"`
	Confirmations   int    `json:"confirmations"`
	IsDemo          bool   `json:"is_demo,omitempty"`
	CreatedAt       string `json:"created_at"`
	ExpiresAt       string `json:"expires_at"`
}

const (
	ErrMsgRateLimitExceeded         = "rate limit exceeded"
	ErrMsgInternalServerError       = "internal server error"
	ErrMsgParamsInternalServerError = "internal server error: %s"
	ErrMsgBadRequest                = "bad request"
	ErrMsgParamsBadRequest          = "bad request: %s"
	ErrMsgAccessError               = "access error"

	ErrMsgMerchantIdExists   = "merchant with that id already exists"
	ErrMsgMerchantNameExists = "merchant with that name already exists"
	ErrMsgMerchantNotFound   = "merchant not found"

	ErrMsgApiKeyNotFound  = "api key not found"
	ErrMsgApiKeyInvalid   = "invalid api key"
	ErrMsgInvalidCurrency = "invalid currency"
	ErrMsgInvalidMethod   = "invalid payment method"
)

const (
	ErrParamEmptyPaymentId = "payment id is empty"
)

// sentinel errors crossing the service boundary. handlers map them to
// status codes with GetStatusByErr, nothing else escapes
var (
	// validation
	ErrInvalidPaymentId    = fmt.Errorf("invalid payment id")
	ErrInvalidCurrency     = fmt.Errorf("unsupported currency")
	ErrInvalidMethod       = fmt.Errorf("unsupported payment method")
	ErrAmountOutOfBounds   = fmt.Errorf("amount out of bounds for currency")
	ErrInvalidRefundAmount = fmt.Errorf("refund amount exceeds remaining refundable amount")
	ErrMissingRefundTx     = fmt.Errorf("refund transaction id is required")

	// not found
	ErrMerchantNotFound  = fmt.Errorf("merchant not found")
	ErrPaymentIdNotFound = fmt.Errorf("payment id not found")
	ErrWebhookNotFound   = fmt.Errorf("webhook not found")

	// state conflict
	ErrInvalidState     = fmt.Errorf("payment status does not allow this operation")
	ErrAlreadyRefunded  = fmt.Errorf("payment is already fully refunded")
	ErrAlreadyTerminal  = fmt.Errorf("payment is in a terminal status")
	ErrWebhookNotOwned  = fmt.Errorf("webhook belongs to another merchant")
	ErrPaymentNotOwned  = fmt.Errorf("payment belongs to another merchant")
	ErrStatusNotAllowed = fmt.Errorf("unsupported target status")

	// upstream
	ErrChainBridge      = fmt.Errorf("chain bridge request failed")
	ErrRatesUnavailable = fmt.Errorf("conversion rates unavailable")

	ErrInternalServerError = fmt.Errorf(ErrMsgInternalServerError)
)

func GetStatusByErr(err error) (status int) {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, ErrInvalidPaymentId),
		errors.Is(err, ErrInvalidCurrency),
		errors.Is(err, ErrInvalidMethod),
		errors.Is(err, ErrAmountOutOfBounds),
		errors.Is(err, ErrInvalidRefundAmount),
		errors.Is(err, ErrMissingRefundTx),
		errors.Is(err, ErrStatusNotAllowed):
		status = http.StatusBadRequest
	case errors.Is(err, ErrMerchantNotFound),
		errors.Is(err, ErrPaymentIdNotFound),
		errors.Is(err, ErrWebhookNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrAlreadyRefunded),
		errors.Is(err, ErrAlreadyTerminal),
		errors.Is(err, ErrWebhookNotOwned),
		errors.Is(err, ErrPaymentNotOwned):
		status = http.StatusConflict
	case errors.Is(err, ErrChainBridge), errors.Is(err, ErrRatesUnavailable):
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}
	return status
}
