// PRIVATE PAYMENT ROUTES
//
// every handler here authenticates the merchant by api key and only
// operates on that merchant's payments

package v1

import (
	"net/http"

	"stackspay/api/internal/config"
	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/postgres"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// loads the merchant for an api key, responds on failure
func (h *Handler) authMerchant(c *gin.Context, apiKey string, errid string) (*domain.Merchants, bool) {
	merchant, err := h.services.Merchants.FindByApiKey(h.db, apiKey)
	if err != nil {
		if postgres.IsNotFound(err) {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgApiKeyNotFound, "")
		} else {
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplPaymentErr("find merchant by api key error: "+err.Error(), errid, logger.NA, decimal.Zero, logger.NA, c.Request.RequestURI, logger.NA, c.ClientIP())
		}
		return nil, false
	}
	return merchant, true
}

// POST /payment/verify-signature
// the caller observed the deposit transaction, moves pending -> processing.
// calling it twice is a conflict, not a second transition
func (h *Handler) verifySignature(c *gin.Context) {
	var data struct {
		PaymentId     string `json:"payment_id" validate:"required"`
		ApiKey        string `json:"api_key" validate:"min=64,max=64"`
		TxId          string `json:"tx_id"`
		BlockHeight   int64  `json:"block_height"`
		Confirmations int    `json:"confirmations"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	payment, err := h.services.Payments.FindGlobal(h.db, data.PaymentId)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}
	if payment.MerchantID != merchant.MerchantID {
		responseErr(c, domain.GetStatusByErr(domain.ErrPaymentNotOwned), domain.ErrPaymentNotOwned.Error(), "")
		return
	}

	payment, err = h.services.Payments.VerifySignature(data.PaymentId, &service.BlockchainData{
		TxId:          data.TxId,
		BlockHeight:   data.BlockHeight,
		Confirmations: data.Confirmations,
	})
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentStatus{Error: false, Payment: paymentInfoResponse(payment)})
}

// POST /payment/update-status
// external verifier path, only confirmed and failed are accepted
func (h *Handler) updateStatus(c *gin.Context) {
	var data struct {
		PaymentId     string `json:"payment_id" validate:"required"`
		Status        string `json:"status" validate:"required,oneof=confirmed failed"`
		ApiKey        string `json:"api_key" validate:"min=64,max=64"`
		TxId          string `json:"tx_id"`
		BlockHeight   int64  `json:"block_height"`
		Confirmations int    `json:"confirmations"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	payment, err := h.services.Payments.FindGlobal(h.db, data.PaymentId)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}
	if payment.MerchantID != merchant.MerchantID {
		responseErr(c, domain.GetStatusByErr(domain.ErrPaymentNotOwned), domain.ErrPaymentNotOwned.Error(), "")
		return
	}

	payment, err = h.services.Payments.UpdateStatus(data.PaymentId, domain.StrToStatus(data.Status), &service.BlockchainData{
		TxId:          data.TxId,
		BlockHeight:   data.BlockHeight,
		Confirmations: data.Confirmations,
	})
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentStatus{Error: false, Payment: paymentInfoResponse(payment)})
}

// POST /payment/refund
func (h *Handler) refund(c *gin.Context) {
	var data struct {
		PaymentId     string `json:"payment_id" validate:"required"`
		ApiKey        string `json:"api_key" validate:"min=64,max=64"`
		Amount        string `json:"amount" validate:"required"`
		TransactionID string `json:"transaction_id" validate:"required"`
		Reason        string `json:"reason" validate:"max=256"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	amount, err := decimal.NewFromString(data.Amount)
	if err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	payment, err := h.services.Payments.Refund(data.PaymentId, merchant.MerchantID, service.RefundOpts{
		Amount:        amount,
		Reason:        data.Reason,
		TransactionID: data.TransactionID,
	})
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	h.log.TemplPaymentInfo("payment refunded", errid, payment.PaymentID, amount, payment.PaymentCurrency, c.Request.RequestURI, merchant.MerchantID, c.ClientIP())
	c.AbortWithStatusJSON(http.StatusOK, responsePaymentStatus{Error: false, Payment: paymentInfoResponse(payment)})
}

// POST /payment/cancel
func (h *Handler) cancel(c *gin.Context) {
	var data struct {
		PaymentId string `json:"payment_id" validate:"required"`
		ApiKey    string `json:"api_key" validate:"min=64,max=64"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	payment, err := h.services.Payments.Cancel(data.PaymentId, merchant.MerchantID)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentStatus{Error: false, Payment: paymentInfoResponse(payment)})
}

// POST /payment/list
func (h *Handler) list(c *gin.Context) {
	var data struct {
		ApiKey        string `json:"api_key" validate:"min=64,max=64"`
		Status        string `json:"status" validate:"omitempty,oneof=pending processing confirmed failed expired cancelled refunded partially_refunded"`
		PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=sbtc btc stx"`
		Limit         int    `json:"limit" validate:"gte=0,lte=100"`
		Offset        int    `json:"offset" validate:"gte=0"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	filters := repository.ListFilters{
		PaymentMethod: data.PaymentMethod,
		Limit:         data.Limit,
		Offset:        data.Offset,
	}
	if data.Status != "" {
		status := domain.StrToStatus(data.Status)
		filters.Status = &status
	}

	payments, total, err := h.services.Payments.List(merchant.MerchantID, filters)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("payment list error: "+err.Error(), errid, logger.NA, decimal.Zero, logger.NA, c.Request.RequestURI, merchant.MerchantID, c.ClientIP())
		return
	}

	response := responsePaymentList{Error: false, Total: total, Payments: make([]domain.ResponsePaymentInfo, 0, len(payments))}
	for i := range payments {
		response.Payments = append(response.Payments, paymentInfoResponse(&payments[i]))
	}

	c.AbortWithStatusJSON(http.StatusOK, response)
}

func (h *Handler) updateProxyList(c *gin.Context) {
	h.services.WebhookSender.UpdateList(config.GetProxyList(h.config.ProxyPath))
	c.JSON(200, gin.H{
		"ok": true,
	})
}

func (h *Handler) getProxyList(c *gin.Context) {
	c.JSON(200, gin.H{
		"proxies": h.services.WebhookSender.GetList(),
	})
}

func (h *Handler) initPrivPaymentRoutes(g *gin.RouterGroup) {
	g.POST("/payment/verify-signature", h.verifySignature)
	g.POST("/payment/update-status", h.updateStatus)
	g.POST("/payment/refund", h.refund)
	g.POST("/payment/cancel", h.cancel)
	g.POST("/payment/list", h.list)

	g.POST("/webhook/updateProxyList", h.adminAccessMiddleware(), h.updateProxyList)
	g.POST("/webhook/getProxyList", h.adminAccessMiddleware(), h.getProxyList)
}
