// PUBLIC PAYMENT ROUTES

package v1

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/postgres"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// /{version}/payment/create
func (h *Handler) paymentCreate(c *gin.Context) {
	var errid = logger.GenErrorId()
	paymentData, ok := filterQuery(c)
	if !ok || paymentData == nil {
		return
	}

	merchant, err := h.services.Merchants.FindByApiKey(h.db, paymentData.ApiKey)
	if err != nil {
		if postgres.IsNotFound(err) {
			responseErr(c, http.StatusBadRequest, domain.ErrMsgApiKeyNotFound, "")
		} else {
			responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
			h.log.TemplPaymentErr("find merchant by api key error: "+err.Error(), errid, logger.NA, paymentData.Amount, paymentData.Currency, c.Request.RequestURI, logger.NA, c.ClientIP())
		}
		return
	}

	// check rate limit

	isRateLimited := paymentRateLimit(paymentData.ApiKey, DEFAULT_LIMIT)
	if isRateLimited {
		responseErr(c, http.StatusTooManyRequests, domain.ErrMsgRateLimitExceeded, "")
		return
	}

	created, err := h.services.Payments.Create(merchant, service.CreatePaymentOpts{
		Amount:        paymentData.Amount,
		Currency:      domain.StrToCurrency(paymentData.Currency),
		PaymentMethod: domain.StrToMethod(paymentData.PaymentMethod),
		PayoutMethod:  domain.StrToPayoutMethod(paymentData.PayoutMethod),
		Description:   paymentData.Description,
		Metadata:      paymentData.Metadata,
		ExpiryMinutes: paymentData.ExpiryMinutes,
	})
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		h.log.TemplPaymentErr("payment create error: "+err.Error(), errid, logger.NA, paymentData.Amount, paymentData.Currency, c.Request.RequestURI, merchant.MerchantID, c.ClientIP())
		return
	}

	payment := created.Payment

	if _, err := h.services.QrCodes.New(created.QrPayload); err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("qr code new error: "+err.Error(), errid, payment.PaymentID, payment.Amount, payment.Currency, c.Request.RequestURI, merchant.MerchantID, c.ClientIP())
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responsePaymentCreated{
		Error: false,
		Payment: responsePaymentCreatedInfo{
			Id:             payment.PaymentID,
			Status:         payment.Status.ToString(),
			PayoutAmount:   payment.PayoutAmount,
			PayoutCurrency: payment.PayoutCurrency,
			Fees: responsePaymentFees{
				ConversionFee: payment.ConversionFee,
				NetworkFee:    payment.NetworkFee,
				Total:         payment.TotalFees,
			},
			Wallet: responsePaymentWallet{
				QrCode:          fmt.Sprintf("%s://%s/v1/payment/qr-code/%s", h.config.Api.Proto, h.config.Api.Ipv4, payment.PaymentID),
				Address:         payment.PaymentAddress,
				AmountToPay:     payment.PaymentAmount,
				PaymentCurrency: payment.PaymentCurrency,
				DepositScript:   payment.DepositScript,
				ReclaimScript:   payment.ReclaimScript,
				SignerPublicKey: payment.SignerPublicKey,
				IsDemo:          payment.IsDemo,
			},
			Instructions: created.Instructions,
			ExpiresAt:    time.Unix(payment.EndTimestamp, 0).UTC().Format("2006-01-02 15:04:05"),
		},
	})

	h.log.TemplPaymentInfo("new payment created", errid, payment.PaymentID, payment.Amount, payment.Currency, c.Request.RequestURI, merchant.MerchantID, c.ClientIP())
}

// POST /payment/info
func (h *Handler) info(c *gin.Context) {
	var data struct {
		PaymentId string `json:"payment_id"`
	}

	var errid = logger.GenErrorId()

	if err := c.ShouldBindJSON(&data); err != nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgBadRequest, "")
		return
	}

	if data.PaymentId == "" {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, domain.ErrParamEmptyPaymentId), "")
		return
	}

	payment, err := h.services.Payments.FindGlobal(h.db, data.PaymentId)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	response := paymentInfoResponse(payment)

	responseM, err := json.Marshal(&response)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("/info/ marshal error: "+err.Error(), errid, data.PaymentId, decimal.Zero, logger.NA, c.Request.RequestURI, payment.MerchantID, c.ClientIP())
		return
	}

	c.Data(http.StatusOK, "application/json", responseM)

}

func (h *Handler) qrCode(c *gin.Context) {
	var errid = logger.GenErrorId()

	paymentId := c.Param("payment_id")
	if paymentId == "" {
		responseErr(c, http.StatusBadRequest, fmt.Sprintf(domain.ErrMsgParamsBadRequest, "payment id is required"), "")
		return
	}

	payment, err := h.services.Payments.FindGlobal(h.db, paymentId)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	content := service.QrPayload(domain.StrToMethod(payment.PaymentMethod), payment.PaymentAddress, payment.PaymentAmount)

	qrCode, err := h.services.QrCodes.FindOrNew(content)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("qr code find or new error: "+err.Error(), errid, paymentId, payment.PaymentAmount, payment.PaymentCurrency, c.Request.RequestURI, payment.MerchantID, c.ClientIP())
		return
	}

	imageData, err := base64.RawStdEncoding.DecodeString(qrCode)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("qr code decode error: "+err.Error(), errid, paymentId, payment.PaymentAmount, payment.PaymentCurrency, c.Request.RequestURI, payment.MerchantID, c.ClientIP())
		return
	}

	c.Data(http.StatusOK, "image/png", imageData)
}

func (h *Handler) initPubPaymentRoutes(g *gin.RouterGroup) {
	g.POST("/payment/create", h.paymentCreate)
	g.POST("/payment/info", h.info)
	g.GET("/payment/qr-code/:payment_id", h.qrCode)
}
