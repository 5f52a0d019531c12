package v1

import (
	"net/http"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// POST /currency/convert
// quote without creating a payment, same engine as payment creation
func (h *Handler) currencyConvert(c *gin.Context) {
	var data struct {
		From   string  `json:"from" validate:"required,oneof=usd btc stx sbtc usdt usdc"`
		To     string  `json:"to" validate:"required,oneof=usd btc stx sbtc usdt usdc"`
		Amount float64 `json:"amount" validate:"required,gt=0"`
		ApiKey string  `json:"api_key" validate:"min=64,max=64"`
	}

	var errid = logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	amountDecimal := decimal.NewFromFloat(data.Amount)

	exists, err := h.services.Merchants.ApiKeyExists(h.db, data.ApiKey)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("api key exists error: "+err.Error(), errid, logger.NA, amountDecimal, data.From, c.Request.RequestURI, logger.NA, c.ClientIP())
		return
	}

	if !exists {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgApiKeyNotFound, "")
		return
	}

	from := domain.StrToCurrency(data.From)
	to := domain.StrToCurrency(data.To)

	result, err := h.services.Converter.Convert(amountDecimal, from, to, nil)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseConverterOK{
		Error:         false,
		From:          data.From,
		To:            data.To,
		Amount:        amountDecimal,
		Converted:     result.ToAmount,
		Rate:          result.Rate,
		ConversionFee: result.ConversionFee,
		NetworkFee:    result.NetworkFee,
		TotalFees:     result.TotalFees,
		EstimatedTime: result.EstimatedTime,
	})
}

// POST /currency/rates
func (h *Handler) currencyRates(c *gin.Context) {
	var data struct {
		ApiKey string `json:"api_key" validate:"min=64,max=64"`
	}

	var errid = logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	exists, err := h.services.Merchants.ApiKeyExists(h.db, data.ApiKey)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.TemplPaymentErr("api key exists error: "+err.Error(), errid, logger.NA, decimal.Zero, logger.NA, c.Request.RequestURI, logger.NA, c.ClientIP())
		return
	}

	if !exists {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgApiKeyNotFound, "")
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseRatesOK{
		Error: false,
		Rates: h.services.Rates.Table(),
	})
}

func (h *Handler) initCurrencyRoutes(g *gin.RouterGroup) {
	g.POST("/currency/convert", h.currencyConvert)
	g.POST("/currency/rates", h.currencyRates)
}
