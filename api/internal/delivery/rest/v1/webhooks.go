// WEBHOOK ENDPOINT MANAGEMENT

package v1

import (
	"net/http"
	"strings"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"

	"github.com/gin-gonic/gin"
)

// POST /webhook/register
func (h *Handler) webhookRegister(c *gin.Context) {
	var data struct {
		ApiKey string `json:"api_key" validate:"min=64,max=64"`
		Url    string `json:"url" validate:"required,webhook,max=255"`
		// comma separated, e.g. "payment.confirmed,payment.failed" or "payment.*"
		Events string `json:"events" validate:"max=255"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	var events []string
	if data.Events != "" {
		for _, e := range strings.Split(data.Events, ",") {
			events = append(events, strings.TrimSpace(e))
		}
	}

	webhook, err := h.services.Webhooks.Register(merchant.MerchantID, data.Url, events)
	if err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseWebhookCreated{
		Error:     false,
		WebhookID: webhook.WebhookID,
		Url:       webhook.Url,
		Secret:    webhook.Secret,
		Events:    webhook.Events,
	})
}

// POST /webhook/list
func (h *Handler) webhookList(c *gin.Context) {
	var data struct {
		ApiKey string `json:"api_key" validate:"min=64,max=64"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	webhooks, err := h.services.Webhooks.ListByMerchant(merchant.MerchantID)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	response := responseWebhookList{Error: false, Webhooks: make([]responseWebhookInfo, 0, len(webhooks))}
	for _, w := range webhooks {
		response.Webhooks = append(response.Webhooks, responseWebhookInfo{
			WebhookID:          w.WebhookID,
			Url:                w.Url,
			Events:             w.Events,
			Enabled:            w.Enabled,
			DeliveryTotal:      w.DeliveryTotal,
			DeliverySuccessful: w.DeliverySuccessful,
			DeliveryFailed:     w.DeliveryFailed,
			LastFailureReason:  w.LastFailureReason,
		})
	}

	c.AbortWithStatusJSON(http.StatusOK, response)
}

// POST /webhook/delete
func (h *Handler) webhookDelete(c *gin.Context) {
	var data struct {
		ApiKey    string `json:"api_key" validate:"min=64,max=64"`
		WebhookID string `json:"webhook_id" validate:"required"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	if err := h.services.Webhooks.Delete(merchant.MerchantID, data.WebhookID); err != nil {
		responseErr(c, domain.GetStatusByErr(err), err.Error(), errid)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseOK{Error: false})
}

// POST /webhook/test
// fires a webhook.test delivery at the registered endpoint
func (h *Handler) webhookTest(c *gin.Context) {
	var data struct {
		ApiKey    string `json:"api_key" validate:"min=64,max=64"`
		WebhookID string `json:"webhook_id" validate:"required"`
	}

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	merchant, ok := h.authMerchant(c, data.ApiKey, errid)
	if !ok {
		return
	}

	webhooks, err := h.services.Webhooks.ListByMerchant(merchant.MerchantID)
	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		return
	}

	for _, w := range webhooks {
		if w.WebhookID != data.WebhookID {
			continue
		}

		if err := h.services.WebhookSender.Test(w.Url, w.Secret); err != nil {
			responseErr(c, http.StatusBadGateway, "test delivery failed: "+err.Error(), errid)
			return
		}

		c.AbortWithStatusJSON(http.StatusOK, responseOK{Error: false})
		return
	}

	responseErr(c, domain.GetStatusByErr(domain.ErrWebhookNotFound), domain.ErrWebhookNotFound.Error(), "")
}

func (h *Handler) initWebhookRoutes(g *gin.RouterGroup) {
	g.POST("/webhook/register", h.webhookRegister)
	g.POST("/webhook/list", h.webhookList)
	g.POST("/webhook/delete", h.webhookDelete)
	g.POST("/webhook/test", h.webhookTest)
}
