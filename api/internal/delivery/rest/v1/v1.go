package v1

import (
	"stackspay/api/internal/config"
	"stackspay/api/internal/infra/nats"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	services  *service.Services
	db        *gorm.DB
	config    *config.Config
	Natsinfra *nats.NatsInfra
	log       logger.Logger
}

func (h *Handler) InitRoutes(g *gin.RouterGroup) {
	{
		h.initPubPaymentRoutes(g)
		h.initPrivPaymentRoutes(g)

		h.initMerchantRoutes(g)
		h.initWebhookRoutes(g)
		h.initCurrencyRoutes(g)
	}
}

func NewHandler(services *service.Services, db *gorm.DB, config *config.Config, natsinfra *nats.NatsInfra, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		Natsinfra: natsinfra,
		log:       log,
		services:  services,
		db:        db,
	}
}
