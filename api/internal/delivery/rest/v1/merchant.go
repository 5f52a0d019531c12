package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/postgres"
	"stackspay/api/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (h *Handler) merchantInit(c *gin.Context) {
	var data struct {
		MerchantName string `json:"merchant_name" validate:"required,min=1,max=32,alphanum"`
		// receiving wallets, optional. without them deposit addresses fall
		// back to flagged demo addresses
		StacksAddress  string `json:"stacks_address" validate:"omitempty,min=3,max=64"`
		BitcoinAddress string `json:"bitcoin_address" validate:"omitempty,min=26,max=90"`
	}
	merchantId := uuid.NewString()

	errid := logger.GenErrorId()

	if !bindAndValidate(c, &data) {
		return
	}

	shaBytes := sha256.Sum256([]byte(data.MerchantName + merchantId))

	apiKey := hex.EncodeToString(shaBytes[:])

	// Check by id
	_, err := h.services.Merchants.FindByID(h.db, merchantId)
	if !postgres.IsNotFound(err) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgMerchantIdExists, "")
		return
	}

	if err == nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgMerchantIdExists, "")
		return
	}

	// Check by name
	_, err = h.services.Merchants.FindByName(h.db, data.MerchantName)
	if !postgres.IsNotFound(err) {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgMerchantNameExists, "")
		return
	}

	if err == nil {
		responseErr(c, http.StatusBadRequest, domain.ErrMsgMerchantNameExists, "")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		return h.services.Merchants.Create(tx, &domain.Merchants{
			MerchantName:   data.MerchantName,
			MerchantID:     merchantId,
			ApiKey:         apiKey,
			StacksAddress:  data.StacksAddress,
			BitcoinAddress: data.BitcoinAddress,
		})
	})

	if err != nil {
		responseErr(c, http.StatusInternalServerError, domain.ErrMsgInternalServerError, errid)
		h.log.Debug("merchant create error: "+err.Error(), "merchant_id", merchantId)
		return
	}

	c.AbortWithStatusJSON(http.StatusOK, responseMerchantCreated{
		Error:      false,
		ApiKey:     apiKey,
		MerchantId: merchantId,
	})

}

func (h *Handler) initMerchantRoutes(g *gin.RouterGroup) {
	g.POST("/merchant/create", h.merchantInit)
}
