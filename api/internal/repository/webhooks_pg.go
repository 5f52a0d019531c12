package repository

import (
	"stackspay/api/internal/domain"

	"gorm.io/gorm"
)

type WebhooksRepo struct {
}

func InitWebhooksRepo() *WebhooksRepo {
	return &WebhooksRepo{}
}

func (r *WebhooksRepo) Create(tx *gorm.DB, webhook *domain.Webhooks) error {
	return tx.Create(webhook).Error
}

func (r *WebhooksRepo) Delete(tx *gorm.DB, webhookID string) error {
	return tx.Where(&domain.Webhooks{WebhookID: webhookID}).Delete(&domain.Webhooks{}).Error
}

func (r *WebhooksRepo) FindByID(tx *gorm.DB, webhookID string) (*domain.Webhooks, error) {
	var webhook domain.Webhooks
	return &webhook, tx.Where(&domain.Webhooks{WebhookID: webhookID}).First(&webhook).Error
}

func (r *WebhooksRepo) FindByMerchantID(tx *gorm.DB, merchantID string) ([]domain.Webhooks, error) {
	var webhooks []domain.Webhooks
	return webhooks, tx.Where(&domain.Webhooks{MerchantID: merchantID}).Find(&webhooks).Error
}

func (r *WebhooksRepo) FindEnabledByMerchantID(tx *gorm.DB, merchantID string) ([]domain.Webhooks, error) {
	var webhooks []domain.Webhooks
	return webhooks, tx.Where("merchant_id = ? AND enabled", merchantID).Find(&webhooks).Error
}

// counters go through gorm.Expr so concurrent deliveries don't lose updates
func (r *WebhooksRepo) RecordDelivery(tx *gorm.DB, webhookID string, success bool, failureReason string) error {
	updates := map[string]any{
		"delivery_total": gorm.Expr("delivery_total + 1"),
	}
	if success {
		updates["delivery_successful"] = gorm.Expr("delivery_successful + 1")
	} else {
		updates["delivery_failed"] = gorm.Expr("delivery_failed + 1")
		updates["last_failure_reason"] = failureReason
	}

	return tx.Model(&domain.Webhooks{}).Where(&domain.Webhooks{WebhookID: webhookID}).Updates(updates).Error
}
