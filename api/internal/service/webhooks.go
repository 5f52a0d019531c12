package service

import (
	"strings"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/infra/postgres"
	"stackspay/api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// merchant-facing endpoint management, delivery itself lives in the sender
type WebhooksService struct {
	repo repository.Webhooks
	db   *gorm.DB
}

func NewWebhooksService(db *gorm.DB, repo repository.Webhooks) *WebhooksService {
	return &WebhooksService{repo: repo, db: db}
}

// Register creates an endpoint with a fresh signing secret. an empty event
// list subscribes to every payment event
func (s *WebhooksService) Register(merchantID string, url string, events []string) (*domain.Webhooks, error) {
	if len(events) == 0 {
		events = []string{"payment.*"}
	}

	webhook := &domain.Webhooks{
		WebhookID:  uuid.NewString(),
		MerchantID: merchantID,
		Url:        url,
		Secret:     newWebhookSecret(),
		Events:     strings.Join(events, ","),
		Enabled:    true,
	}

	if err := s.repo.Create(s.db, webhook); err != nil {
		return nil, domain.ErrInternalServerError
	}

	return webhook, nil
}

func (s *WebhooksService) ListByMerchant(merchantID string) ([]domain.Webhooks, error) {
	return s.repo.FindByMerchantID(s.db, merchantID)
}

func (s *WebhooksService) Delete(merchantID string, webhookID string) error {
	webhook, err := s.repo.FindByID(s.db, webhookID)
	if err != nil {
		if postgres.IsNotFound(err) {
			return domain.ErrWebhookNotFound
		}
		return domain.ErrInternalServerError
	}

	if webhook.MerchantID != merchantID {
		return domain.ErrWebhookNotOwned
	}

	return s.repo.Delete(s.db, webhookID)
}

// 64 hex chars
func newWebhookSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
