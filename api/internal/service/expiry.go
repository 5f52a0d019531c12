package service

import (
	"time"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"

	"gorm.io/gorm"
)

// ExpiryService moves overdue pending/processing payments to expired.
// payments carry an absolute deadline, so a sweep after a restart catches
// everything that expired while the process was down
type ExpiryService struct {
	repo     repository.Payments
	payments Payments
	monitor  Monitor
	webhook  WebhookSender
	db       *gorm.DB
	l        logger.Logger
}

func NewExpiryService(db *gorm.DB, repo repository.Payments, payments Payments, monitor Monitor, webhook WebhookSender, l logger.Logger) *ExpiryService {
	return &ExpiryService{db: db, repo: repo, payments: payments, monitor: monitor, webhook: webhook, l: l}
}

func (s *ExpiryService) RunFindExpired() {
	now := time.Now().Unix()

	for _, status := range []domain.Status{domain.STATUS_PENDING, domain.STATUS_PROCESSING} {
		payments, err := s.repo.FindByStatus(s.db, status)
		if err != nil {
			s.l.Debug("expiry sweep find error: " + err.Error())
			continue
		}

		for _, p := range payments {
			if !p.IsExpired(now) {
				continue
			}
			if !p.Status.CanTransition(domain.STATUS_EXPIRED) {
				continue
			}

			p.Status = domain.STATUS_EXPIRED
			s.monitor.Cancel(p.PaymentID)

			if err := s.payments.UpdateAndSave(s.db, p); err != nil {
				s.l.Debug("expiry save error: "+err.Error(), "payment_id", p.PaymentID)
				continue
			}

			if err := s.webhook.Trigger(p, domain.EVENT_PAYMENT_EXPIRED); err != nil {
				s.l.Debug("payment.expired webhook error: "+err.Error(), "payment_id", p.PaymentID)
			}

			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (s *ExpiryService) StartSweeper() {
	const sweepInterval = time.Minute

	go func() {
		for {
			s.RunFindExpired()
			time.Sleep(sweepInterval)
		}
	}()
}
