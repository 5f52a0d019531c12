package service

import (
	"fmt"
	"time"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/utils"

	"gorm.io/gorm"
)

// OutboxEventsService replays webhook deliveries that exhausted their retry
// chain. the sender writes them to the events table, this loop picks up the
// "new" rows and resends the original signed body
type OutboxEventsService struct {
	repo    repository.Events
	webhook WebhookSender

	db *gorm.DB
	l  logger.Logger
}

func NewOutboxEventsService(db *gorm.DB, repo repository.Events, webhook WebhookSender, l logger.Logger) *OutboxEventsService {
	return &OutboxEventsService{db: db, repo: repo, webhook: webhook, l: l}
}

// checks events table and handles them
func (s *OutboxEventsService) StartProcessEvents() {
	const sleepTime = time.Minute

	go func() {
		for {
			events, err := getNewEvents(s.db, 20, time.Minute, s.l)
			if err != nil {
				time.Sleep(sleepTime)
				continue
			}

			for _, event := range events {
				switch event.Type {
				case domain.EVENT_WEBHOOK_REDELIVERY:
					s.handleRedelivery(event)
				default:
					s.l.Debug("invalid event type: " + event.Type)
				}
			}

			time.Sleep(sleepTime)
		}
	}()
}

func (s *OutboxEventsService) handleRedelivery(event domain.Events) {
	payload, err := utils.Unmarshal[domain.PayloadWebhookRedelivery]([]byte(event.Payload))
	if err != nil {
		s.l.Debug("redelivery payload unmarshal error: " + err.Error())
		// a broken payload never becomes valid, drop it
		s.repo.Done(s.db, event.RelationID, domain.EVENT_WEBHOOK_REDELIVERY)
		return
	}

	go func() {
		if err := s.webhook.DeliverSigned(payload.Url, payload.Signature, []byte(payload.Body)); err != nil {
			s.l.TemplWebhookErr("redelivery failed: "+err.Error(), payload.Url, 1, payload.Event, []byte(payload.Body))
			// left as "new", the next pass retries it
			return
		}

		s.repo.Done(s.db, event.RelationID, domain.EVENT_WEBHOOK_REDELIVERY)
	}()
}

func selectEventsFromDb(tx *gorm.DB, count int) ([]domain.Events, error) {
	var events []domain.Events
	return events, tx.Where(&domain.Events{Status: "new"}).Limit(count).Find(&events).Error
}

const errNoValidEvents = "no valid events"

// new events younger than timeDiff are skipped, the inline retry chain may
// still be running for them
func getNewEvents(tx *gorm.DB, count int, timeDiff time.Duration, log logger.Logger) ([]domain.Events, error) {
	var validEvents []domain.Events

	events, err := selectEventsFromDb(tx, count)
	if err != nil {
		return nil, err
	}

	for _, x := range events {
		if time.Since(x.CreatedAt) > timeDiff {
			validEvents = append(validEvents, x)
		}
	}

	if len(validEvents) == 0 {
		return nil, fmt.Errorf(errNoValidEvents)
	}

	return validEvents, nil
}
