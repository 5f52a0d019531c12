package service

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"stackspay/api/internal/domain"
	"stackspay/api/internal/logger"
	"stackspay/api/internal/repository"
	"stackspay/pkg/rr"

	"github.com/go-playground/validator/v10"
	"golang.org/x/net/proxy"
	"gorm.io/gorm"
)

const webhookTimeout = 10 * time.Second

// wait between attempts. 4 attempts total: the first one plus one per delay
var defaultRetryDelays = []time.Duration{time.Second, 5 * time.Second, 15 * time.Second}

type WebhookSenderService struct {
	repo   repository.Webhooks
	events repository.Events
	db     *gorm.DB

	rr   rr.RoundRobin
	list *atomic.Pointer[[]string]
	l    logger.Logger

	retryDelays []time.Duration
}

func NewWebhookSenderService(db *gorm.DB, repo repository.Webhooks, events repository.Events, proxyList []string, l logger.Logger) *WebhookSenderService {
	var list atomic.Pointer[[]string]
	list.Store(&proxyList)

	return &WebhookSenderService{db: db, repo: repo, events: events, rr: rr.New(&list), list: &list, l: l, retryDelays: defaultRetryDelays}
}

type MyRoundTripper struct {
	r http.RoundTripper
}

func (mrt MyRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	r.Header.Add("Sec-Fetch-Dest", "empty")
	r.Header.Add("Sec-Fetch-Mode", "cors")
	r.Header.Add("Sec-Fetch-Site", "same-origin")
	r.Header.Add("TE", "trailers")
	r.Header.Add("User-Agent", "stackspay-webhook")
	return mrt.r.RoundTrip(r)
}

// Sign computes the body signature with the endpoint secret
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature is the merchant-side check, constant time
func (s *WebhookSenderService) VerifySignature(payload []byte, signature string, secret string) bool {
	return hmac.Equal([]byte(Sign(payload, secret)), []byte(signature))
}

// Trigger fans the event out to every matching endpoint of the merchant.
// deliveries run independently, the call succeeds when at least one endpoint
// accepted the event. no matching endpoint is a silent no-op
func (s *WebhookSenderService) Trigger(payment *domain.Payments, eventType string) error {
	if eventType == "" {
		return nil
	}

	endpoints, err := s.repo.FindEnabledByMerchantID(s.db, payment.MerchantID)
	if err != nil {
		return err
	}

	var matched []domain.Webhooks
	for _, w := range endpoints {
		if w.MatchesEvent(eventType) {
			matched = append(matched, w)
		}
	}
	if len(matched) == 0 {
		return nil
	}

	body, err := json.Marshal(buildEventPayload(payment, eventType))
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	var delivered atomic.Int64

	for i := range matched {
		w := matched[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.deliverAndRecord(&w, eventType, body); err == nil {
				delivered.Add(1)
			}
		}()
	}
	wg.Wait()

	if delivered.Load() == 0 {
		return fmt.Errorf("webhook %s: all %d endpoints failed", eventType, len(matched))
	}
	return nil
}

func (s *WebhookSenderService) deliverAndRecord(w *domain.Webhooks, eventType string, body []byte) error {
	err := s.Deliver(w.Url, w.Secret, w.WebhookID, body)

	reason := ""
	if err != nil {
		reason = err.Error()
	}
	if rerr := s.repo.RecordDelivery(s.db, w.WebhookID, err == nil, reason); rerr != nil {
		s.l.Debug("record delivery error: "+rerr.Error(), "webhook_id", w.WebhookID)
	}

	if err != nil {
		s.l.TemplWebhookErr("delivery failed: "+err.Error(), w.Url, len(s.retryDelays)+1, eventType, body)
		s.enqueueRedelivery(w, eventType, body)
		return err
	}

	s.l.TemplWebhookInfo("delivered", w.Url, eventType)
	return nil
}

// exhausted retry chains land in the outbox and are replayed later
func (s *WebhookSenderService) enqueueRedelivery(w *domain.Webhooks, eventType string, body []byte) {
	payload, err := json.Marshal(domain.PayloadWebhookRedelivery{
		WebhookID: w.WebhookID,
		Url:       w.Url,
		Event:     eventType,
		Body:      string(body),
		Signature: Sign(body, w.Secret),
	})
	if err != nil {
		s.l.Debug("redelivery payload marshal error: " + err.Error())
		return
	}

	if err := s.events.Create(s.db, domain.EVENT_WEBHOOK_REDELIVERY, w.ID, string(payload)); err != nil {
		s.l.Debug("redelivery enqueue error: "+err.Error(), "webhook_id", w.WebhookID)
	}
}

// Deliver signs the body and runs the retry chain. a 2xx response stops it,
// a 4xx response is a permanent rejection and is not retried, 5xx and
// network errors retry after the configured delays
func (s *WebhookSenderService) Deliver(url string, secret string, webhookID string, body []byte) error {
	return s.DeliverSigned(url, Sign(body, secret), body)
}

func (s *WebhookSenderService) DeliverSigned(url string, signature string, body []byte) error {
	var err error

	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			time.Sleep(s.retryDelays[attempt-1])
		}

		var permanent bool
		permanent, err = s.post(url, signature, body)
		if err == nil {
			return nil
		}
		if permanent {
			return err
		}
		if attempt >= len(s.retryDelays) {
			return err
		}

		s.l.TemplWebhookErr("delivery attempt failed: "+err.Error(), url, attempt+1, logger.NA, body)
	}
}

// one http attempt. the bool reports whether the failure is permanent
func (s *WebhookSenderService) post(url string, signature string, body []byte) (bool, error) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return true, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(domain.SignatureHeader, signature)

	resp, err := s.client().Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode >= 500:
		return false, fmt.Errorf("status code: %d", resp.StatusCode)
	default:
		return true, fmt.Errorf("rejected, status code: %d", resp.StatusCode)
	}
}

// egress goes through a socks5 proxy when one is configured
func (s *WebhookSenderService) client() *http.Client {
	stringProxy, ok := s.rr.Next()
	if !ok {
		return &http.Client{Timeout: webhookTimeout}
	}

	socks, err := s.parseProxy(stringProxy)
	if err != nil {
		s.l.Debug("can't parse proxy, sending direct: " + err.Error())
		return &http.Client{Timeout: webhookTimeout}
	}

	auth := proxy.Auth{
		User:     socks.user,
		Password: socks.pass,
	}

	dialer, err := proxy.SOCKS5("tcp", socks.ip+":"+socks.port, &auth, proxy.Direct)
	if err != nil {
		s.l.Debug("socks5 dialer error, sending direct: " + err.Error())
		return &http.Client{Timeout: webhookTimeout}
	}

	dialContext := func(ctx context.Context, network, address string) (net.Conn, error) {
		return dialer.Dial(network, address)
	}

	transport := &http.Transport{
		DialContext:       dialContext,
		DisableKeepAlives: true,
	}

	return &http.Client{
		Transport: MyRoundTripper{r: transport},
		Timeout:   webhookTimeout,
	}
}

// Test sends a webhook.test event so the merchant can check the endpoint
// and the signature verification end to end
func (s *WebhookSenderService) Test(url string, secret string) error {
	body, err := json.Marshal(domain.WebhookEventPayload{
		Event:     domain.EVENT_WEBHOOK_TEST,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return s.Deliver(url, secret, "", body)
}

func buildEventPayload(payment *domain.Payments, eventType string) domain.WebhookEventPayload {
	p := domain.WebhookEventPayment{
		Id:            payment.PaymentID,
		Status:        payment.Status.ToString(),
		Amount:        payment.Amount.String(),
		Currency:      payment.Currency,
		PaymentMethod: payment.PaymentMethod,
		Metadata:      payment.Metadata,
	}
	if payment.ConfirmedAt != nil {
		p.ConfirmedAt = payment.ConfirmedAt.UTC().Format(time.RFC3339)
	}

	return domain.WebhookEventPayload{
		Event:     eventType,
		Payment:   p,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

type parsedProxy struct {
	user string `validate:"required,gte=2"`
	pass string `validate:"required,gte=2"`
	ip   string `validate:"required,gte=2"`
	port string `validate:"required,gte=2"`
}

// login:password@ip:port
func (s *WebhookSenderService) parseProxy(str string) (parsedProxy, error) {
	splitA := strings.Split(str, ":") //  to [user pass@ip port]

	if len(splitA) <= 1 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: " + str)
	}

	splitB := strings.Split(splitA[1], "@") // to [ pass ip]

	if len(splitB) != 2 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: " + str)
	}

	var pp = parsedProxy{}

	if len(splitA) != 3 {
		return parsedProxy{}, fmt.Errorf("invalid proxy format: given: " + str)
	}
	pp.user = splitA[0]
	pp.pass = splitB[0]

	pp.ip = splitB[1]
	pp.port = splitA[2]

	validator := validator.New()
	err := validator.Struct(pp)
	if err != nil {
		return parsedProxy{}, err
	}

	return pp, nil
}

func (s *WebhookSenderService) UpdateList(proxies []string) {

	var validProxies []string

	for _, proxy := range proxies {
		_, err := s.parseProxy(proxy)
		if err != nil {
			fmt.Printf("invalid proxy: %s\n", proxy)
			continue
		}
		validProxies = append(validProxies, proxy)
	}

	s.list.Store(&validProxies)
}

func (s *WebhookSenderService) GetList() []string {
	listPtr := s.list.Load()
	if listPtr == nil {
		return []string{}
	}

	return *listPtr
}
