package cache

import "sync"

type Cache struct {
	Storage sync.Map
}

// shared caches
var (
	RatesCache             = InitStorage()
	PaymentRateLimitsCache = InitStorage()
	QrCodesCache           = InitStorage()
)
