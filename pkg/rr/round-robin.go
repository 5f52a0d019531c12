package rr

import (
	"sync"
	"sync/atomic"
)

// RoundRobin cycles over an endpoint list that may be swapped at runtime.
type RoundRobin interface {
	Next() (string, bool)
	Len() int
}

type rr struct {
	data  *atomic.Pointer[[]string]
	mu    sync.Mutex
	index uint32
}

func New(data *atomic.Pointer[[]string]) *rr {
	return &rr{data: data}
}

func (r *rr) Next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	endpoints := *r.data.Load()

	if len(endpoints) == 0 {
		return "", false
	}

	target := endpoints[int(r.index)%len(endpoints)]
	r.index++

	return target, true
}

func (r *rr) Len() int {
	return len(*r.data.Load())
}
