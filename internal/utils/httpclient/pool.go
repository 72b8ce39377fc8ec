package httpclient

import (
	"net/http"
	"sync"
	"time"
)

// Pool recycles HTTP clients used for outbound gateway calls (SMS
// dispatch, identity registry lookups). Checkout never blocks: an
// empty pool hands out a fresh client instead.
type Pool struct {
	clients chan *http.Client
	factory func() *http.Client
	mu      sync.RWMutex
	closed  bool
}

// NewPool creates a pool pre-populated with size clients
func NewPool(size int) *Pool {
	p := &Pool{
		clients: make(chan *http.Client, size),
		factory: newGatewayClient,
	}
	for i := 0; i < size; i++ {
		p.clients <- p.factory()
	}
	return p
}

// newGatewayClient builds a client tuned for short gateway round trips.
// OTP dispatch sits on the request path, so the timeout stays tight.
func newGatewayClient() *http.Client {
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        50,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}
}

// Get retrieves a client from the pool, or creates one if the pool is
// empty or closed
func (p *Pool) Get() *http.Client {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return p.factory()
	}

	select {
	case client := <-p.clients:
		return client
	default:
		return p.factory()
	}
}

// Put returns a client to the pool; surplus clients are discarded
func (p *Pool) Put(client *http.Client) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return
	}

	select {
	case p.clients <- client:
	default:
	}
}

// Close marks the pool closed. Clients still checked out keep working.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.clients)
}

var (
	globalPool *Pool
	once       sync.Once
)

// GetGlobalPool returns the shared pool used by gateway adapters
func GetGlobalPool() *Pool {
	once.Do(func() {
		globalPool = NewPool(10)
	})
	return globalPool
}
