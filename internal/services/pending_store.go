package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/redisclient"
)

// PendingStore holds in-flight registration flows keyed by flow id.
// Entries expire on their own; a flow that outlives the TTL is simply
// gone and the client starts over.
type PendingStore interface {
	// Save writes the flow state and (re)arms its TTL
	Save(ctx context.Context, flow *models.PendingRegistration) error

	// Get returns the flow or models.ErrFlowNotFound
	Get(ctx context.Context, flowID string) (*models.PendingRegistration, error)

	// Delete removes the flow. Deleting a missing flow is not an error.
	Delete(ctx context.Context, flowID string) error
}

const pendingKeyPrefix = "pending_flow:"

// RedisPendingStore keeps flow state in Redis so any API replica can
// continue a flow started on another.
type RedisPendingStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

// NewRedisPendingStore creates a Redis-backed pending store
func NewRedisPendingStore(client *redisclient.Client, ttl time.Duration) *RedisPendingStore {
	return &RedisPendingStore{client: client, ttl: ttl}
}

func (s *RedisPendingStore) Save(ctx context.Context, flow *models.PendingRegistration) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to encode pending flow: %w", err)
	}
	if err := s.client.Set(ctx, pendingKeyPrefix+flow.FlowID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save pending flow: %w", err)
	}
	return nil
}

func (s *RedisPendingStore) Get(ctx context.Context, flowID string) (*models.PendingRegistration, error) {
	data, err := s.client.Get(ctx, pendingKeyPrefix+flowID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, models.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to load pending flow: %w", err)
	}

	var flow models.PendingRegistration
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to decode pending flow: %w", err)
	}
	return &flow, nil
}

func (s *RedisPendingStore) Delete(ctx context.Context, flowID string) error {
	if err := s.client.Del(ctx, pendingKeyPrefix+flowID).Err(); err != nil {
		return fmt.Errorf("failed to delete pending flow: %w", err)
	}
	return nil
}

// MemoryPendingStore is an in-process pending store for unit tests and
// single-instance development runs.
type MemoryPendingStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	flows map[string]pendingEntry
	now   func() time.Time
}

type pendingEntry struct {
	flow      models.PendingRegistration
	expiresAt time.Time
}

// NewMemoryPendingStore creates an empty in-memory pending store
func NewMemoryPendingStore(ttl time.Duration) *MemoryPendingStore {
	return &MemoryPendingStore{
		ttl:   ttl,
		flows: make(map[string]pendingEntry),
		now:   time.Now,
	}
}

func (s *MemoryPendingStore) Save(ctx context.Context, flow *models.PendingRegistration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flows[flow.FlowID] = pendingEntry{
		flow:      *flow,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryPendingStore) Get(ctx context.Context, flowID string) (*models.PendingRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.flows[flowID]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, models.ErrFlowNotFound
	}
	flow := entry.flow
	return &flow, nil
}

func (s *MemoryPendingStore) Delete(ctx context.Context, flowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flows, flowID)
	return nil
}
