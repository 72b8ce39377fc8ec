package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/utils/httpclient"
	"go.uber.org/zap"
)

// IdentityRegistry resolves national id and birth certificate numbers
// against the citizen registry and runs ownership cross-checks.
type IdentityRegistry interface {
	// Resolve looks up an identity record by id number. Returns
	// models.ErrIdentityNotFound when the number is unknown.
	Resolve(ctx context.Context, idNumber string) (*models.IdentityRecord, error)

	// CrossCheck reports whether the mobile number is registered to the
	// holder of the id number. A false result is advisory unless strict
	// mode is enabled upstream.
	CrossCheck(ctx context.Context, idNumber, mobileNumber string) (bool, error)

	// PoliceClearance checks a person against the clearance registry
	PoliceClearance(ctx context.Context, nidNumber string) (*models.PoliceClearance, error)
}

// registrySeed is the dataset served by the mock registry in
// development and tests
//
//go:embed registry_seed.json
var registrySeed []byte

type registrySeedFile struct {
	Identities []models.IdentityRecord  `json:"identities"`
	Clearances []models.PoliceClearance `json:"clearances"`
}

// MockRegistry serves a fixed in-memory dataset. It stands in for the
// national registry integration, which has no public sandbox. Lookups
// carry a small artificial delay to keep callers honest about latency.
type MockRegistry struct {
	mu         sync.RWMutex
	records    map[string]*models.IdentityRecord
	clearances map[string]*models.PoliceClearance
	latency    time.Duration
}

// NewMockRegistry creates a registry pre-loaded with the embedded seed
// dataset
func NewMockRegistry() (*MockRegistry, error) {
	var seed registrySeedFile
	if err := json.Unmarshal(registrySeed, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse registry seed: %w", err)
	}

	r := &MockRegistry{
		records:    make(map[string]*models.IdentityRecord),
		clearances: make(map[string]*models.PoliceClearance),
		latency:    20 * time.Millisecond,
	}
	for i := range seed.Identities {
		rec := seed.Identities[i]
		r.records[rec.NIDNumber] = &rec
		if rec.BirthCertificateNumber != "" {
			r.records[rec.BirthCertificateNumber] = &rec
		}
	}
	for i := range seed.Clearances {
		cl := seed.Clearances[i]
		r.clearances[cl.NIDNumber] = &cl
	}
	return r, nil
}

// sleep simulates registry latency while honoring cancellation
func (r *MockRegistry) sleep(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}
	select {
	case <-time.After(r.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AddRecord registers an identity, keyed by NID and birth certificate
// number. Used by tests and the development seeder.
func (r *MockRegistry) AddRecord(rec models.IdentityRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.NIDNumber] = &rec
	if rec.BirthCertificateNumber != "" {
		r.records[rec.BirthCertificateNumber] = &rec
	}
}

func (r *MockRegistry) Resolve(ctx context.Context, idNumber string) (*models.IdentityRecord, error) {
	if err := r.sleep(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[idNumber]
	if !ok {
		return nil, models.ErrIdentityNotFound
	}
	out := *rec
	return &out, nil
}

func (r *MockRegistry) CrossCheck(ctx context.Context, idNumber, mobileNumber string) (bool, error) {
	rec, err := r.Resolve(ctx, idNumber)
	if err != nil {
		return false, err
	}
	// Registries without a registered mobile cannot contradict the claim
	if rec.MobileNumber == "" {
		return true, nil
	}
	return rec.MobileNumber == mobileNumber, nil
}

func (r *MockRegistry) PoliceClearance(ctx context.Context, nidNumber string) (*models.PoliceClearance, error) {
	if err := r.sleep(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if cl, ok := r.clearances[nidNumber]; ok {
		out := *cl
		return &out, nil
	}
	// Unknown to the clearance registry means no adverse record
	return &models.PoliceClearance{
		NIDNumber:    nidNumber,
		Valid:        true,
		Message:      "no adverse record found",
		DangerLevel:  models.DangerLevelLow,
		LastVerified: time.Now().Format("2006-01-02"),
	}, nil
}

// HTTPRegistry queries a remote registry service
type HTTPRegistry struct {
	baseURL string
	pool    *httpclient.Pool
	logger  *logging.SafeLogger
}

// NewHTTPRegistry creates a registry client for the given base URL
func NewHTTPRegistry(baseURL string, pool *httpclient.Pool, logger *logging.SafeLogger) *HTTPRegistry {
	return &HTTPRegistry{baseURL: baseURL, pool: pool, logger: logger}
}

func (r *HTTPRegistry) Resolve(ctx context.Context, idNumber string) (*models.IdentityRecord, error) {
	var rec models.IdentityRecord
	if err := r.getJSON(ctx, fmt.Sprintf("%s/identities/%s", r.baseURL, idNumber), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *HTTPRegistry) CrossCheck(ctx context.Context, idNumber, mobileNumber string) (bool, error) {
	rec, err := r.Resolve(ctx, idNumber)
	if err != nil {
		return false, err
	}
	if rec.MobileNumber == "" {
		return true, nil
	}
	return rec.MobileNumber == mobileNumber, nil
}

func (r *HTTPRegistry) PoliceClearance(ctx context.Context, nidNumber string) (*models.PoliceClearance, error) {
	var cl models.PoliceClearance
	if err := r.getJSON(ctx, fmt.Sprintf("%s/clearances/%s", r.baseURL, nidNumber), &cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *HTTPRegistry) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build registry request: %w", err)
	}

	client := r.pool.Get()
	defer r.pool.Put(client)

	resp, err := client.Do(req)
	if err != nil {
		r.logger.Error("registry unreachable", zap.Error(err))
		return fmt.Errorf("registry unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrIdentityNotFound
	case resp.StatusCode >= 300:
		r.logger.Error("registry returned error status",
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode registry response: %w", err)
	}
	return nil
}

