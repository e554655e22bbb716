package tests

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"cabs/internal/domain"
	"cabs/internal/redis"
	"cabs/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRANSIT REPOSITORY
// ──────────────────────────────────────────────

// MockTransitRepository is a mock implementation of TransitRepository.
type MockTransitRepository struct {
	mu       sync.RWMutex
	transits map[string]*domain.Transit

	// Counters for verification
	CreateCallCount  int32
	GetByIDCallCount int32
	UpdateCallCount  int32

	// Error injection
	CreateError error
	UpdateError error
	ListError   error
}

// NewMockTransitRepository creates a new mock transit repository.
func NewMockTransitRepository() *MockTransitRepository {
	return &MockTransitRepository{
		transits: make(map[string]*domain.Transit),
	}
}

// AddTransit adds a transit to the mock repository.
func (m *MockTransitRepository) AddTransit(transit *domain.Transit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *transit
	m.transits[transit.ID] = &copy
}

func (m *MockTransitRepository) Create(ctx context.Context, transit *domain.Transit) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.transits[transit.ID]; exists {
		return ErrMockDBConstraint
	}
	copy := *transit
	m.transits[transit.ID] = &copy
	return nil
}

func (m *MockTransitRepository) GetByID(ctx context.Context, id string) (*domain.Transit, error) {
	atomic.AddInt32(&m.GetByIDCallCount, 1)
	m.mu.RLock()
	defer m.mu.RUnlock()
	transit, ok := m.transits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *transit
	return &copy, nil
}

func (m *MockTransitRepository) Update(ctx context.Context, transit *domain.Transit) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transits[transit.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *transit
	m.transits[transit.ID] = &copy
	return nil
}

func (m *MockTransitRepository) ListByDriverBetween(ctx context.Context, driverID string, from, to time.Time) ([]*domain.Transit, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Transit, 0)
	for _, t := range m.transits {
		if t.DriverID == driverID && !t.DateTime.Before(from) && !t.DateTime.After(to) {
			copy := *t
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DateTime.After(result[j].DateTime)
	})
	return result, nil
}

// GetTransit returns the stored transit for test assertions.
func (m *MockTransitRepository) GetTransit(id string) *domain.Transit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transits[id]
}

// CountTransits returns the number of stored transits.
func (m *MockTransitRepository) CountTransits() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.transits)
}

// ──────────────────────────────────────────────
// MOCK CACHE STORE
// ──────────────────────────────────────────────

// MockCacheStore is an in-memory implementation of the transit and report caches.
type MockCacheStore struct {
	mu       sync.Mutex
	transits map[string]redis.CachedTransit
	reports  map[string]redis.CachedDriverReport

	// Counters
	TransitHits     int32
	ReportHits      int32
	InvalidateCount int32
	SetReportCount  int32
	LastReportTTL   time.Duration

	// ReportInvalidations counts InvalidateDriverReports calls per driver.
	ReportInvalidations map[string]int

	// Error injection
	GetError error
	SetError error
}

// NewMockCacheStore creates a new mock cache store.
func NewMockCacheStore() *MockCacheStore {
	return &MockCacheStore{
		transits: make(map[string]redis.CachedTransit),
		reports:  make(map[string]redis.CachedDriverReport),

		ReportInvalidations: make(map[string]int),
	}
}

func (m *MockCacheStore) GetTransit(ctx context.Context, transitID string) (*redis.CachedTransit, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cached, ok := m.transits[transitID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.TransitHits, 1)
	return &cached, nil
}

func (m *MockCacheStore) SetTransit(ctx context.Context, transit *redis.CachedTransit) error {
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transits[transit.ID] = *transit
	return nil
}

func (m *MockCacheStore) InvalidateTransit(ctx context.Context, transitID string) error {
	atomic.AddInt32(&m.InvalidateCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.transits, transitID)
	return nil
}

func (m *MockCacheStore) InvalidateDriverReports(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportInvalidations[driverID]++
	for key, report := range m.reports {
		if report.DriverID == driverID {
			delete(m.reports, key)
		}
	}
	return nil
}

func (m *MockCacheStore) GetDriverReport(ctx context.Context, driverID string, lastDays int) (*redis.CachedDriverReport, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cached, ok := m.reports[reportKey(driverID, lastDays)]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.ReportHits, 1)
	return &cached, nil
}

func (m *MockCacheStore) SetDriverReport(ctx context.Context, report *redis.CachedDriverReport, ttl time.Duration) error {
	atomic.AddInt32(&m.SetReportCount, 1)
	if m.SetError != nil {
		return m.SetError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[reportKey(report.DriverID, report.LastDays)] = *report
	m.LastReportTTL = ttl
	return nil
}

// HasReport checks if a report for the driver and lookback is cached.
func (m *MockCacheStore) HasReport(driverID string, lastDays int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.reports[reportKey(driverID, lastDays)]
	return ok
}

// HasTransit checks if a transit is cached.
func (m *MockCacheStore) HasTransit(transitID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.transits[transitID]
	return ok
}

func reportKey(driverID string, lastDays int) string {
	return fmt.Sprintf("%s:%d", driverID, lastDays)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStore.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]mockLock

	// Counters
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

type mockLock struct {
	token  string
	expiry time.Time
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]mockLock),
	}
}

func (m *MockLockStore) AcquireTransitLock(ctx context.Context, transitID string, ttl time.Duration) (string, bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return "", false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return "", false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:transit:" + transitID
	if held, exists := m.locks[key]; exists && time.Now().Before(held.expiry) {
		return "", false, nil // Lock still held.
	}

	token := fmt.Sprintf("token-%d", atomic.LoadInt32(&m.AcquireCallCount))
	m.locks[key] = mockLock{token: token, expiry: time.Now().Add(ttl)}
	return token, true, nil
}

func (m *MockLockStore) ReleaseTransitLock(ctx context.Context, transitID, token string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	key := "lock:transit:" + transitID
	if held, ok := m.locks[key]; ok && held.token == token {
		delete(m.locks, key)
	}
	return nil
}

// IsLocked checks if a transit is locked (for test assertions).
func (m *MockLockStore) IsLocked(transitID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	held, exists := m.locks["lock:transit:"+transitID]
	return exists && time.Now().Before(held.expiry)
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockDBConstraint = errors.New("mock: unique constraint violation")
	ErrMockTimeout      = errors.New("mock: operation timeout")
)

// Ensure mocks implement the production interfaces.
var (
	_ repository.TransitRepository = (*MockTransitRepository)(nil)
	_ redis.TransitCacheInterface  = (*MockCacheStore)(nil)
	_ redis.ReportCacheInterface   = (*MockCacheStore)(nil)
	_ redis.LockStoreInterface     = (*MockLockStore)(nil)
)
