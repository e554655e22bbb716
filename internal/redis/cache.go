package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// TransitCacheTTL bounds how stale a cached transit can be if an invalidation is lost.
const TransitCacheTTL = 30 * time.Second

const (
	transitCachePrefix = "cache:transit:"
	reportCachePrefix  = "cache:driverreport:"
)

// CachedTransit represents a cached transit entity.
type CachedTransit struct {
	ID                  string    `json:"id"`
	ClientID            string    `json:"client_id"`
	DriverID            string    `json:"driver_id,omitempty"`
	FromAddressID       string    `json:"from_address_id"`
	ToAddressID         string    `json:"to_address_id"`
	CarClass            string    `json:"car_class"`
	Status              string    `json:"status"`
	DateTime            time.Time `json:"date_time"`
	DistanceKm          float64   `json:"distance_km"`
	EstimatedPriceCents *int64    `json:"estimated_price_cents,omitempty"`
	PriceCents          *int64    `json:"price_cents,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	CompletedAt         time.Time `json:"completed_at,omitempty"`
	CancelledAt         time.Time `json:"cancelled_at,omitempty"`
	CancelReason        string    `json:"cancel_reason,omitempty"`
}

// CachedReportEntry is one transit line of a cached driver report.
type CachedReportEntry struct {
	TransitID  string    `json:"transit_id"`
	Status     string    `json:"status"`
	Category   string    `json:"category"`
	DateTime   time.Time `json:"date_time"`
	DistanceKm float64   `json:"distance_km"`
	PriceCents *int64    `json:"price_cents,omitempty"`
}

// CachedDriverReport represents a cached driver report.
type CachedDriverReport struct {
	DriverID       string              `json:"driver_id"`
	LastDays       int                 `json:"last_days"`
	From           time.Time           `json:"from"`
	To             time.Time           `json:"to"`
	Entries        []CachedReportEntry `json:"entries"`
	CompletedCount int                 `json:"completed_count"`
	TotalCents     int64               `json:"total_cents"`
}

// GetTransit retrieves a transit from cache. A miss returns nil, nil.
func (s *CacheStore) GetTransit(ctx context.Context, transitID string) (*CachedTransit, error) {
	var transit CachedTransit
	found, err := s.getJSON(ctx, transitCachePrefix+transitID, &transit)
	if err != nil || !found {
		return nil, err
	}
	return &transit, nil
}

// SetTransit stores a transit in cache.
func (s *CacheStore) SetTransit(ctx context.Context, transit *CachedTransit) error {
	return s.setJSON(ctx, transitCachePrefix+transit.ID, transit, TransitCacheTTL)
}

// InvalidateTransit removes a transit from cache.
func (s *CacheStore) InvalidateTransit(ctx context.Context, transitID string) error {
	return s.client.Del(ctx, transitCachePrefix+transitID).Err()
}

// GetDriverReport retrieves a report from cache. A miss returns nil, nil.
// Reports of one driver share a hash keyed by lookback, so callers should
// check the report's To time against their own TTL.
func (s *CacheStore) GetDriverReport(ctx context.Context, driverID string, lastDays int) (*CachedDriverReport, error) {
	data, err := s.client.HGet(ctx, reportKey(driverID), strconv.Itoa(lastDays)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var report CachedDriverReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SetDriverReport stores a report in its driver's hash and resets the hash expiry to ttl.
func (s *CacheStore) SetDriverReport(ctx context.Context, report *CachedDriverReport, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	key := reportKey(report.DriverID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.Itoa(report.LastDays), data)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	return err
}

// InvalidateDriverReports removes every cached report of a driver.
func (s *CacheStore) InvalidateDriverReports(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, reportKey(driverID)).Err()
}

func (s *CacheStore) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *CacheStore) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func reportKey(driverID string) string {
	return reportCachePrefix + driverID
}
