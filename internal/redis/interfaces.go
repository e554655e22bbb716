package redis

import (
	"context"
	"time"
)

// TransitCacheInterface defines read-through caching of transit snapshots.
// A changed transit also invalidates the cached reports of its driver.
type TransitCacheInterface interface {
	GetTransit(ctx context.Context, transitID string) (*CachedTransit, error)
	SetTransit(ctx context.Context, transit *CachedTransit) error
	InvalidateTransit(ctx context.Context, transitID string) error
	InvalidateDriverReports(ctx context.Context, driverID string) error
}

// ReportCacheInterface defines caching of generated driver reports.
type ReportCacheInterface interface {
	GetDriverReport(ctx context.Context, driverID string, lastDays int) (*CachedDriverReport, error)
	SetDriverReport(ctx context.Context, report *CachedDriverReport, ttl time.Duration) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireTransitLock(ctx context.Context, transitID string, ttl time.Duration) (token string, acquired bool, err error)
	ReleaseTransitLock(ctx context.Context, transitID, token string) error
}

// Ensure concrete types implement interfaces.
var (
	_ TransitCacheInterface = (*CacheStore)(nil)
	_ ReportCacheInterface  = (*CacheStore)(nil)
	_ LockStoreInterface    = (*LockStore)(nil)
)
