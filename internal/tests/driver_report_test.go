package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"cabs/internal/domain"
	"cabs/internal/pricing"
	"cabs/internal/redis"
	"cabs/internal/service"
)

func newReportService(repo *MockTransitRepository, cache *MockCacheStore, ttl time.Duration) *service.DriverReportService {
	var reportCache redis.ReportCacheInterface
	if cache != nil {
		reportCache = cache
	}
	return service.NewDriverReportService(repo, pricing.NewCalculator(), reportCache, ttl, nil)
}

func priced(t *domain.Transit, estimate, final int64) *domain.Transit {
	if estimate > 0 {
		m := domain.MoneyFrom(estimate)
		t.EstimatedPrice = &m
	}
	if final > 0 {
		m := domain.MoneyFrom(final)
		t.Price = &m
	}
	return t
}

func TestDriverReport_ListsRecentTransits(t *testing.T) {
	t.Parallel()

	now := time.Now()
	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "recent-completed", domain.TransitStatusCompleted, now.Add(-2*time.Hour)), 2900, 2900))
	repo.AddTransit(priced(newTransit(t, "recent-draft", domain.TransitStatusDraft, now.Add(-1*time.Hour)), 3800, 0))
	repo.AddTransit(priced(newTransit(t, "old-completed", domain.TransitStatusCompleted, now.Add(-72*time.Hour)), 6000, 6000))

	other := newTransit(t, "other-driver", domain.TransitStatusCompleted, now.Add(-1*time.Hour))
	other.DriverID = "driver-2"
	repo.AddTransit(priced(other, 2900, 2900))

	svc := newReportService(repo, nil, 0)

	report, err := svc.CreateReport(context.Background(), "driver-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.LastDays != service.DefaultReportDays {
		t.Errorf("expected default lookback %d, got %d", service.DefaultReportDays, report.LastDays)
	}
	if len(report.Transits) != 2 {
		t.Fatalf("expected 2 transits, got %d", len(report.Transits))
	}
	if report.Transits[0].TransitID != "recent-draft" {
		t.Errorf("expected newest transit first, got %s", report.Transits[0].TransitID)
	}
	if report.CompletedCount != 1 {
		t.Errorf("expected 1 completed transit, got %d", report.CompletedCount)
	}
	if report.TotalEarnings != domain.MoneyFrom(2900) {
		t.Errorf("expected earnings 29.00, got %s", report.TotalEarnings)
	}

	draft := report.Transits[0]
	if draft.Price == nil || *draft.Price != domain.MoneyFrom(3800) {
		t.Errorf("draft entry should carry its estimate, got %v", draft.Price)
	}
}

func TestDriverReport_WiderLookback(t *testing.T) {
	t.Parallel()

	now := time.Now()
	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "recent", domain.TransitStatusCompleted, now.Add(-2*time.Hour)), 2900, 2900))
	repo.AddTransit(priced(newTransit(t, "older", domain.TransitStatusCompleted, now.Add(-72*time.Hour)), 6000, 6000))

	report, err := newReportService(repo, nil, 0).CreateReport(context.Background(), "driver-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.CompletedCount != 2 {
		t.Errorf("expected 2 completed transits, got %d", report.CompletedCount)
	}
	if report.TotalEarnings != domain.MoneyFrom(8900) {
		t.Errorf("expected earnings 89.00, got %s", report.TotalEarnings)
	}
}

func TestDriverReport_Validation(t *testing.T) {
	t.Parallel()

	svc := newReportService(NewMockTransitRepository(), nil, 0)
	ctx := context.Background()

	if _, err := svc.CreateReport(ctx, "", 1); err != service.ErrInvalidDriverID {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}

	for _, days := range []int{-1, service.MaxReportDays + 1} {
		if _, err := svc.CreateReport(ctx, "driver-1", days); err != service.ErrInvalidLookback {
			t.Errorf("lastDays=%d: expected ErrInvalidLookback, got %v", days, err)
		}
	}
}

func TestDriverReport_ServedFromCache(t *testing.T) {
	t.Parallel()

	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "transit-1", domain.TransitStatusCompleted, time.Now().Add(-time.Hour)), 2900, 2900))
	cache := NewMockCacheStore()
	svc := newReportService(repo, cache, time.Minute)
	ctx := context.Background()

	first, err := svc.CreateReport(ctx, "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.SetReportCount != 1 {
		t.Errorf("expected report to be cached once, got %d", cache.SetReportCount)
	}
	if cache.LastReportTTL != time.Minute {
		t.Errorf("expected ttl 1m, got %s", cache.LastReportTTL)
	}

	repo.ListError = errors.New("repository should not be queried")

	second, err := svc.CreateReport(ctx, "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.ReportHits != 1 {
		t.Errorf("expected 1 cache hit, got %d", cache.ReportHits)
	}
	if second.TotalEarnings != first.TotalEarnings || len(second.Transits) != len(first.Transits) {
		t.Error("cached report differs from the generated one")
	}
	if second.Transits[0].Category != first.Transits[0].Category {
		t.Errorf("category lost in cache: %s vs %s", second.Transits[0].Category, first.Transits[0].Category)
	}
}

func TestDriverReport_RepositoryError(t *testing.T) {
	t.Parallel()

	repo := NewMockTransitRepository()
	repo.ListError = ErrMockTimeout

	_, err := newReportService(repo, nil, 0).CreateReport(context.Background(), "driver-1", 1)
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected ErrMockTimeout, got %v", err)
	}
}

func TestDriverReport_ExcludesFutureTransits(t *testing.T) {
	t.Parallel()

	now := time.Now()
	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "past", domain.TransitStatusCompleted, now.Add(-time.Hour)), 2900, 2900))
	repo.AddTransit(priced(newTransit(t, "scheduled", domain.TransitStatusDraft, now.Add(48*time.Hour)), 3800, 0))

	report, err := newReportService(repo, nil, 0).CreateReport(context.Background(), "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(report.Transits) != 1 || report.Transits[0].TransitID != "past" {
		t.Errorf("expected only the past transit, got %+v", report.Transits)
	}
}

func TestDriverReport_RefreshedAfterCompletion(t *testing.T) {
	t.Parallel()

	repo := NewMockTransitRepository()
	repo.AddTransit(newTransit(t, "transit-1", domain.TransitStatusInTransit, time.Now().Add(-time.Hour)))
	cache := NewMockCacheStore()
	reports := newReportService(repo, cache, time.Hour)
	transits := newTransitService(repo, cache, NewMockLockStore())
	ctx := context.Background()

	before, err := reports.CreateReport(ctx, "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if before.CompletedCount != 0 {
		t.Fatalf("expected no completed transits yet, got %d", before.CompletedCount)
	}

	completed, err := transits.CompleteTransit(ctx, "transit-1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if cache.HasReport("driver-1", 1) {
		t.Error("completion should drop the driver's cached reports")
	}

	after, err := reports.CreateReport(ctx, "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after.CompletedCount != 1 || after.TotalEarnings != completed.Quote.Total {
		t.Errorf("expected earnings %s from one completed transit, got %s from %d",
			completed.Quote.Total, after.TotalEarnings, after.CompletedCount)
	}
}

func TestDriverReport_ExpiredCacheEntryIsRegenerated(t *testing.T) {
	t.Parallel()

	repo := NewMockTransitRepository()
	repo.AddTransit(priced(newTransit(t, "transit-1", domain.TransitStatusCompleted, time.Now().Add(-time.Hour)), 2900, 2900))
	cache := NewMockCacheStore()
	ctx := context.Background()

	stale := time.Now().Add(-2 * time.Minute)
	_ = cache.SetDriverReport(ctx, &redis.CachedDriverReport{
		DriverID: "driver-1",
		LastDays: 1,
		From:     stale.AddDate(0, 0, -1),
		To:       stale,
	}, time.Minute)

	report, err := newReportService(repo, cache, time.Minute).CreateReport(ctx, "driver-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.CompletedCount != 1 {
		t.Errorf("expected the report to be rebuilt from the repository, got %d completed", report.CompletedCount)
	}
	if cache.SetReportCount != 2 {
		t.Errorf("expected the rebuilt report to be cached, got %d writes", cache.SetReportCount)
	}
}
