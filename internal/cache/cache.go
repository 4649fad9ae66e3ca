package cache

import (
	"context"
	"fmt"
	"time"

	"bakeryledger/backend/internal/report"
)

type ReportCache interface {
	Get(ctx context.Context, key string) (*report.Report, bool, error)
	Set(ctx context.Context, key string, value *report.Report, ttl time.Duration) error
}

// ReportKey changes whenever the ledger epoch, the state revision or the
// calendar day changes, so stale entries simply expire.
func ReportKey(epoch string, revision int64, today string, filter report.Filter) string {
	return fmt.Sprintf("bakery:report:%s:%d:%s:%s", epoch, revision, today, filter.Key())
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) (*report.Report, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ *report.Report, _ time.Duration) error {
	return nil
}
