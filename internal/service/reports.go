package service

import (
	"context"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/cache"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/report"
)

// DayRecords lists the per-day records selected by filter, oldest first.
func (s *Service) DayRecords(_ context.Context, filter report.Filter) []report.DayRecord {
	state := s.snapshot()
	now := s.clock.Now()
	today := clock.Today(s.clock)
	return filter.Apply(report.BuildDayRecords(state, now, today), today, s.clock.Location())
}

func (s *Service) ComputeTotals(ctx context.Context, filter report.Filter) (report.Totals, error) {
	r, err := s.Report(ctx, filter)
	if err != nil {
		return report.Totals{}, err
	}
	return r.Totals, nil
}

func (s *Service) ComputeProductStats(ctx context.Context, filter report.Filter) ([]report.ProductStat, error) {
	r, err := s.Report(ctx, filter)
	if err != nil {
		return nil, err
	}
	return r.Products, nil
}

// Report builds totals, product stats and day rows for filter. Results are
// cached per ledger epoch, state revision and calendar day; cache failures only cost a
// recomputation.
func (s *Service) Report(ctx context.Context, filter report.Filter) (report.Report, error) {
	state := s.snapshot()
	now := s.clock.Now()
	today := clock.Today(s.clock)
	key := cache.ReportKey(state.Epoch, state.Revision, today, filter)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return *cached, nil
	}

	records := filter.Apply(report.BuildDayRecords(state, now, today), today, s.clock.Location())
	built := report.Build(filter, records, now)
	if err := s.cache.Set(ctx, key, &built, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
	return built, nil
}
