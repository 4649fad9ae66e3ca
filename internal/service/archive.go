package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/backup"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

const uploadTimeout = 2 * time.Minute

// CloseDay archives the active day and, when an off-site bucket is set up,
// uploads a backup of the resulting state in the background.
func (s *Service) CloseDay(ctx context.Context) (domain.ArchivedDay, error) {
	day, err := apply(ctx, s, "day_close", func(b *ledger.Book) (domain.ArchivedDay, error) {
		return b.CloseDay(), nil
	})
	if err != nil {
		return domain.ArchivedDay{}, err
	}
	s.logger.Info("day closed",
		zap.String("day_id", day.ID),
		zap.String("date", day.Date),
		zap.String("revenue", day.TotalRevenue.String()),
		zap.String("expenses", day.TotalExpenses.String()),
		zap.Int("lines", len(day.Items)),
	)
	s.uploadInBackground("day_close")
	return day, nil
}

func (s *Service) ListHistory(_ context.Context) []domain.ArchivedDay {
	history := s.snapshot().History
	out := make([]domain.ArchivedDay, len(history))
	for i, day := range history {
		out[i] = day.Clone()
	}
	return out
}

// WipeHistory deletes every archived day. It needs the operations password.
func (s *Service) WipeHistory(ctx context.Context, operationsPassword string) (int, error) {
	removed, err := apply(ctx, s, "history_wipe", func(b *ledger.Book) (int, error) {
		if !b.VerifyOperationsPassword(operationsPassword) {
			return 0, errOperationsPassword()
		}
		return b.WipeHistory(), nil
	})
	if err != nil {
		if apperror.Is(err, apperror.CodeUnauthorized) {
			s.logger.Warn("history wipe refused: wrong operations password")
		}
		return 0, err
	}
	s.logger.Warn("history wiped", zap.Int("days", removed), zap.String("actor", actorName(ctx)))
	return removed, nil
}

func errOperationsPassword() *apperror.AppError {
	return apperror.NewUnauthorized("operations password is incorrect")
}

// uploadInBackground encodes the current state and sends it to the off-site
// uploader without holding any lock.
func (s *Service) uploadInBackground(reason string) {
	if _, ok := s.uploader.(backup.NoopUploader); ok {
		return
	}
	state := s.snapshot()
	artifact, err := s.codec.Encode(*state, s.clock.Now(), s.compress)
	if err != nil {
		s.logger.Error("encode backup for upload failed", zap.String("reason", reason), zap.Error(err))
		return
	}

	s.uploads.Add(1)
	go func() {
		defer s.uploads.Done()
		ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
		defer cancel()
		key, err := s.uploader.Upload(ctx, artifact)
		if err != nil {
			s.logger.Error("backup upload failed", zap.String("reason", reason), zap.Error(err))
			return
		}
		s.logger.Info("backup copied off-site", zap.String("reason", reason), zap.String("key", key))
	}()
}
