package service

import (
	"context"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/backup"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
)

// ExportBackup encodes the whole state. compress overrides the configured
// default when non-nil. A copy goes to the off-site uploader.
func (s *Service) ExportBackup(_ context.Context, compress *bool) (backup.Artifact, error) {
	useCompression := s.compress
	if compress != nil {
		useCompression = *compress
	}
	state := s.snapshot()
	artifact, err := s.codec.Encode(*state, s.clock.Now(), useCompression)
	if err != nil {
		return backup.Artifact{}, apperror.NewInternal(err)
	}
	s.logger.Info("backup exported",
		zap.String("name", artifact.Name),
		zap.Int("bytes", len(artifact.Body)),
		zap.Int64("revision", state.Revision),
	)
	s.uploadInBackground("export")
	return artifact, nil
}

// ImportBackup replaces the whole state with a decoded backup after checking
// the operations password. Nothing changes unless the backup decodes and
// validates completely.
func (s *Service) ImportBackup(ctx context.Context, operationsPassword string, raw []byte) (domain.State, error) {
	imported, err := apply(ctx, s, "backup_import", func(b *ledger.Book) (domain.State, error) {
		if !b.VerifyOperationsPassword(operationsPassword) {
			return domain.State{}, errOperationsPassword()
		}
		restored, err := s.codec.Decode(raw)
		if err != nil {
			return domain.State{}, err
		}
		restored.Revision = b.State().Revision
		restored.Epoch = b.State().Epoch
		*b.State() = restored
		return restored, nil
	})
	if err != nil {
		s.logger.Warn("backup import refused", zap.Error(err))
		return domain.State{}, err
	}
	s.logger.Warn("backup imported",
		zap.Int("archived_days", len(imported.History)),
		zap.Int("products", len(imported.Products)),
		zap.String("actor", actorName(ctx)),
	)
	return imported, nil
}

func (s *Service) VerifyLoginPassword(_ context.Context, password string) bool {
	return ledger.NewBook(s.snapshot(), s.clock).VerifyLoginPassword(password)
}

// ChangePasswords sets new login and/or operations passwords once the
// current operations password checks out.
func (s *Service) ChangePasswords(ctx context.Context, req domain.PasswordChangeRequest) error {
	_, err := apply(ctx, s, "passwords_change", func(b *ledger.Book) (struct{}, error) {
		if !b.VerifyOperationsPassword(req.CurrentOperationsPassword) {
			return struct{}{}, errOperationsPassword()
		}
		return struct{}{}, b.SetPasswords(req.NewLoginPassword, req.NewOperationsPassword)
	})
	if err == nil {
		s.logger.Info("passwords changed",
			zap.Bool("login", req.NewLoginPassword != ""),
			zap.Bool("operations", req.NewOperationsPassword != ""),
		)
	}
	return err
}
