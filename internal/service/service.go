package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"bakeryledger/backend/internal/apperror"
	"bakeryledger/backend/internal/backup"
	"bakeryledger/backend/internal/cache"
	"bakeryledger/backend/internal/clock"
	"bakeryledger/backend/internal/domain"
	"bakeryledger/backend/internal/ledger"
	"bakeryledger/backend/internal/store"
	"bakeryledger/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

type Options struct {
	Clock    clock.Clock
	Logger   *zap.Logger
	Cache    cache.ReportCache
	CacheTTL time.Duration
	Codec    *backup.Codec
	Uploader backup.Uploader
	// CompressBackups selects zstd for exported and uploaded backups.
	CompressBackups bool
	ShopName        string

	// Used only when the loaded state carries no password hashes yet.
	InitialLoginPassword      string
	InitialOperationsPassword string
}

// Service owns the ledger state. Every mutation runs under writeMu on a
// private copy that is saved before it replaces the current state, so a
// failed validation or save leaves nothing behind. Readers take the current
// pointer and never see a half-applied change.
type Service struct {
	repo     store.Repository
	clock    clock.Clock
	logger   *zap.Logger
	cache    cache.ReportCache
	cacheTTL time.Duration
	codec    *backup.Codec
	uploader backup.Uploader
	compress bool
	shopName string

	writeMu sync.Mutex
	stateMu sync.RWMutex
	state   *domain.State

	uploads sync.WaitGroup
}

// Open loads the persisted state, or starts an empty one, and provisions the
// passwords when none are stored.
func Open(ctx context.Context, repo store.Repository, opts Options) (*Service, error) {
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem(time.Local)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Cache == nil {
		opts.Cache = cache.NoopReportCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Uploader == nil {
		opts.Uploader = backup.NoopUploader{}
	}
	if opts.ShopName == "" {
		opts.ShopName = "Bakery"
	}
	if opts.Codec == nil {
		codec, err := backup.NewCodec()
		if err != nil {
			return nil, err
		}
		opts.Codec = codec
	}

	s := &Service{
		repo:     repo,
		clock:    opts.Clock,
		logger:   opts.Logger.Named("service"),
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		codec:    opts.Codec,
		uploader: opts.Uploader,
		compress: opts.CompressBackups,
		shopName: opts.ShopName,
	}

	state, err := repo.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		state = domain.NewState()
		s.logger.Info("no saved ledger, starting empty")
	case err != nil:
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	state.Normalize()
	if state.Epoch == "" {
		state.Epoch = xid.New("ledger")
	}
	s.state = &state

	creds := state.Credentials
	if creds.LoginPasswordHash == "" || creds.OperationsPasswordHash == "" {
		if opts.InitialLoginPassword == "" || opts.InitialOperationsPassword == "" {
			return nil, errors.New("ledger has no passwords and no initial passwords were configured")
		}
		_, err := apply(ctx, s, "provision_passwords", func(b *ledger.Book) (struct{}, error) {
			return struct{}{}, b.SetPasswords(opts.InitialLoginPassword, opts.InitialOperationsPassword)
		})
		if err != nil {
			return nil, fmt.Errorf("provision passwords: %w", err)
		}
		s.logger.Info("provisioned ledger passwords")
	}

	s.logger.Info("ledger loaded",
		zap.Int64("revision", s.state.Revision),
		zap.Int("archived_days", len(s.state.History)),
		zap.Int("active_sales", len(s.state.Sales)),
	)
	return s, nil
}

// snapshot returns the current state. It must be treated as read-only.
func (s *Service) snapshot() *domain.State {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

// Revision is the number of committed mutations.
func (s *Service) Revision() int64 {
	return s.snapshot().Revision
}

func (s *Service) Now() time.Time {
	return s.clock.Now()
}

func (s *Service) ShopName() string {
	return s.shopName
}

// apply runs fn against a copy of the state and commits the copy only if fn
// succeeds and the copy is saved.
func apply[T any](ctx context.Context, s *Service, op string, fn func(b *ledger.Book) (T, error)) (T, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.snapshot()
	next := current.Clone()
	result, err := fn(ledger.NewBook(&next, s.clock))
	if err != nil {
		var zero T
		return zero, err
	}

	next.Revision = current.Revision + 1
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("save ledger failed",
			zap.String("op", op),
			zap.Int64("revision", next.Revision),
			zap.Error(err),
		)
		var zero T
		return zero, apperror.NewInternal(fmt.Errorf("save ledger: %w", err))
	}

	s.stateMu.Lock()
	s.state = &next
	s.stateMu.Unlock()

	s.logger.Debug("ledger saved",
		zap.String("op", op),
		zap.Int64("revision", next.Revision),
		zap.String("actor", actorName(ctx)),
	)
	return result, nil
}

func actorName(ctx context.Context) string {
	if actor, ok := ActorFromContext(ctx); ok {
		return actor.Username
	}
	return "system"
}

// WaitUploads blocks until background backup uploads finish or ctx ends.
func (s *Service) WaitUploads(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.uploads.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
