package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spotlane/pricing/internal/clock"
	pricingdomain "github.com/spotlane/pricing/internal/pricing/domain"
	"github.com/spotlane/pricing/internal/ratelimit"
	suggestiondomain "github.com/spotlane/pricing/internal/suggestion/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler dependencies missing")

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	SuggestionSvc  suggestiondomain.Service
	SuggestionRepo suggestiondomain.Repository
	QuoteRepo      pricingdomain.QuoteRepository
	Limiter        *ratelimit.CalculateLimiter `optional:"true"`
	Config         Config                      `optional:"true"`
}

// Scheduler runs the periodic housekeeping: refreshing price suggestions
// and pruning old quotes and expired suggestions. Multiple replicas
// coordinate through the redis lock when one is configured.
type Scheduler struct {
	db             *gorm.DB
	log            *zap.Logger
	cfg            Config
	clock          clock.Clock
	suggestionSvc  suggestiondomain.Service
	suggestionRepo suggestiondomain.Repository
	quoteRepo      pricingdomain.QuoteRepository
	limiter        *ratelimit.CalculateLimiter
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.SuggestionSvc == nil || p.SuggestionRepo == nil || p.QuoteRepo == nil {
		return nil, ErrInvalidConfig
	}
	cfg := p.Config.withDefaults()
	return &Scheduler{
		db:             p.DB,
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            cfg,
		clock:          p.Clock,
		suggestionSvc:  p.SuggestionSvc,
		suggestionRepo: p.SuggestionRepo,
		quoteRepo:      p.QuoteRepo,
		limiter:        p.Limiter,
	}, nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	token, ok, err := s.acquireLock(parent)
	if err != nil {
		s.log.Warn("scheduler lock unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	defer s.releaseLock(parent, token)

	var runErr error
	runErr = errors.Join(runErr, s.runJob(parent, token, "refresh_suggestions", 2*time.Minute, s.RefreshSuggestionsJob))
	runErr = errors.Join(runErr, s.runJob(parent, token, "prune_quotes", 30*time.Second, s.PruneQuotesJob))
	runErr = errors.Join(runErr, s.runJob(parent, token, "prune_suggestions", 30*time.Second, s.PruneSuggestionsJob))
	return runErr
}

func (s *Scheduler) runJob(parent context.Context, token, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if !s.extendLock(parent, token) {
		s.log.Warn("scheduler lock lost, skipping job", zap.String("job", name))
		return nil
	}

	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			s.log.Warn("job timed out",
				zap.String("job", name),
				zap.Duration("timeout", timeout),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("%s: %w", name, err)
	}

	s.log.Debug("job finished",
		zap.String("job", name),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (s *Scheduler) RefreshSuggestionsJob(ctx context.Context) error {
	refreshed, err := s.suggestionSvc.RefreshAll(ctx)
	if err != nil {
		return err
	}
	if refreshed > 0 {
		s.log.Info("suggestions refreshed", zap.Int("count", refreshed))
	}
	return nil
}

func (s *Scheduler) PruneQuotesJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.QuoteRetention)
	pruned, err := s.quoteRepo.DeleteOlderThan(ctx, s.db, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.log.Info("quotes pruned",
			zap.Int64("count", pruned),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

func (s *Scheduler) PruneSuggestionsJob(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.cfg.SuggestionMaxAge)
	pruned, err := s.suggestionRepo.DeleteExpiredUnapplied(ctx, s.db, cutoff)
	if err != nil {
		return err
	}
	if pruned > 0 {
		s.log.Info("stale suggestions pruned",
			zap.Int64("count", pruned),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) acquireLock(ctx context.Context) (string, bool, error) {
	if !s.limiter.Enabled() {
		return "", true, nil
	}
	return s.limiter.TryLockScheduler(ctx, s.cfg.LockTTL)
}

// extendLock renews the run lock before each job so a long refresh does
// not let the lock expire mid-run. Renewal failures fail open: losing
// redis should not stall housekeeping on a single instance.
func (s *Scheduler) extendLock(ctx context.Context, token string) bool {
	if !s.limiter.Enabled() || token == "" {
		return true
	}
	held, err := s.limiter.ExtendScheduler(ctx, token, s.cfg.LockTTL)
	if err != nil {
		s.log.Warn("scheduler lock extend failed", zap.Error(err))
		return true
	}
	return held
}

func (s *Scheduler) releaseLock(ctx context.Context, token string) {
	if !s.limiter.Enabled() || token == "" {
		return
	}
	if err := s.limiter.ReleaseScheduler(ctx, token); err != nil {
		s.log.Warn("scheduler lock release failed", zap.Error(err))
	}
}
