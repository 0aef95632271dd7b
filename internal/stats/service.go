package stats

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tasktrack/tasktrack/internal/shared"
)

// RepositoryPort defines the aggregate queries.
type RepositoryPort interface {
	Counts(ctx context.Context) (total, completed int, err error)
	ByCategory(ctx context.Context) ([]CategoryCount, error)
	ByUser(ctx context.Context) ([]UserCount, error)
}

// Service serves the summary from cache, computing it at most once per miss.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires a repository with a cache. cache may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Summary returns the cached summary, filling the cache on a miss. Cache
// failures degrade to a direct computation.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	if cached, ok, err := s.cache.Get(ctx); err != nil {
		s.logger.Warn("stats cache read", slog.Any("error", err))
	} else if ok {
		return cached, nil
	}

	ch := s.group.DoChan(summaryKey, func() (interface{}, error) {
		return s.refresh(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Summary{}, shared.Internal("Error fetching todo statistics", res.Err)
		}
		return res.Val.(Summary), nil
	}
}

// Warm recomputes the summary and stores it regardless of cache state.
func (s *Service) Warm(ctx context.Context) (Summary, error) {
	return s.refresh(ctx)
}

// Invalidate drops every cached summary.
func (s *Service) Invalidate(ctx context.Context) error {
	s.group.Forget(summaryKey)
	return s.cache.Bump(ctx)
}

// refresh pins the cache version before computing so an Invalidate that
// lands mid-computation leaves the result under the old version.
func (s *Service) refresh(ctx context.Context) (Summary, error) {
	ver, verErr := s.cache.Version(ctx)
	sum, err := s.Compute(ctx)
	if err != nil {
		return Summary{}, err
	}
	if verErr != nil {
		s.logger.Warn("stats cache version", slog.Any("error", verErr))
		return sum, nil
	}
	if err := s.cache.PutVersion(ctx, ver, sum); err != nil {
		s.logger.Warn("stats cache write", slog.Any("error", err))
	}
	return sum, nil
}

// Compute runs the aggregate queries concurrently.
func (s *Service) Compute(ctx context.Context) (Summary, error) {
	var sum Summary
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, completed, err := s.repo.Counts(ctx)
		if err != nil {
			return err
		}
		sum.Total, sum.Completed, sum.Pending = total, completed, total-completed
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ByCategory(ctx)
		if err != nil {
			return err
		}
		sum.ByCategory = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.repo.ByUser(ctx)
		if err != nil {
			return err
		}
		sum.ByUser = rows
		return nil
	})

	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if sum.ByCategory == nil {
		sum.ByCategory = []CategoryCount{}
	}
	if sum.ByUser == nil {
		sum.ByUser = []UserCount{}
	}
	return sum, nil
}
