package permissions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a storage load shared by concurrent callers.
const DefaultLoadTimeout = 10 * time.Second

// Service serves permission sets from storage through the cache.
type Service struct {
	repo        Repository
	cache       *Cache
	logger      *slog.Logger
	group       singleflight.Group
	loadTimeout time.Duration
}

// NewService wires a Service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, loadTimeout: DefaultLoadTimeout}
}

// Fetch implements Fetcher so a Loader can run in-process.
func (s *Service) Fetch(ctx context.Context, actor string) (Set, error) {
	return s.Set(ctx, actor)
}

// Set returns the stored set for actor, reading through the cache. Cache
// failures are logged and fall back to storage.
func (s *Service) Set(ctx context.Context, actor string) (Set, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Set{}, ErrInvalidActor
	}
	if set, ok, err := s.cache.Get(ctx, actor); err != nil {
		s.logger.Warn("permissions cache get", slog.String("actor", actor), slog.Any("error", err))
	} else if ok {
		return set, nil
	}

	return s.sharedLoad(ctx, actor)
}

// Reload reads actor's set from storage and overwrites the cached copy,
// ignoring whatever the cache currently holds. Actors that no longer exist
// have their cached entry dropped.
func (s *Service) Reload(ctx context.Context, actor string) (Set, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Set{}, ErrInvalidActor
	}
	s.group.Forget(actor)
	set, err := s.sharedLoad(ctx, actor)
	if errors.Is(err, ErrNotFound) {
		if ierr := s.cache.Invalidate(ctx, actor); ierr != nil {
			s.logger.Warn("permissions cache invalidate", slog.String("actor", actor), slog.Any("error", ierr))
		}
	}
	return set, err
}

// sharedLoad runs one storage load per actor at a time. The load is detached
// from the caller's cancellation so a caller that gives up does not fail the
// others waiting on the same key.
func (s *Service) sharedLoad(ctx context.Context, actor string) (Set, error) {
	ch := s.group.DoChan(actor, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.load(loadCtx, actor)
	})
	select {
	case <-ctx.Done():
		return Set{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Set{}, res.Err
		}
		return res.Val.(Set), nil
	}
}

func (s *Service) load(ctx context.Context, actor string) (Set, error) {
	set, err := s.repo.LoadSet(ctx, actor)
	if err != nil {
		return Set{}, err
	}
	if err := s.cache.Put(ctx, actor, set); err != nil {
		s.logger.Warn("permissions cache put", slog.String("actor", actor), slog.Any("error", err))
	}
	return set, nil
}

// Replace stores a new set for actor and drops the cached copy.
func (s *Service) Replace(ctx context.Context, actor string, set Set) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	if err := s.repo.ReplaceSet(ctx, actor, set); err != nil {
		return fmt.Errorf("permissions: replace %s: %w", actor, err)
	}
	if err := s.cache.Invalidate(ctx, actor); err != nil {
		s.logger.Warn("permissions cache invalidate", slog.String("actor", actor), slog.Any("error", err))
	}
	return nil
}

// Warm loads every known actor into the cache and returns how many were warmed.
func (s *Service) Warm(ctx context.Context) (int, error) {
	actors, err := s.repo.ListActors(ctx)
	if err != nil {
		return 0, fmt.Errorf("permissions: list actors: %w", err)
	}
	if err := s.cache.Bump(ctx); err != nil {
		return 0, fmt.Errorf("permissions: bump cache: %w", err)
	}
	warmed := 0
	for _, actor := range actors {
		if err := ctx.Err(); err != nil {
			return warmed, err
		}
		if _, err := s.Set(ctx, actor); err != nil {
			return warmed, fmt.Errorf("permissions: warm %s: %w", actor, err)
		}
		warmed++
	}
	return warmed, nil
}
