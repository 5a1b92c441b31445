package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bericyb/dislinkedIn/internal/local"
	"github.com/bericyb/dislinkedIn/internal/metrics"
	"github.com/bericyb/dislinkedIn/internal/model"
	"github.com/bericyb/dislinkedIn/internal/remote"
)

// RemoteStore is the subset of the remote client the counter service drives.
type RemoteStore interface {
	Get(ctx context.Context, postURN string) (*model.DislikeRecord, error)
	Insert(ctx context.Context, postURN string) (*model.DislikeRecord, error)
	Decrement(ctx context.Context, postURN string) (*model.DislikeRecord, error)
	GetAll(ctx context.Context) (map[string]int, error)
}

// CountCache is the cache-aside layer in front of the remote store. Reads
// populate it, mutations invalidate it. Satisfied by *CacheService.
type CountCache interface {
	GetCount(ctx context.Context, postURN string) (int, bool)
	SetCount(ctx context.Context, postURN string, count int)
	Invalidate(ctx context.Context, postURN string)
}

// CounterService is the single entry point for counter reads and mutations.
// It tries the remote store first when one is configured and falls back to
// the local store on any transport failure.
//
// The fallback is decided per call, not stickily: a flaky remote store can
// interleave remote and local state for the same URN across a session. That
// split-brain is a known limitation carried over deliberately; there is no
// reconciliation once the remote store recovers.
type CounterService struct {
	mu     sync.RWMutex
	remote RemoteStore
	local  *local.Store
	cache  CountCache
	log    zerolog.Logger
}

func NewCounterService(rs RemoteStore, ls *local.Store, cache CountCache, logger zerolog.Logger) *CounterService {
	return &CounterService{
		remote: rs,
		local:  ls,
		cache:  cache,
		log:    logger,
	}
}

func (s *CounterService) remoteStore() RemoteStore {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.remote
}

// GetDislike returns the current count for a URN, zero when absent in both
// stores.
func (s *CounterService) GetDislike(ctx context.Context, postURN string) int {
	metrics.DislikesTotal.WithLabelValues("getDislike").Inc()

	if s.cache != nil {
		if count, ok := s.cache.GetCount(ctx, postURN); ok {
			return count
		}
	}

	if rs := s.remoteStore(); rs != nil {
		rec, err := rs.Get(ctx, postURN)
		if err == nil {
			count := 0
			if rec != nil {
				count = rec.DislikeCount
			}
			if s.cache != nil {
				s.cache.SetCount(ctx, postURN, count)
			}
			return count
		}
		s.fellBack("getDislike", postURN, err)
	}

	return s.local.Get(postURN)
}

// AddDislike records one more dislike and returns the new count.
func (s *CounterService) AddDislike(ctx context.Context, postURN string) (int, error) {
	metrics.DislikesTotal.WithLabelValues("addDislike").Inc()
	if s.cache != nil {
		s.cache.Invalidate(ctx, postURN)
	}

	if rs := s.remoteStore(); rs != nil {
		rec, err := rs.Insert(ctx, postURN)
		if err == nil {
			return rec.DislikeCount, nil
		}
		s.fellBack("addDislike", postURN, err)
	}

	return s.local.Add(postURN)
}

// RemoveDislike takes one dislike away and returns the new count. Removing
// from a URN with no record is a no-op that reports zero.
func (s *CounterService) RemoveDislike(ctx context.Context, postURN string) (int, error) {
	metrics.DislikesTotal.WithLabelValues("removeDislike").Inc()
	if s.cache != nil {
		s.cache.Invalidate(ctx, postURN)
	}

	if rs := s.remoteStore(); rs != nil {
		rec, err := rs.Decrement(ctx, postURN)
		if err == nil {
			count := 0
			if rec != nil {
				count = rec.DislikeCount
			}
			return count, nil
		}
		s.fellBack("removeDislike", postURN, err)
	}

	return s.local.Remove(postURN)
}

// GetAllDislikes returns the full counter map for initial sync and the
// settings surface.
func (s *CounterService) GetAllDislikes(ctx context.Context) map[string]int {
	metrics.DislikesTotal.WithLabelValues("getAllDislikes").Inc()

	if rs := s.remoteStore(); rs != nil {
		dislikes, err := rs.GetAll(ctx)
		if err == nil {
			return dislikes
		}
		s.fellBack("getAllDislikes", "", err)
	}

	return s.local.Snapshot()
}

// ClearAll wipes the local store. The remote store is shared across all
// users and is left untouched.
func (s *CounterService) ClearAll(ctx context.Context) error {
	metrics.DislikesTotal.WithLabelValues("clearAllDislikes").Inc()
	return s.local.Clear()
}

// Stats summarizes the counter set for the settings surface.
func (s *CounterService) Stats(ctx context.Context) model.StatsResponse {
	dislikes := s.GetAllDislikes(ctx)

	total := 0
	for _, count := range dislikes {
		total += count
	}
	return model.StatsResponse{
		TotalDislikes: total,
		PostsDisliked: len(dislikes),
	}
}

// SetBackendConfig persists a remote-store override and swaps in a fresh
// client for it. Subsequent calls go remote-first against the new store.
func (s *CounterService) SetBackendConfig(ctx context.Context, url, key string) error {
	if err := s.local.SetBackendConfig(url, key); err != nil {
		return err
	}

	s.mu.Lock()
	if url == "" {
		s.remote = nil
	} else {
		s.remote = remote.New(url, key)
	}
	s.mu.Unlock()

	s.log.Info().Str("backend_url", url).Msg("remote store configuration updated")
	return nil
}

func (s *CounterService) fellBack(action, postURN string, err error) {
	metrics.FallbackTotal.Inc()
	s.log.Warn().
		Err(err).
		Str("action", action).
		Str("post_urn", postURN).
		Msg("remote store failed, using local fallback")
}
