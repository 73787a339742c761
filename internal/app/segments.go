package app

import (
	"context"
	"time"

	"directboost/internal/domain"
)

// CachedSegments is a read-through cache in front of a segment config store.
type CachedSegments struct {
	next  domain.SegmentStore
	cache domain.Cache
	ttl   time.Duration
}

func NewCachedSegments(next domain.SegmentStore, c domain.Cache, ttl time.Duration) *CachedSegments {
	return &CachedSegments{next: next, cache: c, ttl: ttl}
}

func (s *CachedSegments) ActiveSegments(ctx context.Context, userID string) ([]domain.RawSegment, error) {
	key := "segments:" + userID
	var out []domain.RawSegment
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	out, err := s.next.ActiveSegments(ctx, userID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, out, int(s.ttl.Seconds()))
	return out, nil
}

// NewSegmentSource reads from remote when it is set and from local otherwise, with the
// cache in front either way.
func NewSegmentSource(local, remote domain.SegmentStore, c domain.Cache, ttl time.Duration) *CachedSegments {
	next := local
	if remote != nil {
		next = remote
	}
	return NewCachedSegments(next, c, ttl)
}
