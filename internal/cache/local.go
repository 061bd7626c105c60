package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"roomrate/internal/adapters/observability"
)

const localShards = 16

// Local is the in-process tier. Entries are stored as JSON bytes so reads
// never alias a writer's value, mirroring the remote tier's semantics.
// Striped locking keeps concurrent pricing requests off a single mutex.
type Local struct {
	shards [localShards]localShard
	now    func() time.Time
}

type localShard struct {
	mu    sync.RWMutex
	items map[string]localEntry
}

type localEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewLocal() *Local {
	l := &Local{now: time.Now}
	for i := range l.shards {
		l.shards[i].items = make(map[string]localEntry)
	}
	return l
}

func (l *Local) Name() string { return "memory" }

func (l *Local) shard(key string) *localShard {
	h := uint32(2166136261)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= 16777619
	}
	return &l.shards[h%localShards]
}

func (l *Local) Get(_ context.Context, key string, dst any) (bool, error) {
	s := l.shard(key)
	s.mu.RLock()
	e, ok := s.items[key]
	s.mu.RUnlock()
	if !ok || l.now().After(e.expiresAt) {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		// corrupt entry: drop it and report a miss
		_ = l.Del(context.Background(), key)
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, nil
}

func (l *Local) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s := l.shard(key)
	s.mu.Lock()
	s.items[key] = localEntry{data: b, expiresAt: l.now().Add(ttl)}
	s.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (l *Local) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		s := l.shard(key)
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
	}
	if len(keys) > 0 {
		observability.ObserveCache("memory", "del")
	}
	return nil
}

func (l *Local) DelPrefix(_ context.Context, prefix string) (int, error) {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for k := range s.items {
			if strings.HasPrefix(k, prefix) {
				delete(s.items, k)
				n++
			}
		}
		s.mu.Unlock()
	}
	if n > 0 {
		observability.ObserveCache("memory", "del")
	}
	return n, nil
}

// Len reports live (unexpired) entries; used by tests and the janitor.
func (l *Local) Len() int {
	n := 0
	now := l.now()
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.RLock()
		for _, e := range s.items {
			if now.Before(e.expiresAt) {
				n++
			}
		}
		s.mu.RUnlock()
	}
	return n
}

// StartJanitor drops expired entries every interval until ctx is done.
// Expired entries are already invisible to Get; this only bounds memory.
func (l *Local) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				now := l.now()
				for i := range l.shards {
					s := &l.shards[i]
					s.mu.Lock()
					for k, e := range s.items {
						if now.After(e.expiresAt) {
							delete(s.items, k)
						}
					}
					s.mu.Unlock()
				}
			}
		}
	}()
}
