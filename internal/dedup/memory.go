package dedup

import (
	"context"
	"hash/fnv"
	"sync"
)

const defaultShards = 16

type shard struct {
	mu     sync.Mutex
	latest map[string]string
}

// MemoryStore is an in-process Store. Keys are spread over lock stripes so
// callers working on different channels rarely contend.
type MemoryStore struct {
	shards []*shard
}

// NewMemory creates an empty in-memory store
func NewMemory() *MemoryStore {
	shards := make([]*shard, defaultShards)
	for i := range shards {
		shards[i] = &shard{latest: make(map[string]string)}
	}
	return &MemoryStore{shards: shards}
}

func (m *MemoryStore) shardFor(channelID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(channelID))
	return m.shards[h.Sum32()%uint32(len(m.shards))]
}

func (m *MemoryStore) Seed(_ context.Context, channelID, itemID string) error {
	s := m.shardFor(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[channelID] = itemID
	return nil
}

func (m *MemoryStore) CheckAndUpdate(_ context.Context, channelID, itemID string) (Outcome, error) {
	s := m.shardFor(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.latest[channelID]
	switch {
	case !ok:
		s.latest[channelID] = itemID
		return FirstSeen, nil
	case stored == itemID:
		return Unchanged, nil
	default:
		s.latest[channelID] = itemID
		return Changed, nil
	}
}

// Latest returns the baseline for channelID, if any.
func (m *MemoryStore) Latest(channelID string) (string, bool) {
	s := m.shardFor(channelID)
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.latest[channelID]
	return id, ok
}

func (m *MemoryStore) Close() error { return nil }
