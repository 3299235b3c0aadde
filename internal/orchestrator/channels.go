package orchestrator

import (
	"strings"
	"sync"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// channelSet is the live list of monitored channels. The poller reads it
// once per cycle while the watcher may append to it.
type channelSet struct {
	mu       sync.RWMutex
	channels []models.ChannelRef
	ids      map[string]bool
	names    map[string]bool
}

func newChannelSet() *channelSet {
	return &channelSet{ids: map[string]bool{}, names: map[string]bool{}}
}

// add appends ch unless its id is already present
func (s *channelSet) add(ch models.ChannelRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[nameKey(ch.Name)] = true
	if s.ids[ch.ID] {
		return false
	}
	s.ids[ch.ID] = true
	s.channels = append(s.channels, ch)
	return true
}

func (s *channelSet) hasName(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.names[nameKey(name)]
}

// Channels returns a snapshot in insertion order
func (s *channelSet) Channels() []models.ChannelRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChannelRef(nil), s.channels...)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
