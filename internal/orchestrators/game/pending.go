package game

import (
	"sync"

	"github.com/MMVS-79/ai-dungeons-dragons-sub001/internal/entities"
)

// pendingPrompt is an investigation offer awaiting accept or decline. It
// exists only in process memory: a restart drops it, and the player's next
// continue simply starts a fresh event.
type pendingPrompt struct {
	Type        entities.EventType
	Description string
	EventNumber int
}

// promptStore is a concurrency-safe map of campaign id to pending prompt.
// Mutations for one campaign are already serialized by the engine's keylock;
// the mutex here protects the map itself across campaigns.
type promptStore struct {
	mu      sync.RWMutex
	prompts map[string]pendingPrompt
}

func newPromptStore() *promptStore {
	return &promptStore{prompts: make(map[string]pendingPrompt)}
}

func (s *promptStore) get(campaignID string) (pendingPrompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[campaignID]
	return p, ok
}

func (s *promptStore) set(campaignID string, p pendingPrompt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts[campaignID] = p
}

func (s *promptStore) clear(campaignID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.prompts, campaignID)
}
