package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/worklens/triage/evidence"
	"github.com/worklens/triage/vector"
)

// Store implements evidence.Store using in-memory storage. It is the default
// backend for tests and for deployments small enough to load the corpus at
// startup.
type Store struct {
	mu      sync.RWMutex
	items   map[string]evidence.Item
	vectors map[string][]float32
}

// New creates an empty in-memory evidence store.
func New() *Store {
	return &Store{
		items:   make(map[string]evidence.Item),
		vectors: make(map[string][]float32),
	}
}

// Add indexes a passage with its embedding vector.
func (s *Store) Add(ctx context.Context, item evidence.Item, vec []float32) error {
	if item.ID == "" {
		return fmt.Errorf("evidence item ID cannot be empty")
	}
	if len(vec) == 0 {
		return fmt.Errorf("embedding vector cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = item
	s.vectors[item.ID] = vec
	return nil
}

// Search finds passages similar to the query vector within the allowed categories.
func (s *Store) Search(ctx context.Context, queryVector []float32, allowed []evidence.Category, topK int) ([]evidence.Item, error) {
	if len(queryVector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	if topK <= 0 {
		topK = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]evidence.Item, 0, len(s.items))
	for id, item := range s.items {
		if !categoryAllowed(allowed, &item) {
			continue
		}
		vec := s.vectors[id]
		if len(vec) != len(queryVector) {
			continue
		}
		item.RelevanceScore = vector.CosineSimilarity(queryVector, vec)
		results = append(results, item)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of indexed passages.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

// Clear removes all indexed passages.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]evidence.Item)
	s.vectors = make(map[string][]float32)
	return nil
}

func categoryAllowed(allowed []evidence.Category, item *evidence.Item) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, c := range allowed {
		if c.Matches(item) {
			return true
		}
	}
	return false
}
