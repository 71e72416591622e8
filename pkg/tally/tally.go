package tally

import (
	"sync"

	"github.com/NivBraz/topworkplaces/internal/models"
)

// Tally counts occurrences per workplace id. Safe for concurrent use.
type Tally struct {
	counts map[models.ID]int
	total  int
	mu     sync.RWMutex
}

func New() *Tally {
	return &Tally{
		counts: make(map[models.ID]int),
	}
}

func (t *Tally) Add(id models.ID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[id]++
	t.total++
}

func (t *Tally) Count(id models.ID) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[id]
}

// Total is the number of Add calls.
func (t *Tally) Total() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.total
}

func (t *Tally) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.counts)
}

// Entries returns the counts in unspecified order.
func (t *Tally) Entries() []models.WorkplaceCount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]models.WorkplaceCount, 0, len(t.counts))
	for id, count := range t.counts {
		entries = append(entries, models.WorkplaceCount{
			WorkplaceID: id,
			Count:       count,
		})
	}
	return entries
}
