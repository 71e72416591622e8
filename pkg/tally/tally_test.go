package tally

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NivBraz/topworkplaces/internal/models"
)

func TestTally_Add(t *testing.T) {
	tl := New()
	for _, id := range []models.ID{"A", "B", "A", "C", "A"} {
		tl.Add(id)
	}

	assert.Equal(t, 3, tl.Count("A"))
	assert.Equal(t, 1, tl.Count("B"))
	assert.Equal(t, 0, tl.Count("missing"))
	assert.Equal(t, 5, tl.Total())
	assert.Equal(t, 3, tl.Len())
	assert.ElementsMatch(t, []models.WorkplaceCount{
		{WorkplaceID: "A", Count: 3},
		{WorkplaceID: "B", Count: 1},
		{WorkplaceID: "C", Count: 1},
	}, tl.Entries())
}

func TestTally_Empty(t *testing.T) {
	tl := New()
	assert.Empty(t, tl.Entries())
	assert.Zero(t, tl.Total())
}

func TestTally_ConcurrentAdd(t *testing.T) {
	tl := New()
	ids := []models.ID{"A", "B", "C", "D"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tl.Add(ids[j%len(ids)])
			}
		}()
	}
	wg.Wait()

	sum := 0
	for _, e := range tl.Entries() {
		sum += e.Count
	}
	assert.Equal(t, 800, sum)
	assert.Equal(t, tl.Total(), sum)
	assert.Equal(t, 200, tl.Count("A"))
}
