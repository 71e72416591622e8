package app

import (
	"github.com/NivBraz/topworkplaces/internal/models"
	"github.com/NivBraz/topworkplaces/pkg/parser"
	"github.com/NivBraz/topworkplaces/pkg/tally"
)

// CountShifts tallies shifts per workplace. Shifts without a workplace id
// are not counted.
func CountShifts(shifts []models.Shift) *tally.Tally {
	t := tally.New()
	for _, s := range shifts {
		if s.WorkplaceID == "" {
			continue
		}
		t.Add(s.WorkplaceID)
	}
	return t
}

// Rank orders the tallied workplaces by count, highest first, breaking ties
// by workplace id, and keeps at most n.
func Rank(t *tally.Tally, n int) []models.WorkplaceCount {
	counts := t.Entries()
	parser.SortWorkplaceCounts(counts)

	if n >= 0 && len(counts) > n {
		return counts[:n]
	}
	return counts
}

// TopWorkplaces returns the n workplaces with the most shifts.
func TopWorkplaces(shifts []models.Shift, n int) []models.WorkplaceCount {
	return Rank(CountShifts(shifts), n)
}
