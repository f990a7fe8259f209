package league

import (
	"cmp"
	"fmt"
	"slices"
)

// Rank is a cosmetic title derived from lifetime wins.
type Rank struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	MinWins int    `json:"minWins"`
	MaxWins int    `json:"maxWins"`
}

// Standing is the rank of a win count plus the progress to the next one.
type Standing struct {
	Rank     Rank  `json:"rank"`
	Next     *Rank `json:"next,omitempty"`
	Progress int   `json:"progress"`
}

// ReputationTable is an ordered, validated list of ranks.
type ReputationTable struct {
	ranks []Rank
}

// NewReputationTable applies the same partition rules as the league table.
func NewReputationTable(ranks []Rank) (*ReputationTable, error) {
	if len(ranks) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := slices.Clone(ranks)
	slices.SortStableFunc(sorted, func(a, b Rank) int {
		return cmp.Compare(a.MinWins, b.MinWins)
	})

	if sorted[0].MinWins != 0 {
		return nil, fmt.Errorf("%w: lowest rank %s starts at %d", ErrInvalidBands, sorted[0].Key, sorted[0].MinWins)
	}

	for i, rank := range sorted {
		if rank.MaxWins < rank.MinWins {
			return nil, fmt.Errorf("%w: rank %s ends before it starts", ErrInvalidBands, rank.Key)
		}
		if i == 0 {
			continue
		}
		if prev := sorted[i-1]; prev.MaxWins == Unbounded || rank.MinWins != prev.MaxWins+1 {
			return nil, fmt.Errorf("%w: %s and %s are not contiguous", ErrInvalidBands, prev.Key, rank.Key)
		}
	}

	if last := sorted[len(sorted)-1]; last.MaxWins != Unbounded {
		return nil, fmt.Errorf("%w: top rank %s is bounded", ErrInvalidBands, last.Key)
	}

	return &ReputationTable{ranks: sorted}, nil
}

// DefaultReputation returns the shipped reputation ranks.
func DefaultReputation() *ReputationTable {
	table, err := NewReputationTable([]Rank{
		{Key: "ROOKIE", Name: "Rookie", Icon: "🔰", MinWins: 0, MaxWins: 9},
		{Key: "STREET_RACER", Name: "Street Racer", Icon: "🏁", MinWins: 10, MaxWins: 49},
		{Key: "PRO", Name: "Pro Racer", Icon: "🏎️", MinWins: 50, MaxWins: 149},
		{Key: "CHAMPION", Name: "Champion", Icon: "🏆", MinWins: 150, MaxWins: 499},
		{Key: "LEGEND", Name: "Legend", Icon: "👑", MinWins: 500, MaxWins: Unbounded},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// ForWins returns the standing for a lifetime win count.
func (r *ReputationTable) ForWins(wins int) Standing {
	idx := 0
	for i, rank := range r.ranks {
		if wins >= rank.MinWins && wins <= rank.MaxWins {
			idx = i
			break
		}
	}

	current := r.ranks[idx]
	if idx == len(r.ranks)-1 {
		return Standing{Rank: current, Progress: 100}
	}

	next := r.ranks[idx+1]
	span := next.MinWins - current.MinWins
	progress := 0
	if wins > current.MinWins {
		progress = (wins - current.MinWins) * 100 / span
	}

	return Standing{Rank: current, Next: &next, Progress: progress}
}

// Ranks returns a copy of the ordered ranks.
func (r *ReputationTable) Ranks() []Rank {
	return slices.Clone(r.ranks)
}
