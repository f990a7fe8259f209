package league

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// Unbounded marks a tier (or rank) without an upper limit.
const Unbounded = math.MaxInt

// Tier is a power band with its economy values.
type Tier struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Icon       string `json:"icon"`
	Color      string `json:"color"`
	MinPower   int    `json:"minPower"`
	MaxPower   int    `json:"maxPower"`
	EntryFee   int64  `json:"entryFee"`
	WinReward  int64  `json:"winReward"`
	LoseReward int64  `json:"loseReward"`
}

// Contains reports if the power is inside the inclusive band.
func (t Tier) Contains(power int) bool {
	return power >= t.MinPower && power <= t.MaxPower
}

// Points are the league point deltas applied after a battle.
type Points struct {
	Win  int
	Lose int
}

// DefaultPoints is the shipped league point rule.
var DefaultPoints = Points{Win: 10, Lose: -3}

// Table is an ordered, validated list of tiers.
type Table struct {
	tiers []Tier
}

var (
	ErrEmptyTable   = errors.New("league table is empty")
	ErrInvalidBands = errors.New("league bands don't partition the power range")
)

// NewTable validates that the bands start at 0, have no gaps or overlaps and that the last one is unbounded.
func NewTable(tiers []Tier) (*Table, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyTable
	}

	sorted := slices.Clone(tiers)
	slices.SortStableFunc(sorted, func(a, b Tier) int {
		return cmp.Compare(a.MinPower, b.MinPower)
	})

	if sorted[0].MinPower != 0 {
		return nil, fmt.Errorf("%w: lowest tier %s starts at %d", ErrInvalidBands, sorted[0].Key, sorted[0].MinPower)
	}

	seen := make(map[string]struct{}, len(sorted))
	for i, tier := range sorted {
		if tier.Key == "" {
			return nil, fmt.Errorf("%w: tier at position %d has no key", ErrInvalidBands, i)
		}
		if _, dup := seen[tier.Key]; dup {
			return nil, fmt.Errorf("%w: duplicated tier %s", ErrInvalidBands, tier.Key)
		}
		seen[tier.Key] = struct{}{}

		if tier.MaxPower < tier.MinPower {
			return nil, fmt.Errorf("%w: tier %s ends before it starts", ErrInvalidBands, tier.Key)
		}
		if tier.EntryFee < 0 || tier.WinReward < 0 || tier.LoseReward < 0 {
			return nil, fmt.Errorf("tier %s has negative economy values", tier.Key)
		}

		if i == 0 {
			continue
		}

		prev := sorted[i-1]
		if prev.MaxPower == Unbounded || tier.MinPower != prev.MaxPower+1 {
			return nil, fmt.Errorf("%w: %s and %s are not contiguous", ErrInvalidBands, prev.Key, tier.Key)
		}
	}

	if last := sorted[len(sorted)-1]; last.MaxPower != Unbounded {
		return nil, fmt.Errorf("%w: top tier %s is bounded", ErrInvalidBands, last.Key)
	}

	return &Table{tiers: sorted}, nil
}

// DefaultTable returns the shipped league table.
func DefaultTable() *Table {
	table, err := NewTable([]Tier{
		{Key: "BRONZE", Name: "Bronze League", Icon: "🥉", Color: "#CD7F32", MinPower: 0, MaxPower: 149, EntryFee: 50, WinReward: 100, LoseReward: 20},
		{Key: "SILVER", Name: "Silver League", Icon: "🥈", Color: "#C0C0C0", MinPower: 150, MaxPower: 299, EntryFee: 100, WinReward: 200, LoseReward: 40},
		{Key: "GOLD", Name: "Gold League", Icon: "🥇", Color: "#FFD700", MinPower: 300, MaxPower: 499, EntryFee: 200, WinReward: 400, LoseReward: 80},
		{Key: "PLATINUM", Name: "Platinum League", Icon: "💎", Color: "#E5E4E2", MinPower: 500, MaxPower: Unbounded, EntryFee: 500, WinReward: 1000, LoseReward: 200},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// ForPower returns the tier whose band contains the power.
// Negative or unmatched values fall back to the lowest tier.
func (t *Table) ForPower(power int) Tier {
	for _, tier := range t.tiers {
		if tier.Contains(power) {
			return tier
		}
	}
	return t.tiers[0]
}

// ByKey finds a tier by its key, case insensitive.
func (t *Table) ByKey(key string) (Tier, bool) {
	key = strings.ToUpper(strings.TrimSpace(key))
	for _, tier := range t.tiers {
		if tier.Key == key {
			return tier, true
		}
	}
	return Tier{}, false
}

// Tiers returns a copy of the ordered tiers.
func (t *Table) Tiers() []Tier {
	return slices.Clone(t.tiers)
}

// Lowest returns the first tier.
func (t *Table) Lowest() Tier {
	return t.tiers[0]
}

// Apply returns the new league points after a battle, floored at zero.
func (p Points) Apply(current int, won bool) int {
	if won {
		return current + p.Win
	}
	return max(current+p.Lose, 0)
}
