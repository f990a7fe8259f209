package battle

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/score"
)

// Side of a battle.
type Side string

const (
	Attacker Side = "attacker"
	Defender Side = "defender"
)

// Category is the attribute an event belongs to.
type Category string

const (
	CategoryPower       Category = "power"
	CategoryStart       Category = "start"
	CategoryTurn        Category = "turn"
	CategoryReliability Category = "reliability"
)

// EventKind names a single battle event.
type EventKind string

const (
	PowerSurge       EventKind = "power_surge"
	PowerLack        EventKind = "power_lack"
	PerfectStart     EventKind = "perfect_start"
	SlowStart        EventKind = "slow_start"
	PerfectTurn      EventKind = "perfect_turn"
	Crash            EventKind = "crash"
	ReliabilityBonus EventKind = "reliability_bonus"
	Breakdown        EventKind = "breakdown"
)

// Jitter bounds applied to the accumulated score of each side.
const (
	JitterMin = 0.90
	JitterMax = 1.10
)

// Display offsets of the narration, in milliseconds.
const (
	offsetLights        = 0
	offsetStart         = 500
	offsetPower         = 1500
	offsetTurn          = 2500
	offsetReliability   = 3500
	offsetFinish        = 4500
	offsetDefenderDelay = 250
)

// Chance is the probability pair of a category for one side.
type Chance struct {
	Category Category `json:"category"`
	Positive float64  `json:"positive"`
	Negative float64  `json:"negative"`
}

// Event is a fired event and its effect on the score.
type Event struct {
	Category   Category  `json:"category"`
	Kind       EventKind `json:"kind"`
	Positive   bool      `json:"positive"`
	Multiplier float64   `json:"multiplier"`
}

// SideTrace is everything that happened to one side.
type SideTrace struct {
	Breakdown score.Breakdown `json:"breakdown"`
	Chances   []Chance        `json:"chances"`
	Events    []Event         `json:"events"`
	Jitter    float64         `json:"jitter"`
	Final     int             `json:"final"`
}

// Narration is a time-offset line used to animate the result.
type Narration struct {
	OffsetMs int    `json:"offsetMs"`
	Side     Side   `json:"side,omitempty"`
	Kind     string `json:"kind"`
	Text     string `json:"text"`
}

// Trace is the full record of a battle.
type Trace struct {
	Attacker  SideTrace   `json:"attacker"`
	Defender  SideTrace   `json:"defender"`
	Narration []Narration `json:"narration"`
}

// Verdict is the result of a battle.
// The attacker only wins when its final score is strictly higher.
type Verdict struct {
	Winner        Side  `json:"winner"`
	AttackerScore int   `json:"attackerScore"`
	DefenderScore int   `json:"defenderScore"`
	Margin        int   `json:"margin"`
	Trace         Trace `json:"trace"`
}

// AttackerWon is a shortcut for Winner == Attacker.
func (v Verdict) AttackerWon() bool {
	return v.Winner == Attacker
}

type rule struct {
	category       Category
	positive       EventKind
	negative       EventKind
	positiveFactor float64
	negativeFactor float64
	chances        func(b score.Breakdown) (float64, float64)
}

var rules = []rule{
	{
		category:       CategoryStart,
		positive:       PerfectStart,
		negative:       SlowStart,
		positiveFactor: 1.40,
		negativeFactor: 0.75,
		chances: func(b score.Breakdown) (float64, float64) {
			speed := float64(b.Speed)
			return clamp(speed/600, 0.02, 0.35), clamp(0.30*(200-speed)/200, 0, 0.30)
		},
	},
	{
		category:       CategoryPower,
		positive:       PowerSurge,
		negative:       PowerLack,
		positiveFactor: 1.25,
		negativeFactor: 0.80,
		chances: func(b score.Breakdown) (float64, float64) {
			power := float64(b.Power)
			return clamp(power/1000, 0.02, 0.30), clamp(0.25*(150-power)/150, 0, 0.25)
		},
	},
	{
		category:       CategoryTurn,
		positive:       PerfectTurn,
		negative:       Crash,
		positiveFactor: 1.20,
		negativeFactor: 0.60,
		chances: func(b score.Breakdown) (float64, float64) {
			style := float64(b.Style)
			return clamp(style/200, 0.02, 0.40), clamp(0.20-style/500, 0.03, 0.20)
		},
	},
	{
		category:       CategoryReliability,
		positive:       ReliabilityBonus,
		negative:       Breakdown,
		positiveFactor: 1.15,
		negativeFactor: 0.70,
		chances: func(b score.Breakdown) (float64, float64) {
			reliability := float64(b.Reliability)
			return clamp(reliability/300, 0.02, 0.35), clamp(0.18-reliability/600, 0.02, 0.18)
		},
	},
}

// Resolver runs battles. Safe for concurrent use.
type Resolver struct {
	catalog *score.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewResolver creates a resolver.
// A nil source seeds a new one from the runtime random generator.
func NewResolver(catalog *score.Catalog, src rand.Source) *Resolver {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), uint64(time.Now().UnixNano()))
	}

	return &Resolver{
		catalog: catalog,
		rng:     rand.New(src),
	}
}

// Resolve runs a single battle between two cars.
func (r *Resolver) Resolve(attacker, defender score.Car) Verdict {
	attackerBreakdown := r.catalog.Detailed(attacker)
	defenderBreakdown := r.catalog.Detailed(defender)

	r.mu.Lock()
	attackerTrace := r.run(attackerBreakdown)
	defenderTrace := r.run(defenderBreakdown)
	r.mu.Unlock()

	verdict := Verdict{
		Winner:        Defender,
		AttackerScore: attackerTrace.Final,
		DefenderScore: defenderTrace.Final,
	}
	if attackerTrace.Final > defenderTrace.Final {
		verdict.Winner = Attacker
	}

	verdict.Margin = attackerTrace.Final - defenderTrace.Final
	if verdict.Margin < 0 {
		verdict.Margin = -verdict.Margin
	}

	verdict.Trace = Trace{
		Attacker:  attackerTrace,
		Defender:  defenderTrace,
		Narration: narrate(attackerTrace, defenderTrace, verdict),
	}

	return verdict
}

// run rolls every category for one side. Must hold r.mu.
func (r *Resolver) run(b score.Breakdown) SideTrace {
	trace := SideTrace{Breakdown: b, Events: []Event{}, Chances: []Chance{}, Jitter: 1}

	// A broken car doesn't race.
	if b.Total <= 0 {
		return trace
	}

	running := float64(b.Total)
	for _, rl := range rules {
		pos, neg := rl.chances(b)
		trace.Chances = append(trace.Chances, Chance{Category: rl.category, Positive: pos, Negative: neg})

		roll := r.rng.Float64()
		switch {
		case roll < pos:
			trace.Events = append(trace.Events, Event{Category: rl.category, Kind: rl.positive, Positive: true, Multiplier: rl.positiveFactor})
			running *= rl.positiveFactor
		case roll < pos+neg:
			trace.Events = append(trace.Events, Event{Category: rl.category, Kind: rl.negative, Multiplier: rl.negativeFactor})
			running *= rl.negativeFactor
		}
	}

	trace.Jitter = JitterMin + r.rng.Float64()*(JitterMax-JitterMin)
	trace.Final = int(math.Round(running * trace.Jitter))

	return trace
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
