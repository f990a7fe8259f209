package battle

import (
	"fmt"
	"slices"
)

var eventText = map[EventKind]string{
	PerfectStart:     "nails a perfect start",
	SlowStart:        "stalls at the line",
	PowerSurge:       "gets a power surge on the straight",
	PowerLack:        "runs out of power on the straight",
	PerfectTurn:      "takes the corner perfectly",
	Crash:            "clips the wall in the corner",
	ReliabilityBonus: "keeps the engine running smooth",
	Breakdown:        "suffers a breakdown",
}

var offsets = map[Category]int{
	CategoryStart:       offsetStart,
	CategoryPower:       offsetPower,
	CategoryTurn:        offsetTurn,
	CategoryReliability: offsetReliability,
}

// narrate builds the ordered narration of a battle.
func narrate(attacker, defender SideTrace, verdict Verdict) []Narration {
	lines := []Narration{{OffsetMs: offsetLights, Kind: "lights", Text: "Lights out, the race is on"}}

	for _, side := range []struct {
		side  Side
		trace SideTrace
		delay int
	}{
		{side: Attacker, trace: attacker},
		{side: Defender, trace: defender, delay: offsetDefenderDelay},
	} {
		for _, event := range side.trace.Events {
			lines = append(lines, Narration{
				OffsetMs: offsets[event.Category] + side.delay,
				Side:     side.side,
				Kind:     string(event.Kind),
				Text:     fmt.Sprintf("The %s %s", side.side, eventText[event.Kind]),
			})
		}
	}

	lines = append(lines, Narration{
		OffsetMs: offsetFinish,
		Side:     verdict.Winner,
		Kind:     "finish",
		Text:     fmt.Sprintf("The %s wins %d to %d", verdict.Winner, max(verdict.AttackerScore, verdict.DefenderScore), min(verdict.AttackerScore, verdict.DefenderScore)),
	})

	slices.SortStableFunc(lines, func(a, b Narration) int {
		return a.OffsetMs - b.OffsetMs
	})

	return lines
}
