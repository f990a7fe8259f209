package score

import (
	"fmt"
	"maps"
)

// Points added by a single upgrade level of each slot.
const (
	EnginePerLevel      = 5
	TiresPerLevel       = 3
	StylePerLevel       = 4
	ReliabilityPerLevel = 5
)

// DefaultArchetype is used for unknown car ids.
const DefaultArchetype = "car_001"

// Stats are the base attributes of a car archetype.
type Stats struct {
	Power       int `json:"power"`
	Speed       int `json:"speed"`
	Style       int `json:"style"`
	Reliability int `json:"reliability"`
}

// Total is the sum of all attributes.
func (s Stats) Total() int {
	return s.Power + s.Speed + s.Style + s.Reliability
}

// Levels is the upgrade level of each slot.
type Levels struct {
	Engine      int `json:"engine"`
	Tires       int `json:"tires"`
	StyleBody   int `json:"style_body"`
	Reliability int `json:"reliability_base"`
}

// Normalized returns a copy with every negative level set to zero.
func (l Levels) Normalized() Levels {
	return Levels{
		Engine:      max(l.Engine, 0),
		Tires:       max(l.Tires, 0),
		StyleBody:   max(l.StyleBody, 0),
		Reliability: max(l.Reliability, 0),
	}
}

// Car is a single owned car (or a bot build).
type Car struct {
	Archetype string `json:"id"`
	Name      string `json:"name"`
	Levels    Levels `json:"levels"`
}

// Breakdown is the detailed score of a car.
type Breakdown struct {
	Power       int `json:"power"`
	Speed       int `json:"speed"`
	Style       int `json:"style"`
	Reliability int `json:"reliability"`
	Total       int `json:"total"`
}

// Catalog is the immutable base stat table.
type Catalog struct {
	base     map[string]Stats
	fallback string
}

// NewCatalog validates and copies a base stat table.
func NewCatalog(base map[string]Stats, fallback string) (*Catalog, error) {
	if _, ok := base[fallback]; !ok {
		return nil, fmt.Errorf("fallback archetype %q is not in the catalog", fallback)
	}

	for id, stats := range base {
		if stats.Power < 0 || stats.Speed < 0 || stats.Style < 0 || stats.Reliability < 0 {
			return nil, fmt.Errorf("archetype %q has negative base stats", id)
		}
	}

	return &Catalog{
		base:     maps.Clone(base),
		fallback: fallback,
	}, nil
}

// DefaultCatalog returns the shipped car table.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(map[string]Stats{
		"car_001": {Power: 40, Speed: 70, Style: 5, Reliability: 25},
		"car_002": {Power: 60, Speed: 95, Style: 10, Reliability: 35},
		"car_003": {Power: 75, Speed: 110, Style: 15, Reliability: 45},
		"car_004": {Power: 90, Speed: 125, Style: 20, Reliability: 50},
		"car_005": {Power: 110, Speed: 140, Style: 30, Reliability: 55},
		"car_006": {Power: 130, Speed: 160, Style: 40, Reliability: 60},
		"car_007": {Power: 145, Speed: 175, Style: 48, Reliability: 65},
		"car_008": {Power: 160, Speed: 195, Style: 55, Reliability: 70},
		"car_009": {Power: 180, Speed: 215, Style: 65, Reliability: 75},
		"car_010": {Power: 200, Speed: 240, Style: 75, Reliability: 80},
		"car_077": {Power: 150, Speed: 180, Style: 70, Reliability: 80},
	}, DefaultArchetype)
	if err != nil {
		panic(err)
	}
	return catalog
}

// Base returns the base stats of an archetype, or of the fallback one.
func (c *Catalog) Base(archetype string) Stats {
	if stats, ok := c.base[archetype]; ok {
		return stats
	}
	return c.base[c.fallback]
}

// Known reports if the archetype is in the table.
func (c *Catalog) Known(archetype string) bool {
	_, ok := c.base[archetype]
	return ok
}

// Fallback returns the archetype used for unknown ids.
func (c *Catalog) Fallback() string {
	return c.fallback
}

// Detailed returns the per attribute subtotals of a car.
func (c *Catalog) Detailed(car Car) Breakdown {
	base := c.Base(car.Archetype)
	levels := car.Levels.Normalized()

	b := Breakdown{
		Power:       base.Power + levels.Engine*EnginePerLevel,
		Speed:       base.Speed + levels.Tires*TiresPerLevel,
		Style:       base.Style + levels.StyleBody*StylePerLevel,
		Reliability: base.Reliability + levels.Reliability*ReliabilityPerLevel,
	}
	b.Total = b.Power + b.Speed + b.Style + b.Reliability

	return b
}

// Score returns the composite strength of a car.
func (c *Catalog) Score(car Car) int {
	return c.Detailed(car).Total
}

// SynthesizeLevels builds upgrade levels on the fallback archetype that land close to a declared power.
// Used for bots without a stored build.
func (c *Catalog) SynthesizeLevels(power int) Car {
	remaining := power - c.base[c.fallback].Total()
	if remaining <= 0 {
		return Car{Archetype: c.fallback}
	}

	// One level in every slot.
	const round = EnginePerLevel + TiresPerLevel + StylePerLevel + ReliabilityPerLevel

	rounds := remaining / round
	remaining %= round

	levels := Levels{Engine: rounds, Tires: rounds, StyleBody: rounds, Reliability: rounds}

	levels.Engine += remaining / EnginePerLevel
	remaining %= EnginePerLevel

	levels.StyleBody += remaining / StylePerLevel
	remaining %= StylePerLevel

	levels.Tires += remaining / TiresPerLevel

	return Car{Archetype: c.fallback, Levels: levels}
}
