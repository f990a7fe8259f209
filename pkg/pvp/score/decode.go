package score

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Upgrade slot names as stored in the player garage.
const (
	SlotEngine      = "engine"
	SlotTires       = "tires"
	SlotStyleBody   = "style_body"
	SlotReliability = "reliability_base"
)

// ErrMalformedCar is returned when a stored car can't be used at all.
var ErrMalformedCar = errors.New("malformed car data")

// storedCar is the garage shape persisted by the game layer.
type storedCar struct {
	ID    string                     `json:"id"`
	Name  string                     `json:"name"`
	Parts map[string]json.RawMessage `json:"parts"`
}

type storedPart struct {
	Level json.RawMessage `json:"level"`
}

// Coercion records a level that had to be fixed while decoding.
type Coercion struct {
	CarID string
	Slot  string
	Raw   string
}

// DecodeCars parses a garage JSON array.
// Cars without an id are dropped, invalid levels are coerced to a valid value and reported.
func DecodeCars(data []byte) ([]Car, []Coercion, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil, nil
	}

	var stored []storedCar
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedCar, err)
	}

	cars := make([]Car, 0, len(stored))
	var coercions []Coercion
	for _, s := range stored {
		if strings.TrimSpace(s.ID) == "" {
			continue
		}
		car, fixed := s.toCar()
		cars = append(cars, car)
		coercions = append(coercions, fixed...)
	}

	return cars, coercions, nil
}

// DecodeCar parses a single car object.
func DecodeCar(data []byte) (Car, []Coercion, error) {
	var stored storedCar
	if err := json.Unmarshal(data, &stored); err != nil {
		return Car{}, nil, fmt.Errorf("%w: %v", ErrMalformedCar, err)
	}

	car, coercions := stored.toCar()
	return car, coercions, nil
}

// EncodeCar converts a car back to the stored garage shape.
func EncodeCar(car Car) ([]byte, error) {
	levels := car.Levels.Normalized()
	parts := map[string]map[string]int{
		SlotEngine:      {"level": levels.Engine},
		SlotTires:       {"level": levels.Tires},
		SlotStyleBody:   {"level": levels.StyleBody},
		SlotReliability: {"level": levels.Reliability},
	}

	return json.Marshal(map[string]any{
		"id":    car.Archetype,
		"name":  car.Name,
		"parts": parts,
	})
}

func (s storedCar) toCar() (Car, []Coercion) {
	car := Car{Archetype: s.ID, Name: s.Name}
	var coercions []Coercion

	for slot, raw := range s.Parts {
		target := car.Levels.slot(slot)
		if target == nil {
			continue
		}

		var part storedPart
		if err := json.Unmarshal(raw, &part); err != nil {
			coercions = append(coercions, Coercion{CarID: s.ID, Slot: slot, Raw: string(raw)})
			continue
		}

		level, ok := parseLevel(part.Level)
		if !ok {
			coercions = append(coercions, Coercion{CarID: s.ID, Slot: slot, Raw: string(part.Level)})
		}
		*target = level
	}

	return car, coercions
}

func (l *Levels) slot(name string) *int {
	switch name {
	case SlotEngine:
		return &l.Engine
	case SlotTires:
		return &l.Tires
	case SlotStyleBody:
		return &l.StyleBody
	case SlotReliability:
		return &l.Reliability
	}
	return nil
}

// parseLevel accepts numbers and numeric strings. The bool is false when the value was coerced.
func parseLevel(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, true
	}

	exact := true

	var number float64
	if err := json.Unmarshal(raw, &number); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, false
		}
		number, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return 0, false
		}
		exact = false
	}

	if math.IsNaN(number) || math.IsInf(number, 0) || number < 0 {
		return 0, false
	}

	if number > math.MaxInt32 {
		return math.MaxInt32, false
	}

	return int(math.Floor(number)), exact && number == math.Floor(number)
}
