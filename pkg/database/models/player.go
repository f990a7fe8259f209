package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/pvp/score"
)

// Player is the account record owned by the game layer.
// The duel system only reads the garage and moves coins and fuel.
type Player struct {
	ID            string         `gorm:"primaryKey;type:varchar(50)"`
	FirstName     string         `gorm:"type:varchar(100)"`
	Coins         int64          `gorm:"not null;default:0"`
	Fuel          int            `gorm:"not null;default:0"`
	SelectedCarID string         `gorm:"type:varchar(50)"`
	Cars          datatypes.JSON // Garage, see score.DecodeCars for the shape.
	LastExitTime  time.Time      `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveCar returns the selected car, or the first one when the selection is stale.
// The bool is false when the garage is empty.
func (p *Player) ActiveCar() (score.Car, []score.Coercion, bool, error) {
	cars, coercions, err := score.DecodeCars(p.Cars)
	if err != nil {
		return score.Car{}, nil, false, err
	}

	if len(cars) == 0 {
		return score.Car{}, coercions, false, nil
	}

	for _, car := range cars {
		if car.Archetype == p.SelectedCarID {
			return car, coercions, true, nil
		}
	}

	return cars[0], coercions, true, nil
}

// DisplayName is the name shown to opponents.
func (p *Player) DisplayName() string {
	if p.FirstName != "" {
		return p.FirstName
	}
	return "Racer " + p.ID
}
