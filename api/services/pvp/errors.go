package pvpservice

import (
	"errors"
	"fmt"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/messages"
)

var (
	ErrPlayerNotFound       = errors.New("player not found")
	ErrOpponentNotFound     = errors.New("opponent not found")
	ErrNoActiveCar          = errors.New("no active car")
	ErrInsufficientResource = errors.New(messages.NotEnoughFuel)
	ErrInsufficientCurrency = errors.New("not enough coins")
	ErrSelfChallenge        = errors.New("can't challenge yourself")
	ErrMissingOpponent      = errors.New(messages.InvalidOpponentId)
	ErrChallengeInProgress  = errors.New(messages.OperationInProgress)
	ErrRateLimited          = errors.New("battle limit reached")
)

// RateLimitedError is returned when the attacker used every battle of the window.
type RateLimitedError struct {
	Current int64
	Max     int64
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf(messages.RateLimitReached, e.Current, e.Max)
}

// Is makes errors.Is(err, ErrRateLimited) work.
func (e *RateLimitedError) Is(target error) bool {
	return target == ErrRateLimited
}
