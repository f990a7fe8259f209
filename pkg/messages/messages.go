package messages

const (
	CouldNotFindId      = "couldn't find the %s id"
	FiltersNotNil       = "filters can't be nil"
	OperationInProgress = "operation already in progress, please wait"
	InvalidPlayerId     = "player id is required"
	InvalidOpponentId   = "opponent id is required"
	RateLimitReached    = "battle limit reached (%d/%d), watch an ad to keep racing"
	NotEnoughFuel       = "not enough fuel to race"
	NotEnoughCoins      = "not enough coins for the %s entry fee (%d)"
	NotificationTitle   = "You were challenged!"
	NotificationWon     = "%s challenged you and lost. You earned %d coins."
	NotificationLost    = "%s challenged you and won. You earned %d coins."
)
