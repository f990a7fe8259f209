package filters

// Default and maximum page sizes of the list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Query parameters identifying the requesting player.
type PlayerParams struct {
	UserId string `form:"userId" binding:"required"`
}

// Body of the challenge endpoint.
// The opponent is validated by the service so a missing one maps to its own error.
type ChallengeParams struct {
	UserId     string `json:"userId" binding:"required"`
	OpponentId string `json:"opponentId"`
}

// Body of the limit reset endpoint.
type ResetLimitParams struct {
	UserId string `json:"userId" binding:"required"`
}

// Query parameters of the match history.
type MatchHistoryParams struct {
	UserId string `form:"userId" binding:"required"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

type MatchHistoryFilter struct {
	UserId string
	Page   int
	Limit  int
}

// NewMatchHistoryFilter clamps the pagination values.
func NewMatchHistoryFilter(qp *MatchHistoryParams) *MatchHistoryFilter {
	return &MatchHistoryFilter{
		UserId: qp.UserId,
		Page:   max(qp.Page, 1),
		Limit:  pageSize(qp.Limit),
	}
}

// Query parameters of the notification list.
type NotificationParams struct {
	UserId     string `form:"userId" binding:"required"`
	UnreadOnly bool   `form:"unread"`
	Limit      int    `form:"limit"`
}

type NotificationFilter struct {
	UserId     string
	UnreadOnly bool
	Limit      int
}

func NewNotificationFilter(qp *NotificationParams) *NotificationFilter {
	return &NotificationFilter{
		UserId:     qp.UserId,
		UnreadOnly: qp.UnreadOnly,
		Limit:      pageSize(qp.Limit),
	}
}

// Body of the mark read endpoint. No ids marks everything.
type MarkReadParams struct {
	UserId string `json:"userId" binding:"required"`
	Ids    []uint `json:"notificationIds"`
}

func pageSize(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	return min(limit, MaxPageSize)
}
