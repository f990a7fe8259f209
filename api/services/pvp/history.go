package pvpservice

import (
	"context"
	"encoding/json"

	"github.com/tsdmkp/idle-garage-game-backend/api/converters"
	"github.com/tsdmkp/idle-garage-game-backend/api/dto"
	"github.com/tsdmkp/idle-garage-game-backend/api/filters"
)

// GetMatchHistory returns a page of the duels of a player, seen from that player side.
func (s *PvPService) GetMatchHistory(ctx context.Context, filter *filters.MatchHistoryFilter) (*dto.MatchHistory, error) {
	matches, total, err := s.store.Matches().GetPlayerMatchHistory(ctx, filter.UserId, filter.Page, filter.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int64(0)
	if filter.Limit > 0 {
		totalPages = (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	}

	return &dto.MatchHistory{
		Matches: converters.ConvertHistory(filter.UserId, matches),
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetNotifications returns the inbox of a player and the unread count.
func (s *PvPService) GetNotifications(ctx context.Context, filter *filters.NotificationFilter) (*dto.NotificationList, error) {
	notifications, err := s.store.Notifications().GetNotifications(ctx, filter.UserId, filter.UnreadOnly, filter.Limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.store.Notifications().CountUnread(ctx, filter.UserId)
	if err != nil {
		return nil, err
	}

	list := &dto.NotificationList{
		Notifications: make([]dto.Notification, 0, len(notifications)),
		UnreadCount:   unread,
	}

	for _, n := range notifications {
		entry := dto.Notification{
			Id:        n.ID,
			Type:      n.Type,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if len(n.Data) > 0 {
			if err := json.Unmarshal(n.Data, &entry.Data); err != nil {
				s.log.Warn().Err(err).Uint("notificationId", n.ID).Msg("unreadable notification data")
			}
		}
		list.Notifications = append(list.Notifications, entry)
	}

	return list, nil
}

// MarkNotificationsRead marks the given notifications, or all of them when ids is empty.
func (s *PvPService) MarkNotificationsRead(ctx context.Context, userId string, ids []uint) (int64, error) {
	return s.store.Notifications().MarkRead(ctx, userId, ids)
}
