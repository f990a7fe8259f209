package notificationrepo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/tsdmkp/idle-garage-game-backend/pkg/database/models"
)

// NotificationRepository is the public interface for the player inbox.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, userId string) (int64, error)
	MarkRead(ctx context.Context, userId string, ids []uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a notification repository.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// CreateNotification stores a new unread entry.
func (nr *notificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := nr.db.WithContext(ctx).Create(notification).Error; err != nil {
		return fmt.Errorf("couldn't create the notification: %w", err)
	}
	return nil
}

// GetNotifications returns the newest notifications of a player.
func (nr *notificationRepository) GetNotifications(ctx context.Context, userId string, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := nr.db.WithContext(ctx).Where("user_id = ?", userId)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("couldn't get the notifications: %w", err)
	}

	return notifications, nil
}

// CountUnread counts the unread notifications of a player.
func (nr *notificationRepository) CountUnread(ctx context.Context, userId string) (int64, error) {
	var count int64
	err := nr.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("couldn't count the unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead flags notifications of the player as read.
// An empty id list marks every notification.
func (nr *notificationRepository) MarkRead(ctx context.Context, userId string, ids []uint) (int64, error) {
	query := nr.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userId, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	result := query.Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("couldn't mark the notifications as read: %w", result.Error)
	}

	return result.RowsAffected, nil
}
