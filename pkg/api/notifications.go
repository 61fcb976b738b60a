package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/zfogg/wayfarer/cli/pkg/logger"
)

// GetNotifications retrieves notifications with pagination
func GetNotifications(ctx context.Context, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error) {
	logger.Debug("Fetching notifications", "page", page, "unread_only", unreadOnly)

	var response NotificationListResponse
	req := newRequest(ctx).
		SetQueryParams(pageParams(page, pageSize)).
		SetResult(&response)
	if unreadOnly {
		req.SetQueryParam("unread", "true")
	}

	if _, err := send(req, resty.MethodGet, "/api/v1/notifications"); err != nil {
		return nil, err
	}

	return &response, nil
}

// GetUnreadCount retrieves the count of unread notifications
func GetUnreadCount(ctx context.Context) (int, error) {
	logger.Debug("Fetching unread notification count")

	var response struct {
		UnreadCount int `json:"unread_count"`
	}
	req := newRequest(ctx).SetResult(&response)

	if _, err := send(req, resty.MethodGet, "/api/v1/notifications/unread-count"); err != nil {
		return 0, err
	}

	return response.UnreadCount, nil
}

// MarkNotificationAsRead marks a single notification as read
func MarkNotificationAsRead(ctx context.Context, notificationID string) error {
	logger.Debug("Marking notification as read", "notification_id", notificationID)

	path := fmt.Sprintf("/api/v1/notifications/%s/read", url.PathEscape(notificationID))
	_, err := send(newRequest(ctx), resty.MethodPatch, path)
	return err
}

// MarkAllNotificationsAsRead marks all notifications as read
func MarkAllNotificationsAsRead(ctx context.Context) error {
	logger.Debug("Marking all notifications as read")

	_, err := send(newRequest(ctx), resty.MethodPatch, "/api/v1/notifications/read-all")
	return err
}
