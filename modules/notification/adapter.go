package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// NotificationPort reads the activity recorded for a user.
type NotificationPort interface {
	Notifications(ctx context.Context, userID string) (*NotificationsResponse, error)
}

type notificationAdapter struct {
	container mono.ServiceContainer
}

// NewNotificationAdapter creates a NotificationPort backed by the notifications service.
func NewNotificationAdapter(container mono.ServiceContainer) NotificationPort {
	return &notificationAdapter{container: container}
}

func (a *notificationAdapter) Notifications(ctx context.Context, userID string) (*NotificationsResponse, error) {
	var resp NotificationsResponse
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"notifications",
		json.Marshal,
		json.Unmarshal,
		&NotificationsRequest{UserID: userID},
		&resp,
	); err != nil {
		return nil, fmt.Errorf("notifications request failed: %w", err)
	}
	return &resp, nil
}
