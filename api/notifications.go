package api

import (
	"context"
	"fmt"

	"github.com/herdline/go-session"
)

const (
	notificationsListPath     = "/api/notifications/"
	notificationsMarkReadPath = "/api/notifications/mark-read/"
)

// Notifications reads and acknowledges in-app messages.
type Notifications struct {
	client *session.Client
}

// NewNotifications builds the resource client.
func NewNotifications(client *session.Client) *Notifications {
	return &Notifications{client: client}
}

// List returns the current user's notifications.
func (n *Notifications) List(ctx context.Context) ([]Notification, error) {
	out := []Notification{}
	if err := n.client.Get(ctx, notificationsListPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead acknowledges one notification.
func (n *Notifications) MarkRead(ctx context.Context, id int) error {
	return n.client.Post(ctx, fmt.Sprintf("%s%d/", notificationsMarkReadPath, id), nil, nil)
}
