package api

import (
	"context"

	"github.com/herdline/go-session"
)

const subscriptionsPath = "/api/payment/all-subscriptions/"

// Subscriptions reads payment plans.
type Subscriptions struct {
	client *session.Client
}

// NewSubscriptions builds the resource client.
func NewSubscriptions(client *session.Client) *Subscriptions {
	return &Subscriptions{client: client}
}

// List returns every subscription.
func (s *Subscriptions) List(ctx context.Context) ([]Subscription, error) {
	out := []Subscription{}
	if err := s.client.Get(ctx, subscriptionsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}
