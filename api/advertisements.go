package api

import (
	"context"
	"fmt"

	"github.com/herdline/go-session"
)

const advertisementsPath = "/api/advertisements/"

// Advertisements manages promotional placements.
type Advertisements struct {
	client *session.Client
}

// NewAdvertisements builds the resource client.
func NewAdvertisements(client *session.Client) *Advertisements {
	return &Advertisements{client: client}
}

// List returns every placement.
func (a *Advertisements) List(ctx context.Context) ([]Advertisement, error) {
	out := []Advertisement{}
	if err := a.client.Get(ctx, advertisementsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create adds a placement.
func (a *Advertisements) Create(ctx context.Context, req CreateAdvertisementRequest) (*Advertisement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &Advertisement{}
	if err := a.client.Post(ctx, advertisementsPath, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies a partial update to a placement.
func (a *Advertisements) Update(ctx context.Context, id int, req UpdateAdvertisementRequest) (*Advertisement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &Advertisement{}
	if err := a.client.Put(ctx, fmt.Sprintf("%s%d/", advertisementsPath, id), req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a placement.
func (a *Advertisements) Delete(ctx context.Context, id int) error {
	return a.client.Delete(ctx, fmt.Sprintf("%s%d/", advertisementsPath, id))
}
