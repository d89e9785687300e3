package api

import (
	"context"
	"fmt"

	"github.com/herdline/go-session"
)

const (
	membersCreatePath  = "/api/members/create/"
	membersByFarmPath  = "/api/members/farm/"
	membersProfilePath = "/api/members/profile/"
)

// Members manages the member accounts enrolled under a farm.
type Members struct {
	client *session.Client
}

// NewMembers builds the resource client.
func NewMembers(client *session.Client) *Members {
	return &Members{client: client}
}

// Create enrolls a member under a farm.
func (m *Members) Create(ctx context.Context, req MemberCreateRequest) (*session.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := struct {
		Message string        `json:"message"`
		User    *session.User `json:"user"`
	}{}
	if err := m.client.Post(ctx, membersCreatePath, req, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ByFarm lists the members of one farm.
func (m *Members) ByFarm(ctx context.Context, farmID int) ([]session.User, error) {
	out := []session.User{}
	if err := m.client.Get(ctx, fmt.Sprintf("%s%d/", membersByFarmPath, farmID), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the member profile of the current user.
func (m *Members) Profile(ctx context.Context) (*session.User, error) {
	out := &session.User{}
	if err := m.client.Get(ctx, membersProfilePath, out); err != nil {
		return nil, err
	}
	return out, nil
}
