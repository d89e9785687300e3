package api

import (
	"context"
	"fmt"

	"github.com/herdline/go-session"
)

const (
	milkHistoryCreatePath = "/api/milk-history/create/"
	milkHistoryListPath   = "/api/milk-history/"
	milkHistoryByUserPath = "/api/milk-history/user/"
)

// MilkHistory stores and reads hospital-milk mixing calculations.
type MilkHistory struct {
	client *session.Client
}

// NewMilkHistory builds the resource client.
func NewMilkHistory(client *session.Client) *MilkHistory {
	return &MilkHistory{client: client}
}

// Create records one calculation.
func (m *MilkHistory) Create(ctx context.Context, req MilkHistoryRequest) (*MilkHistoryEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := struct {
		Message string            `json:"message"`
		Data    *MilkHistoryEntry `json:"data"`
	}{}
	if err := m.client.Post(ctx, milkHistoryCreatePath, req, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// List returns every stored calculation.
func (m *MilkHistory) List(ctx context.Context) ([]MilkHistoryEntry, error) {
	out := []MilkHistoryEntry{}
	if err := m.client.Get(ctx, milkHistoryListPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ByUser returns the calculations recorded by one user.
func (m *MilkHistory) ByUser(ctx context.Context, userID int) ([]MilkHistoryEntry, error) {
	out := []MilkHistoryEntry{}
	if err := m.client.Get(ctx, fmt.Sprintf("%s%d/", milkHistoryByUserPath, userID), &out); err != nil {
		return nil, err
	}
	return out, nil
}
