package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/herdline/go-session"
)

const (
	consultantsSearchPath   = "/api/consultants/search/farm/"
	consultantsRequestPath  = "/api/consultants/request/"
	consultantsFarmListPath = "/api/consultants/farm/list"
)

// Farm is a farm account as seen from the consultant linking flow.
type Farm struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PendingRequest is an unresolved consultant-farm link request.
type PendingRequest struct {
	ID         int    `json:"id"`
	Farm       int    `json:"farm"`
	Consultant int    `json:"consultant"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Consultants manages the consultant-farm linking flow: search, request,
// accept or reject.
type Consultants struct {
	client *session.Client
}

// NewConsultants builds the resource client.
func NewConsultants(client *session.Client) *Consultants {
	return &Consultants{client: client}
}

// SearchFarm finds farms by name.
func (c *Consultants) SearchFarm(ctx context.Context, name string) ([]Farm, error) {
	out := []Farm{}
	path := consultantsSearchPath + "?name=" + url.QueryEscape(name)
	if err := c.client.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RequestOnFarm asks to link the current consultant with a farm.
func (c *Consultants) RequestOnFarm(ctx context.Context, req ConsultantRequest) (*PendingRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	out := &PendingRequest{}
	if err := c.client.Post(ctx, consultantsRequestPath, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AcceptedFarms lists the farms the current consultant is linked with.
func (c *Consultants) AcceptedFarms(ctx context.Context) ([]Farm, error) {
	out := []Farm{}
	if err := c.client.Get(ctx, consultantsFarmListPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ManageRequest accepts or rejects a pending link request.
func (c *Consultants) ManageRequest(ctx context.Context, requestID int, req RequestManageRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	path := fmt.Sprintf("%s%d/manage/", consultantsRequestPath, requestID)
	return c.client.Post(ctx, path, req, nil)
}
