package client

import (
	"context"
	"net/url"

	"homeshow/pkg/model"
)

// VisitClient talks to the visit request service on behalf of one actor.
// Which operations succeed depends on whether that actor is the requester
// or the recipient of the targeted request.
type VisitClient struct {
	http *HTTPClient
}

func NewVisitClient(baseURL, actorID string) *VisitClient {
	return &VisitClient{http: NewHTTPClient(baseURL, actorID)}
}

// CreateVisitRequest submits a new request; the backend assigns the id and
// the initial pending status.
type CreateVisitRequest struct {
	PropertyID  string `json:"property_id"`
	RecipientID string `json:"recipient_id"`
	ScheduledAt string `json:"scheduled_at"` // RFC 3339
	Note        string `json:"note,omitempty"`
}

func (c *VisitClient) Create(ctx context.Context, req CreateVisitRequest) (*model.VisitRequest, error) {
	var vr model.VisitRequest
	if err := c.http.post(ctx, "/api/v1/visit-requests", req, &vr); err != nil {
		return nil, err
	}
	return &vr, nil
}

func (c *VisitClient) Get(ctx context.Context, id string) (*model.VisitRequest, error) {
	var vr model.VisitRequest
	if err := c.http.get(ctx, "/api/v1/visit-requests/id/"+url.PathEscape(id), &vr); err != nil {
		return nil, err
	}
	return &vr, nil
}

func (c *VisitClient) Reschedule(ctx context.Context, id string, body model.VisitReschedule) error {
	path := "/api/v1/visit-requests/id/" + url.PathEscape(id) + "/reschedule"
	return c.http.put(ctx, path, body, nil)
}

func (c *VisitClient) RecipientReschedule(ctx context.Context, id string, body model.VisitReschedule) error {
	path := "/api/v1/visit-requests/id/" + url.PathEscape(id) + "/recipient-reschedule"
	return c.http.put(ctx, path, body, nil)
}

func (c *VisitClient) SetStatus(ctx context.Context, id string, status model.VisitStatus) error {
	path := "/api/v1/visit-requests/id/" + url.PathEscape(id) + "/status"
	return c.http.put(ctx, path, model.VisitStatusChange{Status: status}, nil)
}

func (c *VisitClient) SetOutcome(ctx context.Context, id string, outcome model.VisitStatus) error {
	path := "/api/v1/visit-requests/id/" + url.PathEscape(id) + "/outcome"
	return c.http.put(ctx, path, model.VisitOutcome{Outcome: outcome}, nil)
}

// Cancel removes the request entirely; it is not a status transition.
func (c *VisitClient) Cancel(ctx context.Context, id string) error {
	return c.http.delete(ctx, "/api/v1/visit-requests/id/"+url.PathEscape(id))
}

// Mine lists requests the actor created. Status filtering is done by the
// backend only when asked; pass empty or "all" for everything.
func (c *VisitClient) Mine(ctx context.Context, status model.VisitStatus) ([]*model.VisitRequest, error) {
	return c.list(ctx, "/api/v1/visit-requests/mine", status)
}

// AssignedToMe lists requests the actor owns as recipient.
func (c *VisitClient) AssignedToMe(ctx context.Context, status model.VisitStatus) ([]*model.VisitRequest, error) {
	return c.list(ctx, "/api/v1/visit-requests/assigned", status)
}

func (c *VisitClient) list(ctx context.Context, path string, status model.VisitStatus) ([]*model.VisitRequest, error) {
	if status != "" && status != model.StatusFilterAll {
		q := url.Values{}
		q.Set("status", string(status))
		path += "?" + q.Encode()
	}
	var out []*model.VisitRequest
	if err := c.http.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
