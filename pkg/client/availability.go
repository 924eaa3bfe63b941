package client

import (
	"context"
	"net/url"

	"homeshow/pkg/model"
)

// AvailabilityClient talks to the availability service. The calendar it
// returns is the backend's raw view; pruning against wall-clock time is the
// caller's responsibility (see pkg/clientsync).
type AvailabilityClient struct {
	http *HTTPClient
}

func NewAvailabilityClient(baseURL, actorID string) *AvailabilityClient {
	return &AvailabilityClient{http: NewHTTPClient(baseURL, actorID)}
}

func (c *AvailabilityClient) GetAvailability(ctx context.Context, propertyID string) (model.AvailabilityCalendar, error) {
	var cal model.AvailabilityCalendar
	path := "/api/v1/properties/" + url.PathEscape(propertyID) + "/availability"
	if err := c.http.get(ctx, path, &cal); err != nil {
		return model.AvailabilityCalendar{}, err
	}
	return cal, nil
}

// PublishSlots publishes a batch of start times for one date. The batch is
// all-or-nothing: a lead-time violation on any time rejects the whole call.
func (c *AvailabilityClient) PublishSlots(ctx context.Context, propertyID string, batch model.SlotBatch) ([]model.TimeSlot, error) {
	var created []model.TimeSlot
	path := "/api/v1/properties/" + url.PathEscape(propertyID) + "/slots"
	if err := c.http.post(ctx, path, batch, &created); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteSlot removes one slot. Deleting an unknown id is not an error.
func (c *AvailabilityClient) DeleteSlot(ctx context.Context, slotID string) error {
	return c.http.delete(ctx, "/api/v1/slots/"+url.PathEscape(slotID))
}
