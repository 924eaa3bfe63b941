// Package events publishes visit request lifecycle events. Publishing is
// best-effort: a broker outage must never fail the request that triggered
// the event.
package events

import (
	"context"
	"time"

	"homeshow/pkg/kafka"
	"homeshow/pkg/logger"
	"homeshow/pkg/model"
)

const (
	TypeCreated         = "visit_request.created"
	TypeRescheduled     = "visit_request.rescheduled"
	TypeStatusChanged   = "visit_request.status_changed"
	TypeOutcomeRecorded = "visit_request.outcome_recorded"
	TypeCancelled       = "visit_request.cancelled"
)

type VisitEvent struct {
	RequestID   string            `json:"request_id"`
	PropertyID  string            `json:"property_id"`
	RequesterID string            `json:"requester_id"`
	RecipientID string            `json:"recipient_id"`
	Status      model.VisitStatus `json:"status"`
	ScheduledAt time.Time         `json:"scheduled_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, request *model.VisitRequest)
}

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{
		producer: producer,
		log:      log,
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, request *model.VisitRequest) {
	msg := kafka.NewMessage().
		WithKey(request.ID).
		WithEventType(eventType).
		WithSource("visits").
		WithValue(VisitEvent{
			RequestID:   request.ID,
			PropertyID:  request.PropertyID,
			RequesterID: request.RequesterID,
			RecipientID: request.RecipientID,
			Status:      request.Status,
			ScheduledAt: request.ScheduledAt,
		}).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Warn("Failed to publish visit event",
			"event_type", eventType,
			"request_id", request.ID,
			"error", err,
		)
		return
	}

	p.log.Debug("Visit event published", "event_type", eventType, "request_id", request.ID)
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event. Used when no
// Kafka brokers are configured.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, *model.VisitRequest) {}
