package services

import (
	"context"
	"fmt"

	"github.com/axisworks/axis/ent"
	"github.com/axisworks/axis/ent/event"
)

// EventService reads the broadcast journal. The events publisher writes rows
// with raw SQL inside the notify transaction; this service is the read side,
// used for WebSocket catch-up after reconnects and truncated notifications.
type EventService struct {
	client *ent.Client
}

// NewEventService creates a new EventService
func NewEventService(client *ent.Client) *EventService {
	return &EventService{client: client}
}

// ListEventsAfter returns up to limit events on a channel with id strictly
// greater than afterID, oldest first.
func (s *EventService) ListEventsAfter(ctx context.Context, channel string, afterID int64, limit int) ([]*ent.Event, error) {
	if channel == "" {
		return nil, NewValidationError("channel", "required")
	}
	if limit <= 0 {
		limit = 100
	}

	events, err := s.client.Event.Query().
		Where(
			event.ChannelEQ(channel),
			event.IDGT(afterID),
		).
		Order(ent.Asc(event.FieldID)).
		Limit(limit).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// LatestEventID returns the newest event id on a channel, or 0 when the
// channel has no rows yet.
func (s *EventService) LatestEventID(ctx context.Context, channel string) (int64, error) {
	if channel == "" {
		return 0, NewValidationError("channel", "required")
	}

	row, err := s.client.Event.Query().
		Where(event.ChannelEQ(channel)).
		Order(ent.Desc(event.FieldID)).
		First(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get latest event id: %w", err)
	}
	return row.ID, nil
}
