package store

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	opListEvents  = "store.list_events"
	opCreateEvent = "store.create_event"
	opDeleteEvent = "store.delete_event"
)

// ListAdminEvents returns all operator-created calendar events ordered by
// event date.
func (s *Store) ListAdminEvents(ctx context.Context) ([]AdminEvent, error) {
	var events []AdminEvent
	if err := s.db.WithContext(ctx).Order("event_date ASC").Find(&events).Error; err != nil {
		s.logError(opListEvents, "query_failed", err)
		return nil, newStoreError(opListEvents, "query_failed", err)
	}
	return events, nil
}

// NewAdminEvent carries the fields of the add-event form.
type NewAdminEvent struct {
	Title       string
	Description string
	Type        string
	EventDate   time.Time
}

// CreateAdminEvent inserts one calendar event.
func (s *Store) CreateAdminEvent(ctx context.Context, input NewAdminEvent) (AdminEvent, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.EventDate.IsZero() {
		return AdminEvent{}, newStoreError(opCreateEvent, "invalid_input", ErrInvalidRow)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreateEvent, "id_generation_failed", err)
		return AdminEvent{}, newStoreError(opCreateEvent, "id_generation_failed", err)
	}

	eventType := strings.TrimSpace(input.Type)
	if eventType == "" {
		eventType = "meeting"
	}
	event := AdminEvent{
		ID:          id,
		Title:       title,
		Description: input.Description,
		Type:        eventType,
		EventDate:   input.EventDate,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		s.logError(opCreateEvent, "insert_failed", err, zap.String("title", title))
		return AdminEvent{}, newStoreError(opCreateEvent, "insert_failed", err)
	}
	return event, nil
}

// DeleteAdminEvent removes one calendar event by identifier.
func (s *Store) DeleteAdminEvent(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&AdminEvent{}).Error; err != nil {
		s.logError(opDeleteEvent, "delete_failed", err, zap.String("event_id", id))
		return newStoreError(opDeleteEvent, "delete_failed", err)
	}
	return nil
}
