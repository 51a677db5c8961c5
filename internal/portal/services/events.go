package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// EventService manages events and their attendee sets.
type EventService struct {
	eng      *engine.Engine
	notifier *NotificationService
	log      logging.Logger
}

func NewEventService(eng *engine.Engine, notifier *NotificationService, log logging.Logger) *EventService {
	return &EventService{eng: eng, notifier: notifier, log: log.With("service", "events")}
}

// Add creates an event and announces it to every user.
func (s *EventService) Add(ctx context.Context, evt models.Event) (string, error) {
	if evt.Attendees == nil {
		evt.Attendees = []string{}
	}
	doc, err := models.ToDocument(evt)
	if err != nil {
		return "", err
	}
	id, err := s.eng.Apply(ctx, models.CollectionEvents, engine.OpAdd, doc, evt.ID)
	if err != nil {
		return "", err
	}
	if err := s.notifier.NotifyAll(ctx, "New Event Scheduled: "+evt.Title, models.NotifySuccess, "HOME", id); err != nil {
		s.log.Warn(ctx, "event created but announcement failed", "event", id, "error", err)
	}
	return id, nil
}

// Delete removes an event.
func (s *EventService) Delete(ctx context.Context, id string) error {
	_, err := s.eng.Apply(ctx, models.CollectionEvents, engine.OpDelete, nil, id)
	return err
}

// List returns all events, newest date first per the collection order.
func (s *EventService) List() []models.Event {
	return listAs[models.Event](s.eng.State(), models.CollectionEvents)
}

// Get returns one event.
func (s *EventService) Get(id string) (models.Event, bool) {
	return findAs[models.Event](s.eng.State(), models.CollectionEvents, id)
}

// ToggleJoin flips a user's membership in an event's attendee set.
// Membership is decided by presence, so toggling twice restores the
// original set and the set never holds duplicates. Returns whether the user
// is attending after the toggle.
func (s *EventService) ToggleJoin(ctx context.Context, eventID, userID string) (bool, error) {
	evt, ok := s.Get(eventID)
	if !ok {
		return false, fmt.Errorf("%w: event %s", common.ErrNotFound, eventID)
	}

	joined := false
	attendees := make([]string, 0, len(evt.Attendees)+1)
	for _, id := range evt.Attendees {
		if id == userID {
			continue
		}
		attendees = append(attendees, id)
	}
	if len(attendees) == len(evt.Attendees) {
		attendees = append(attendees, userID)
		joined = true
	}

	_, err := s.eng.Apply(ctx, models.CollectionEvents, engine.OpUpdate,
		models.Document{"attendees": attendees}, eventID)
	if err != nil {
		return false, err
	}
	return joined, nil
}

// AddAttendee puts a user into an event's attendee set, idempotently.
func (s *EventService) AddAttendee(ctx context.Context, eventID, userID string) error {
	evt, ok := s.Get(eventID)
	if !ok {
		return fmt.Errorf("%w: event %s", common.ErrNotFound, eventID)
	}
	if evt.HasAttendee(userID) {
		return nil
	}
	_, err := s.eng.Apply(ctx, models.CollectionEvents, engine.OpUpdate,
		models.Document{"attendees": append(evt.Attendees, userID)}, eventID)
	return err
}

// RemoveAttendee takes a user out of an event's attendee set.
func (s *EventService) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	evt, ok := s.Get(eventID)
	if !ok {
		return fmt.Errorf("%w: event %s", common.ErrNotFound, eventID)
	}
	attendees := make([]string, 0, len(evt.Attendees))
	for _, id := range evt.Attendees {
		if id != userID {
			attendees = append(attendees, id)
		}
	}
	_, err := s.eng.Apply(ctx, models.CollectionEvents, engine.OpUpdate,
		models.Document{"attendees": attendees}, eventID)
	return err
}
