package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// RequestService runs the member request workflow: submit, then approve or
// reject exactly once.
type RequestService struct {
	eng      *engine.Engine
	events   *EventService
	notifier *NotificationService
	log      logging.Logger
}

func NewRequestService(eng *engine.Engine, events *EventService, notifier *NotificationService, log logging.Logger) *RequestService {
	return &RequestService{eng: eng, events: events, notifier: notifier, log: log.With("service", "requests")}
}

// Submit files a request on behalf of a user and alerts the admins. The
// status always starts PENDING regardless of what the caller set.
func (s *RequestService) Submit(ctx context.Context, req models.UserRequest) (string, error) {
	req.Status = models.RequestPending
	req.Timestamp = timestamp()

	doc, err := models.ToDocument(req)
	if err != nil {
		return "", err
	}
	id, err := s.eng.Apply(ctx, models.CollectionRequests, engine.OpAdd, doc, req.ID)
	if err != nil {
		return "", err
	}

	what := "file access"
	if req.Type == models.RequestEventJoin {
		what = "to join an event"
	}
	if err := s.notifier.NotifyAdmins(ctx, fmt.Sprintf("%s requested %s.", req.UserName, what)); err != nil {
		s.log.Warn(ctx, "request filed but admins not notified", "request", id, "error", err)
	}
	return id, nil
}

// List returns every request, newest first.
func (s *RequestService) List() []models.UserRequest {
	return listAs[models.UserRequest](s.eng.State(), models.CollectionRequests)
}

// Approve moves a pending request to APPROVED, applies its effect (an
// EVENT_JOIN adds the requester to the event) and notifies the requester.
func (s *RequestService) Approve(ctx context.Context, requestID string) error {
	return s.resolve(ctx, requestID, models.RequestApproved)
}

// Reject moves a pending request to REJECTED and notifies the requester.
func (s *RequestService) Reject(ctx context.Context, requestID string) error {
	return s.resolve(ctx, requestID, models.RequestRejected)
}

func (s *RequestService) resolve(ctx context.Context, requestID string, status models.RequestStatus) error {
	req, ok := findAs[models.UserRequest](s.eng.State(), models.CollectionRequests, requestID)
	if !ok {
		return fmt.Errorf("%w: request %s", common.ErrNotFound, requestID)
	}
	// PENDING transitions to exactly one terminal state; once terminal the
	// request never transitions again.
	if req.Terminal() {
		return fmt.Errorf("%w: %s is %s", common.ErrRequestResolved, requestID, req.Status)
	}

	_, err := s.eng.Apply(ctx, models.CollectionRequests, engine.OpUpdate,
		models.Document{"status": string(status)}, requestID)
	if err != nil {
		return err
	}

	if status == models.RequestApproved && req.Type == models.RequestEventJoin {
		if err := s.events.AddAttendee(ctx, req.TargetID, req.UserID); err != nil {
			s.log.Warn(ctx, "approved join request but attendee not added", "request", requestID, "error", err)
		}
	}

	typ := models.NotifySuccess
	if status == models.RequestRejected {
		typ = models.NotifyWarning
	}
	msg := fmt.Sprintf("Your request has been %s.", strings.ToLower(string(status)))
	if _, err := s.notifier.Notify(ctx, req.UserID, msg, typ, "", ""); err != nil {
		s.log.Warn(ctx, "request resolved but requester not notified", "request", requestID, "error", err)
	}
	return nil
}
