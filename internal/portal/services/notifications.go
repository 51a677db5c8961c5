package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// NotificationService manages the per-user notification feed.
type NotificationService struct {
	eng *engine.Engine
	log logging.Logger
}

func NewNotificationService(eng *engine.Engine, log logging.Logger) *NotificationService {
	return &NotificationService{eng: eng, log: log.With("service", "notifications")}
}

// Notify appends one notification for a user.
func (s *NotificationService) Notify(ctx context.Context, userID, message string, typ models.NotificationType, targetPage, targetID string) (string, error) {
	n := models.Notification{
		UserID:     userID,
		Message:    message,
		Type:       typ,
		Read:       false,
		Timestamp:  timestamp(),
		TargetPage: targetPage,
		TargetID:   targetID,
	}
	doc, err := models.ToDocument(n)
	if err != nil {
		return "", err
	}
	return s.eng.Apply(ctx, models.CollectionNotifications, engine.OpAdd, doc, "")
}

// NotifyAll fans a notification out to every known user.
func (s *NotificationService) NotifyAll(ctx context.Context, message string, typ models.NotificationType, targetPage, targetID string) error {
	for _, u := range listAs[models.User](s.eng.State(), models.CollectionUsers) {
		if _, err := s.Notify(ctx, u.ID, message, typ, targetPage, targetID); err != nil {
			return fmt.Errorf("failed to notify %s: %w", u.ID, err)
		}
	}
	return nil
}

// NotifyAdmins fans a notification out to every admin.
func (s *NotificationService) NotifyAdmins(ctx context.Context, message string) error {
	for _, u := range listAs[models.User](s.eng.State(), models.CollectionUsers) {
		if u.Role != models.RoleAdmin {
			continue
		}
		if _, err := s.Notify(ctx, u.ID, message, models.NotifyInfo, "ADMIN", ""); err != nil {
			return fmt.Errorf("failed to notify admin %s: %w", u.ID, err)
		}
	}
	return nil
}

// ListFor returns a user's notifications, newest first.
func (s *NotificationService) ListFor(userID string) []models.Notification {
	all := listAs[models.Notification](s.eng.State(), models.CollectionNotifications)
	out := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount returns how many notifications a user has not read yet.
func (s *NotificationService) UnreadCount(userID string) int {
	count := 0
	for _, n := range s.ListFor(userID) {
		if !n.Read {
			count++
		}
	}
	return count
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	_, err := s.eng.Apply(ctx, models.CollectionNotifications, engine.OpUpdate, models.Document{"read": true}, id)
	return err
}

// ClearFor removes every notification belonging to a user.
func (s *NotificationService) ClearFor(ctx context.Context, userID string) error {
	for _, n := range s.ListFor(userID) {
		if _, err := s.eng.Apply(ctx, models.CollectionNotifications, engine.OpDelete, nil, n.ID); err != nil {
			return err
		}
	}
	return nil
}
