package services

import (
	"context"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// AnnouncementService manages the community bulletin board.
type AnnouncementService struct {
	eng      *engine.Engine
	notifier *NotificationService
	log      logging.Logger
}

func NewAnnouncementService(eng *engine.Engine, notifier *NotificationService, log logging.Logger) *AnnouncementService {
	return &AnnouncementService{eng: eng, notifier: notifier, log: log.With("service", "announcements")}
}

// Add posts a bulletin and notifies every user.
func (s *AnnouncementService) Add(ctx context.Context, a models.Announcement) (string, error) {
	if a.Date == "" {
		a.Date = timestamp()
	}
	doc, err := models.ToDocument(a)
	if err != nil {
		return "", err
	}
	id, err := s.eng.Apply(ctx, models.CollectionAnnouncements, engine.OpAdd, doc, a.ID)
	if err != nil {
		return "", err
	}
	if err := s.notifier.NotifyAll(ctx, "New Bulletin: "+a.Title, models.NotifyInfo, "BULLETIN", id); err != nil {
		s.log.Warn(ctx, "bulletin posted but users not notified", "announcement", id, "error", err)
	}
	return id, nil
}

// Delete removes a bulletin.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	_, err := s.eng.Apply(ctx, models.CollectionAnnouncements, engine.OpDelete, nil, id)
	return err
}

// List returns every bulletin, newest first.
func (s *AnnouncementService) List() []models.Announcement {
	return listAs[models.Announcement](s.eng.State(), models.CollectionAnnouncements)
}
