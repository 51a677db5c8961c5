package services

import (
	"context"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/relay"
)

// MessageService handles direct messages between members. In cloud mode
// delivery rides the remote subscription stream; in local-only mode sent
// messages are additionally published on the peer relay so other portal
// instances sharing the broker still receive them.
type MessageService struct {
	eng      *engine.Engine
	fb       *fallback.Controller
	notifier *NotificationService
	ch       *relay.Channel // nil when no broker is wired
	log      logging.Logger
}

func NewMessageService(eng *engine.Engine, fb *fallback.Controller, notifier *NotificationService, broker *relay.Broker, topic string, log logging.Logger) *MessageService {
	s := &MessageService{eng: eng, fb: fb, notifier: notifier, log: log.With("service", "messages")}
	if broker != nil {
		s.ch = broker.Open(topic)
	}
	return s
}

// Send stores a message and notifies the receiver. The returned id is
// assigned before the remote write completes.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, text string) (string, error) {
	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  timestamp(),
	}
	doc, err := models.ToDocument(msg)
	if err != nil {
		return "", err
	}
	id, err := s.eng.Apply(ctx, models.CollectionMessages, engine.OpAdd, doc, "")
	if err != nil {
		return "", err
	}

	if s.ch != nil && s.fb.Active() {
		doc["id"] = id
		s.ch.Publish(doc)
	}

	sender := "Someone"
	if u, ok := findAs[models.User](s.eng.State(), models.CollectionUsers, senderID); ok {
		sender = u.Name
	}
	if _, err := s.notifier.Notify(ctx, receiverID, "New message from "+sender, models.NotifyInfo, "CHAT", senderID); err != nil {
		s.log.Warn(ctx, "message sent but receiver not notified", "message", id, "error", err)
	}
	return id, nil
}

// Conversation returns the messages exchanged between two users, oldest
// first.
func (s *MessageService) Conversation(userA, userB string) []models.Message {
	all := listAs[models.Message](s.eng.State(), models.CollectionMessages)
	out := make([]models.Message, 0, len(all))
	for _, m := range all {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out
}

// Listen consumes the peer relay until the context ends or the channel is
// closed, folding messages from other instances into the local collection.
// The relay echoes a publisher's own messages back, so anything already
// present by id is dropped.
func (s *MessageService) Listen(ctx context.Context) {
	if s.ch == nil {
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case doc, ok := <-s.ch.Messages():
				if !ok {
					return
				}
				s.receive(ctx, doc)
			}
		}
	}()
}

func (s *MessageService) receive(ctx context.Context, doc models.Document) {
	id := doc.ID()
	if id == "" || s.eng.State().Find(models.CollectionMessages, id) != nil {
		return
	}
	if _, err := s.eng.Apply(ctx, models.CollectionMessages, engine.OpSet, doc, id); err != nil {
		s.log.Warn(ctx, "relayed message not stored", "message", id, "error", err)
		return
	}
	var msg models.Message
	if err := models.FromDocument(doc, &msg); err != nil {
		return
	}
	sender := "Someone"
	if u, ok := findAs[models.User](s.eng.State(), models.CollectionUsers, msg.SenderID); ok {
		sender = u.Name
	}
	if _, err := s.notifier.Notify(ctx, msg.ReceiverID, "New message from "+sender, models.NotifyInfo, "CHAT", msg.SenderID); err != nil {
		s.log.Warn(ctx, "relayed message stored but receiver not notified", "message", id, "error", err)
	}
}

// Close detaches from the peer relay.
func (s *MessageService) Close() {
	if s.ch != nil {
		s.ch.Close()
	}
}
