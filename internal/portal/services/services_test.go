package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/blobstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/relay"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeStore is a minimal in-memory remote.Store for exercising the remote
// legs of the services.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string]map[string]models.Document
	sets int
}

type noopSub struct{}

func (noopSub) Unsubscribe() {}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]map[string]models.Document)}
}

func (f *fakeStore) seed(collection string, doc models.Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]models.Document)
	}
	f.docs[collection][doc.ID()] = doc
}

func (f *fakeStore) Subscribe(context.Context, string, models.Order, remote.SnapshotFunc, remote.ErrorFunc) (remote.Subscription, error) {
	return noopSub{}, nil
}

func (f *fakeStore) Get(_ context.Context, collection, id string) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[collection][id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return doc.Clone(), nil
}

func (f *fakeStore) ReadAll(_ context.Context, collection string, _ models.Order) ([]models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Document{}
	for _, d := range f.docs[collection] {
		out = append(out, d.Clone())
	}
	return out, nil
}

func (f *fakeStore) Set(_ context.Context, collection, id string, doc models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]models.Document)
	}
	f.docs[collection][id] = doc.Clone()
	return nil
}

func (f *fakeStore) Update(_ context.Context, collection, id string, patch models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[collection][id]
	if !ok {
		return common.ErrNotFound
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (f *fakeStore) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs[collection], id)
	return nil
}

func (f *fakeStore) Close(context.Context) error { return nil }

func (f *fakeStore) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// fixture wires a full local-only service stack. rs may be nil.
type fixture struct {
	eng      *engine.Engine
	fb       *fallback.Controller
	session  *localstore.MemoryStore
	notifier *NotificationService
	events   *EventService
	requests *RequestService
}

func newFixture(t *testing.T, rs remote.Store) *fixture {
	t.Helper()
	log := testLogger()
	session := localstore.NewMemoryStore()
	fb := fallback.New(session, rs != nil, log)
	state := engine.NewState()
	eng := engine.New(localstore.NewMemoryStore(), rs, fb, state, idgen.NewSequential("rec"), log)

	notifier := NewNotificationService(eng, log)
	events := NewEventService(eng, notifier, log)
	requests := NewRequestService(eng, events, notifier, log)
	return &fixture{eng: eng, fb: fb, session: session, notifier: notifier, events: events, requests: requests}
}

func (fx *fixture) seedUser(t *testing.T, id, name string, role models.UserRole) {
	t.Helper()
	doc, err := models.ToDocument(models.User{ID: id, Name: name, Role: role})
	require.NoError(t, err)
	_, err = fx.eng.Apply(context.Background(), models.CollectionUsers, engine.OpSet, doc, id)
	require.NoError(t, err)
}

func TestToggleJoin_IdempotentByPresence(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	id, err := fx.events.Add(ctx, models.Event{Title: "Clean-up drive", Date: "2026-09-05"})
	require.NoError(t, err)

	joined, err := fx.events.ToggleJoin(ctx, id, "user_1")
	require.NoError(t, err)
	assert.True(t, joined)
	evt, _ := fx.events.Get(id)
	assert.Equal(t, []string{"user_1"}, evt.Attendees)

	// the second toggle removes, never duplicates
	joined, err = fx.events.ToggleJoin(ctx, id, "user_1")
	require.NoError(t, err)
	assert.False(t, joined)
	evt, _ = fx.events.Get(id)
	assert.Empty(t, evt.Attendees)

	_, err = fx.events.ToggleJoin(ctx, "missing", "user_1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAddAttendee_Idempotent(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	id, err := fx.events.Add(ctx, models.Event{Title: "Recital"})
	require.NoError(t, err)

	require.NoError(t, fx.events.AddAttendee(ctx, id, "user_1"))
	require.NoError(t, fx.events.AddAttendee(ctx, id, "user_1"))

	evt, _ := fx.events.Get(id)
	assert.Equal(t, []string{"user_1"}, evt.Attendees)
}

func TestRequestLifecycle_ApproveOnce(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.seedUser(t, "user_1", "Admin Ana", models.RoleAdmin)
	fx.seedUser(t, "user_2", "Ben", models.RoleUser)

	eventID, err := fx.events.Add(ctx, models.Event{Title: "Fiesta"})
	require.NoError(t, err)
	adminBaseline := len(fx.notifier.ListFor("user_1"))
	memberBaseline := len(fx.notifier.ListFor("user_2"))

	reqID, err := fx.requests.Submit(ctx, models.UserRequest{
		UserID:   "user_2",
		UserName: "Ben",
		Type:     models.RequestEventJoin,
		TargetID: eventID,
		Status:   models.RequestApproved, // caller-set status is ignored
	})
	require.NoError(t, err)

	reqs := fx.requests.List()
	require.Len(t, reqs, 1)
	assert.Equal(t, models.RequestPending, reqs[0].Status)

	adminNotes := fx.notifier.ListFor("user_1")
	require.Len(t, adminNotes, adminBaseline+1)
	assert.Equal(t, models.NotifyInfo, adminNotes[0].Type)
	assert.Equal(t, "ADMIN", adminNotes[0].TargetPage)

	require.NoError(t, fx.requests.Approve(ctx, reqID))

	reqs = fx.requests.List()
	assert.Equal(t, models.RequestApproved, reqs[0].Status)

	evt, _ := fx.events.Get(eventID)
	assert.True(t, evt.HasAttendee("user_2"))

	memberNotes := fx.notifier.ListFor("user_2")
	require.Len(t, memberNotes, memberBaseline+1, "exactly one resolution notification")
	assert.Equal(t, models.NotifySuccess, memberNotes[0].Type)

	// a terminal request never resolves again, in either direction
	assert.ErrorIs(t, fx.requests.Approve(ctx, reqID), common.ErrRequestResolved)
	assert.ErrorIs(t, fx.requests.Reject(ctx, reqID), common.ErrRequestResolved)
	assert.Len(t, fx.notifier.ListFor("user_2"), memberBaseline+1)
	evt, _ = fx.events.Get(eventID)
	assert.Equal(t, []string{"user_2"}, evt.Attendees)
}

func TestRequestLifecycle_Reject(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.seedUser(t, "user_2", "Ben", models.RoleUser)

	reqID, err := fx.requests.Submit(ctx, models.UserRequest{
		UserID:   "user_2",
		UserName: "Ben",
		Type:     models.RequestFileDownload,
		TargetID: "doc-1",
	})
	require.NoError(t, err)

	require.NoError(t, fx.requests.Reject(ctx, reqID))

	notes := fx.notifier.ListFor("user_2")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyWarning, notes[0].Type)
	assert.Contains(t, notes[0].Message, "rejected")

	assert.ErrorIs(t, fx.requests.Approve(ctx, reqID), common.ErrRequestResolved)
}

func TestNotifications_UnreadAndMarkRead(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	id, err := fx.notifier.Notify(ctx, "user_1", "hello", models.NotifyInfo, "", "")
	require.NoError(t, err)
	_, err = fx.notifier.Notify(ctx, "user_1", "again", models.NotifyInfo, "", "")
	require.NoError(t, err)
	_, err = fx.notifier.Notify(ctx, "user_2", "other", models.NotifyInfo, "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, fx.notifier.UnreadCount("user_1"))

	require.NoError(t, fx.notifier.MarkRead(ctx, id))
	assert.Equal(t, 1, fx.notifier.UnreadCount("user_1"))

	require.NoError(t, fx.notifier.ClearFor(ctx, "user_1"))
	assert.Empty(t, fx.notifier.ListFor("user_1"))
	assert.Len(t, fx.notifier.ListFor("user_2"), 1)
}

func TestAnnouncement_NotifiesEveryUser(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()
	fx.seedUser(t, "user_1", "Ana", models.RoleAdmin)
	fx.seedUser(t, "user_2", "Ben", models.RoleUser)

	svc := NewAnnouncementService(fx.eng, fx.notifier, testLogger())
	id, err := svc.Add(ctx, models.Announcement{Title: "Water interruption", Content: "Tomorrow 9-12", AuthorID: "user_1"})
	require.NoError(t, err)

	require.Len(t, svc.List(), 1)
	for _, userID := range []string{"user_1", "user_2"} {
		notes := fx.notifier.ListFor(userID)
		require.Len(t, notes, 1, userID)
		assert.Contains(t, notes[0].Message, "Water interruption")
		assert.Equal(t, id, notes[0].TargetID)
	}

	require.NoError(t, svc.Delete(ctx, id))
	assert.Empty(t, svc.List())
}

func TestGallery_UploadDownloadDelete(t *testing.T) {
	fx := newFixture(t, nil)
	ctx := context.Background()

	blobs, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := NewGalleryService(fx.eng, blobs, idgen.NewSequential("img"), testLogger())

	item, err := svc.Upload(ctx, "Fiesta 2026", models.GalleryPhoto, true, []byte("jpeg-bytes"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "img-1", item.ID)
	assert.NotEmpty(t, item.URL)

	data, err := svc.Download(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), data)

	require.Len(t, svc.ListPublic(), 1)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.Empty(t, svc.List())
	_, err = svc.Download(ctx, item.ID)
	assert.Error(t, err)
}

func TestMessages_RelayDeliversAcrossInstances(t *testing.T) {
	// two portal instances share a broker, both pinned local-only
	a := newFixture(t, nil)
	b := newFixture(t, nil)
	require.True(t, a.fb.Active())

	a.seedUser(t, "user_1", "Ana", models.RoleUser)
	a.seedUser(t, "user_2", "Ben", models.RoleUser)
	b.seedUser(t, "user_1", "Ana", models.RoleUser)
	b.seedUser(t, "user_2", "Ben", models.RoleUser)

	broker := relay.NewBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgA := NewMessageService(a.eng, a.fb, a.notifier, broker, common.ChatRelayTopic, testLogger())
	msgB := NewMessageService(b.eng, b.fb, b.notifier, broker, common.ChatRelayTopic, testLogger())
	defer msgA.Close()
	defer msgB.Close()
	msgA.Listen(ctx)
	msgB.Listen(ctx)

	id, err := msgA.Send(ctx, "user_1", "user_2", "kumusta")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return b.eng.State().Find(models.CollectionMessages, id) != nil
	}, 2*time.Second, 10*time.Millisecond, "peer instance folds the relayed message in")

	// the sender's own echo is dropped by id
	assert.Len(t, msgA.Conversation("user_1", "user_2"), 1)
	assert.Len(t, msgB.Conversation("user_1", "user_2"), 1)

	// the receiver is notified on both instances
	require.Eventually(t, func() bool {
		return b.notifier.UnreadCount("user_2") == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, a.notifier.UnreadCount("user_2"))
}
