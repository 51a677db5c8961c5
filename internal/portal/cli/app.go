package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/blobstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/config"
	"github.com/dmitrijs2005/communityhub/internal/portal/engine"
	"github.com/dmitrijs2005/communityhub/internal/portal/fallback"
	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/localstore"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
	"github.com/dmitrijs2005/communityhub/internal/portal/relay"
	"github.com/dmitrijs2005/communityhub/internal/portal/remote"
	"github.com/dmitrijs2005/communityhub/internal/portal/services"
)

// App wires the full portal stack behind the terminal front end: local
// store, optional remote collection service, fallback controller, sync
// engine, snapshot listeners and the member-facing services.
type App struct {
	cfg       *config.Config
	log       logging.Logger
	local     localstore.KV
	remote    remote.Store // nil in local-only deployments
	fb        *fallback.Controller
	eng       *engine.Engine
	listeners *engine.Manager

	auth          *services.AuthService
	events        *services.EventService
	requests      *services.RequestService
	announcements *services.AnnouncementService
	gallery       *services.GalleryService
	messages      *services.MessageService
	notifier      *services.NotificationService

	user   *models.User
	uid    atomic.Value // current member id, readable from watcher goroutines
	unread atomic.Int64
	reader *bufio.Reader
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	local, err := localstore.OpenBadger(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var rs remote.Store
	if cfg.RemoteConfigured() {
		rs, err = remote.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, log)
		if err != nil {
			// degraded start is better than no start: the portal still
			// works from the local cache
			log.Warn(ctx, "remote store unreachable, starting local-only", "error", err)
			rs = nil
		}
	}

	fb := fallback.New(local, rs != nil, log)

	state := engine.NewState()
	if err := state.Load(local); err != nil {
		return nil, fmt.Errorf("failed to warm state from local store: %w", err)
	}

	eng := engine.New(local, rs, fb, state, idgen.NewULID(), log)
	eng.OnReconcile(func(collection string, cause error) {
		fmt.Printf("\n! your last change to %s did not reach the server and was rolled back (%v)\n", collection, cause)
	})
	listeners := engine.NewManager(rs, fb, state, local, log)

	var cloud blobstore.Store
	if cfg.S3Bucket != "" {
		cloud, err = blobstore.NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			return nil, err
		}
	}
	localBlobs, err := blobstore.NewLocalStore(filepath.Join(cfg.DataDir, "blobs"))
	if err != nil {
		return nil, err
	}
	blobs := blobstore.NewSwitcher(cloud, localBlobs, fb)

	broker := relay.NewBroker()
	notifier := services.NewNotificationService(eng, log)
	events := services.NewEventService(eng, notifier, log)

	app := &App{
		cfg:           cfg,
		log:           log,
		local:         local,
		remote:        rs,
		fb:            fb,
		eng:           eng,
		listeners:     listeners,
		notifier:      notifier,
		events:        events,
		requests:      services.NewRequestService(eng, events, notifier, log),
		announcements: services.NewAnnouncementService(eng, notifier, log),
		gallery:       services.NewGalleryService(eng, blobs, idgen.UUID{}, log),
		messages:      services.NewMessageService(eng, fb, notifier, broker, cfg.RelayTopic, log),
		auth:          services.NewAuthService(eng, rs, fb, local, []byte(cfg.SessionSecret), log),
		reader:        bufio.NewReader(os.Stdin),
	}
	app.uid.Store("")

	// keep the unread badge in the prompt current: any write to the
	// notifications collection, local or pushed by a snapshot listener,
	// recounts for the signed-in member
	state.Watch(func(collection string) {
		if collection == models.CollectionNotifications {
			app.refreshUnread()
		}
	})
	return app, nil
}

// setUser records the signed-in member and recounts their unread badge.
func (a *App) setUser(u *models.User) {
	a.user = u
	if u == nil {
		a.uid.Store("")
	} else {
		a.uid.Store(u.ID)
	}
	a.refreshUnread()
}

func (a *App) refreshUnread() {
	id, _ := a.uid.Load().(string)
	if id == "" {
		a.unread.Store(0)
		return
	}
	a.unread.Store(int64(a.notifier.UnreadCount(id)))
}

// Run starts the listeners, waits up to the load timeout for a first
// snapshot of every collection, then hands control to the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)

	ready, err := a.listeners.Start(ctx)
	if err != nil {
		a.log.Warn(ctx, "failed to start snapshot listeners", "error", err)
	}
	if a.remote != nil && !a.fb.Active() {
		select {
		case <-ready:
		case <-time.After(a.cfg.LoadTimeout):
			a.log.Warn(ctx, "remote snapshots are slow, rendering from local cache")
		case <-ctx.Done():
			return
		}
	}

	a.messages.Listen(ctx)

	if u, err := a.auth.CurrentUser(); err == nil {
		a.setUser(&u)
		fmt.Printf("Welcome back, %s!\n", u.Name)
	}

	a.Root(ctx)
}

// Close releases every resource in reverse dependency order.
func (a *App) Close(ctx context.Context) {
	a.listeners.Stop()
	a.messages.Close()
	if a.remote != nil {
		_ = a.remote.Close(ctx)
	}
	_ = a.local.Close()
}

func (a *App) isLoggedIn() bool {
	return a.user != nil
}
