package cli

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/config"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{DataDir: t.TempDir(), SessionSecret: "test-secret"}
	app, err := NewApp(ctx, cfg, logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	t.Cleanup(func() { app.Close(ctx) })
	return app
}

func TestGetStatus_UnreadBadgeFollowsNotificationWrites(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.setUser(&models.User{ID: "user_1", Name: "Ana"})
	assert.NotContains(t, app.getStatus(), "new")

	id, err := app.notifier.Notify(ctx, "user_1", "hello", models.NotifyInfo, "", "")
	require.NoError(t, err)
	assert.Contains(t, app.getStatus(), "1 new")

	// notifications for other members do not inflate the badge
	_, err = app.notifier.Notify(ctx, "user_2", "not yours", models.NotifyInfo, "", "")
	require.NoError(t, err)
	assert.Contains(t, app.getStatus(), "1 new")

	require.NoError(t, app.notifier.MarkRead(ctx, id))
	assert.NotContains(t, app.getStatus(), "new")
}

func TestGetStatus_BadgeClearsOnLogout(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	app.setUser(&models.User{ID: "user_1", Name: "Ana"})
	_, err := app.notifier.Notify(ctx, "user_1", "hello", models.NotifyInfo, "", "")
	require.NoError(t, err)
	require.Contains(t, app.getStatus(), "1 new")

	app.setUser(nil)
	assert.NotContains(t, app.getStatus(), "new")
}
