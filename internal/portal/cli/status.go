package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

// status prints the diagnostics panel: operating mode, the reason the
// portal went local-only, and per-collection record counts.
func (a *App) status() {
	if a.fb.Active() {
		fmt.Println("Mode:   local-only")
		if r := a.fb.Reason(); r != "" {
			fmt.Println("Reason:", r)
		}
	} else if a.remote != nil {
		fmt.Println("Mode:   connected")
	} else {
		fmt.Println("Mode:   local-only (no remote store configured)")
	}

	for _, collection := range models.Collections {
		fmt.Printf("  %-15s %d\n", collection, len(a.eng.State().Get(collection)))
	}
}

// reconnect clears the fallback flag. The mode watcher restarts the
// snapshot listeners, so fresh server data replaces any local divergence as
// the first snapshots arrive.
func (a *App) reconnect(ctx context.Context) {
	if a.remote == nil {
		fmt.Println("No remote store configured")
		return
	}
	if !a.fb.Active() {
		fmt.Println("Already connected")
		return
	}

	a.fb.Reset(ctx)
	fmt.Println("Reconnecting, data will reload from the server")
}
