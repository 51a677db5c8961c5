package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func (a *App) listRequests() {
	if !a.requireLogin() {
		return
	}
	reqs := a.requests.List()
	if a.user.Role != models.RoleAdmin {
		own := reqs[:0]
		for _, r := range reqs {
			if r.UserID == a.user.ID {
				own = append(own, r)
			}
		}
		reqs = own
	}
	if len(reqs) == 0 {
		fmt.Println("No requests")
		return
	}
	for _, r := range reqs {
		fmt.Printf("%s  %s  %s -> %s  %s  [%s]\n", r.Timestamp, r.UserName, r.Type, r.TargetID, r.Status, r.ID)
	}
}

func (a *App) actRequest(ctx context.Context, args []string, approve bool) {
	if !a.requireLogin() {
		return
	}
	if a.user.Role != models.RoleAdmin {
		fmt.Println("Only admins can resolve requests")
		return
	}
	if len(args) == 0 {
		if approve {
			fmt.Println("Usage: approve <request-id>")
		} else {
			fmt.Println("Usage: reject <request-id>")
		}
		return
	}

	var err error
	if approve {
		err = a.requests.Approve(ctx, args[0])
	} else {
		err = a.requests.Reject(ctx, args[0])
	}
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Done")
}
