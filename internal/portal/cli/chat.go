package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/communityhub/internal/portal/idgen"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func (a *App) chat(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: chat <phone>")
		return
	}
	peerID := idgen.UserID(idgen.SanitizePhone(args[0]))
	if a.eng.State().Find(models.CollectionUsers, peerID) == nil {
		fmt.Println("No member with that number")
		return
	}

	for _, m := range a.messages.Conversation(a.user.ID, peerID) {
		who := "them"
		if m.SenderID == a.user.ID {
			who = "you"
		}
		fmt.Printf("%s  %s: %s\n", m.Timestamp, who, m.Text)
	}

	text, err := GetSimpleText(a.reader, "Message (empty to just read)", os.Stdout)
	if err != nil || text == "" {
		return
	}
	if _, err := a.messages.Send(ctx, a.user.ID, peerID, text); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Sent")
}

func (a *App) inbox(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	notes := a.notifier.ListFor(a.user.ID)
	if len(notes) == 0 {
		fmt.Println("No notifications")
		return
	}
	for _, n := range notes {
		marker := " "
		if !n.Read {
			marker = "*"
		}
		fmt.Printf("%s %s  [%s] %s\n", marker, n.Timestamp, n.Type, n.Message)
		if !n.Read {
			if err := a.notifier.MarkRead(ctx, n.ID); err != nil {
				a.log.Warn(ctx, "failed to mark notification read", "id", n.ID, "error", err)
			}
		}
	}
}
