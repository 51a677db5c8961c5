package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func (a *App) listBulletins() {
	if !a.requireLogin() {
		return
	}
	bulletins := a.announcements.List()
	if len(bulletins) == 0 {
		fmt.Println("No bulletins yet")
		return
	}
	for _, b := range bulletins {
		fmt.Printf("%s  %s\n    %s\n", b.Date, b.Title, b.Content)
	}
}

func (a *App) postBulletin(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	if a.user.Role != models.RoleAdmin {
		fmt.Println("Only admins can post bulletins")
		return
	}

	title, err := GetSimpleText(a.reader, "Bulletin title", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	content, err := GetMultiline(a.reader, "Bulletin text", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	id, err := a.announcements.Add(ctx, models.Announcement{Title: title, Content: content, AuthorID: a.user.ID})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Posted:", id)
}
