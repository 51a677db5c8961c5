package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

func (a *App) listEvents() {
	if !a.requireLogin() {
		return
	}
	events := a.events.List()
	if len(events) == 0 {
		fmt.Println("No events yet")
		return
	}
	for _, e := range events {
		marker := " "
		if e.HasAttendee(a.user.ID) {
			marker = "*"
		}
		fmt.Printf("%s %s  %s @ %s (%d attending)  [%s]\n", marker, e.Date, e.Title, e.Location, len(e.Attendees), e.ID)
	}
}

func (a *App) addEvent(ctx context.Context) {
	if !a.requireLogin() {
		return
	}
	if a.user.Role != models.RoleAdmin {
		fmt.Println("Only admins can schedule events")
		return
	}

	title, err := GetSimpleText(a.reader, "Event title", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	date, err := GetSimpleText(a.reader, "Date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	location, err := GetSimpleText(a.reader, "Location", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	description, err := GetMultiline(a.reader, "Description", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	id, err := a.events.Add(ctx, models.Event{Title: title, Date: date, Location: location, Description: description})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Event scheduled:", id)
}

// joinEvent toggles attendance. Members file a join request instead, which
// an admin approves.
func (a *App) joinEvent(ctx context.Context, args []string) {
	if !a.requireLogin() {
		return
	}
	if len(args) == 0 {
		fmt.Println("Usage: join <event-id>")
		return
	}
	eventID := args[0]

	if a.user.Role == models.RoleAdmin {
		joined, err := a.events.ToggleJoin(ctx, eventID, a.user.ID)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if joined {
			fmt.Println("You are attending")
		} else {
			fmt.Println("You are no longer attending")
		}
		return
	}

	evt, ok := a.events.Get(eventID)
	if !ok {
		fmt.Println("No such event")
		return
	}
	if evt.HasAttendee(a.user.ID) {
		joined, err := a.events.ToggleJoin(ctx, eventID, a.user.ID)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
		if !joined {
			fmt.Println("You are no longer attending")
		}
		return
	}

	_, err := a.requests.Submit(ctx, models.UserRequest{
		UserID:   a.user.ID,
		UserName: a.user.Name,
		Type:     models.RequestEventJoin,
		TargetID: eventID,
	})
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Join request sent, an admin will review it")
}
