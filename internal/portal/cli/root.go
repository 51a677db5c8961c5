package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if a.user != nil {
		s = a.user.Name + " "
	}
	if a.fb.Active() {
		s += "local"
	} else if a.remote != nil {
		s += "connected"
	}
	if n := a.unread.Load(); n > 0 {
		s += fmt.Sprintf(", %d new", n)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", strings.TrimSpace(s))
	}
	return s
}

// Root runs the command loop until EOF or an explicit exit.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to the Community Hub (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Printf("hub %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Println("Available commands: events, newevent, join <event>, requests, approve <id>, reject <id>,")
				fmt.Println("  bulletins, post, gallery, upload <file>, chat <phone>, inbox, status, reconnect, logout, exit")
			} else {
				fmt.Println("Available commands: register, login, status, exit")
			}

		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "events":
			a.listEvents()
		case "newevent":
			a.addEvent(ctx)
		case "join":
			a.joinEvent(ctx, args)
		case "requests":
			a.listRequests()
		case "approve":
			a.actRequest(ctx, args, true)
		case "reject":
			a.actRequest(ctx, args, false)
		case "bulletins":
			a.listBulletins()
		case "post":
			a.postBulletin(ctx)
		case "gallery":
			a.listGallery()
		case "upload":
			a.uploadFile(ctx, args)
		case "chat":
			a.chat(ctx, args)
		case "inbox":
			a.inbox(ctx)
		case "status":
			a.status()
		case "reconnect":
			a.reconnect(ctx)
		case "exit", "quit":
			fmt.Println("Bye!")
			return
		default:
			fmt.Println("Unknown command:", cmd)
		}
	}
}

// requireLogin gates a command on an active session.
func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		fmt.Println("Please login first")
		return false
	}
	return true
}
