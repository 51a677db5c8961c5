package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/communityhub/internal/portal/services"
)

// verifyOTP runs the simulated one-time-code step. There is no SMS gateway
// wired in, so the code is printed to the terminal the way the original
// portal displayed it on screen.
func (a *App) verifyOTP() bool {
	code := services.NewOTP()
	fmt.Printf("[SMS] Your Community Hub verification code is %s\n", code)

	entered, err := GetOTP(os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return false
	}
	if entered != code {
		fmt.Println("Code does not match")
		return false
	}
	return true
}

func (a *App) register(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Your name", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	phone, err := GetSimpleText(a.reader, "Mobile number (09xx xxx xxxx)", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	bio, err := GetMultiline(a.reader, "A few words about yourself", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if !a.verifyOTP() {
		return
	}

	u, err := a.auth.Register(ctx, name, phone, bio)
	if err != nil {
		fmt.Println("Registration failed:", err)
		return
	}
	a.setUser(&u)
	fmt.Printf("Welcome, %s! Your member id is %s\n", u.Name, u.ID)
}

func (a *App) login(ctx context.Context) {
	phone, err := GetSimpleText(a.reader, "Mobile number", os.Stdout)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	if !a.verifyOTP() {
		return
	}

	u, err := a.auth.Login(ctx, phone)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	a.setUser(&u)
	fmt.Printf("Welcome back, %s!\n", u.Name)
}

func (a *App) logout(context.Context) {
	if !a.requireLogin() {
		return
	}
	if err := a.auth.Logout(); err != nil {
		fmt.Println("Error:", err)
		return
	}
	a.setUser(nil)
	fmt.Println("Logged out")
}
