// Package navigation defines the client's screens and the gate that decides
// which screen a user actually lands on.
//
// The gate is a pure function of (authenticated?, requested screen). The
// screen-flow controller calls it on every navigation request and again
// whenever the session changes, so a user sitting on a protected screen is
// moved out as soon as they are signed out.
package navigation

import (
	"fmt"
	"strings"
)

// Screen identifies one screen of the client.
type Screen int

const (
	Welcome Screen = iota
	SignUp
	Login
	Symptoms
	History
	Settings
)

// Initial is the screen shown at start-up.
const Initial = Welcome

var screenNames = [...]string{
	Welcome:  "Welcome",
	SignUp:   "SignUp",
	Login:    "Login",
	Symptoms: "Symptoms",
	History:  "History",
	Settings: "Settings",
}

// All lists every screen in declaration order.
func All() []Screen {
	return []Screen{Welcome, SignUp, Login, Symptoms, History, Settings}
}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("Screen(%d)", int(s))
	}
	return screenNames[s]
}

// Protected reports whether the screen needs a signed-in user.
func (s Screen) Protected() bool {
	return s == Symptoms || s == History || s == Settings
}

// Entry reports whether the screen is one of the sign-in screens that a
// signed-in user should not see.
func (s Screen) Entry() bool {
	return s == Welcome || s == SignUp || s == Login
}

// ParseScreen maps a name such as "history" to its Screen, ignoring case.
// "signup" and "sign-up" both match SignUp.
func ParseScreen(name string) (Screen, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	for _, s := range All() {
		if strings.ToLower(s.String()) == key {
			return s, nil
		}
	}
	return Welcome, fmt.Errorf("navigation: unknown screen %q", name)
}

// Resolve returns the screen a user ends up on after asking for requested.
//
//	signed out + protected screen  → SignUp
//	signed in  + entry screen      → Symptoms
//	anything else                  → requested
func Resolve(authenticated bool, requested Screen) Screen {
	switch {
	case !authenticated && requested.Protected():
		return SignUp
	case authenticated && requested.Entry():
		return Symptoms
	default:
		return requested
	}
}
