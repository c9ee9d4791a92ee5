package navigation

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		requested     Screen
		want          Screen
	}{
		{"signed out → History redirects", false, History, SignUp},
		{"signed out → Symptoms redirects", false, Symptoms, SignUp},
		{"signed out → Settings redirects", false, Settings, SignUp},
		{"signed out → Welcome allowed", false, Welcome, Welcome},
		{"signed out → Login allowed", false, Login, Login},
		{"signed out → SignUp allowed", false, SignUp, SignUp},
		{"signed in → Welcome redirects", true, Welcome, Symptoms},
		{"signed in → Login redirects", true, Login, Symptoms},
		{"signed in → SignUp redirects", true, SignUp, Symptoms},
		{"signed in → Settings allowed", true, Settings, Settings},
		{"signed in → History allowed", true, History, History},
		{"signed in → Symptoms allowed", true, Symptoms, Symptoms},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.authenticated, tt.requested); got != tt.want {
				t.Errorf("Resolve(%v, %v) = %v, want %v", tt.authenticated, tt.requested, got, tt.want)
			}
		})
	}
}

// Resolve is idempotent: re-applying it to its own output never moves the
// user again. The controller relies on this when it re-checks the current
// screen after a session change.
func TestResolve_Idempotent(t *testing.T) {
	for _, auth := range []bool{false, true} {
		for _, s := range All() {
			once := Resolve(auth, s)
			if twice := Resolve(auth, once); twice != once {
				t.Errorf("Resolve(%v, Resolve(%v, %v)) = %v, want %v", auth, auth, s, twice, once)
			}
		}
	}
}

func TestParseScreen(t *testing.T) {
	tests := map[string]Screen{
		"history":   History,
		"HISTORY":   History,
		" Symptoms": Symptoms,
		"sign-up":   SignUp,
		"signup":    SignUp,
		"login":     Login,
	}
	for in, want := range tests {
		got, err := ParseScreen(in)
		if err != nil {
			t.Fatalf("ParseScreen(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseScreen(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseScreen("dashboard"); err == nil {
		t.Error("ParseScreen(dashboard) should fail")
	}
}

func TestScreenString(t *testing.T) {
	if Settings.String() != "Settings" {
		t.Errorf("Settings.String() = %q", Settings.String())
	}
	if Screen(42).String() != "Screen(42)" {
		t.Errorf("Screen(42).String() = %q", Screen(42).String())
	}
}
