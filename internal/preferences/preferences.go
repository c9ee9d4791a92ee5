// Package preferences holds the client's display settings: light or dark
// theme and the font size scale. They live for the process only.
package preferences

import (
	"fmt"
	"strings"
	"sync"
)

// Theme selects the color palette.
type Theme int

const (
	Light Theme = iota
	Dark
)

func (t Theme) String() string {
	if t == Dark {
		return "dark"
	}
	return "light"
}

// Palette is a set of hex colors used when rendering.
type Palette struct {
	Primary       string
	Background    string
	Surface       string
	TextPrimary   string
	TextSecondary string
	TextTertiary  string
}

var (
	lightPalette = Palette{
		Primary:       "#6C63FF",
		Background:    "#FFFFFF",
		Surface:       "#F9F9F9",
		TextPrimary:   "#2E2E2E",
		TextSecondary: "#666666",
		TextTertiary:  "#999999",
	}
	darkPalette = Palette{
		Primary:       "#8B85FF",
		Background:    "#121212",
		Surface:       "#1E1E1E",
		TextPrimary:   "#FFFFFF",
		TextSecondary: "#B3B3B3",
		TextTertiary:  "#808080",
	}
)

// Palette returns the colors for the theme.
func (t Theme) Palette() Palette {
	if t == Dark {
		return darkPalette
	}
	return lightPalette
}

// FontSize is one of the three size steps offered in settings.
type FontSize int

const (
	Medium FontSize = iota
	Small
	Large
)

func (f FontSize) String() string {
	switch f {
	case Small:
		return "Small"
	case Large:
		return "Large"
	default:
		return "Medium"
	}
}

// Scale is the multiplier applied to base sizes.
func (f FontSize) Scale() float64 {
	switch f {
	case Small:
		return 0.85
	case Large:
		return 1.15
	default:
		return 1.0
	}
}

// ParseFontSize accepts "small", "medium" or "large" in any case.
func ParseFontSize(s string) (FontSize, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, nil
	case "medium":
		return Medium, nil
	case "large":
		return Large, nil
	}
	return Medium, fmt.Errorf("preferences: unknown font size %q", s)
}

// Settings is the live set of display preferences. Safe for concurrent use.
// The zero value is light theme, medium font.
type Settings struct {
	mu       sync.RWMutex
	theme    Theme
	fontSize FontSize
}

// ToggleTheme flips between light and dark and returns the new theme.
func (s *Settings) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == Dark {
		s.theme = Light
	} else {
		s.theme = Dark
	}
	return s.theme
}

func (s *Settings) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *Settings) SetFontSize(f FontSize) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontSize = f
}

func (s *Settings) FontSize() FontSize {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fontSize
}

// Scaled applies the current font scale to base.
func (s *Settings) Scaled(base float64) float64 {
	return base * s.FontSize().Scale()
}
