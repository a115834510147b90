// Copyright (c) 2026 CoPla. All rights reserved.

// Package prefs holds display preferences for the CLI and the styles they select.
package prefs

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode is a color scheme.
type Mode string

const (
	ModeLight Mode = "light"
	ModeDark  Mode = "dark"
)

// ParseMode accepts "light", "dark" or empty. Empty means detect.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "":
		return "", nil
	case ModeLight:
		return ModeLight, nil
	case ModeDark:
		return ModeDark, nil
	default:
		return "", fmt.Errorf("unknown theme %q: want light or dark", raw)
	}
}

// Preferences is passed explicitly to whatever renders output.
type Preferences struct {
	Mode  Mode
	Theme Theme
}

// New resolves stored, falling back to detectDark when it is empty.
// A nil detectDark uses [lipgloss.HasDarkBackground].
func New(stored Mode, detectDark func() bool) Preferences {
	mode := stored
	if mode == "" {
		if detectDark == nil {
			detectDark = lipgloss.HasDarkBackground
		}
		mode = ModeLight
		if detectDark() {
			mode = ModeDark
		}
	}
	return Preferences{Mode: mode, Theme: NewTheme(mode)}
}

// Toggle flips between light and dark.
func (p Preferences) Toggle() Preferences {
	if p.Mode == ModeDark {
		return New(ModeLight, nil)
	}
	return New(ModeDark, nil)
}

// # Theme

// Palette is the set of colors a theme is built from.
type Palette struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Danger     lipgloss.Color
	Success    lipgloss.Color
}

var (
	lightPalette = Palette{
		Foreground: lipgloss.Color("#1f1a2e"),
		Primary:    lipgloss.Color("#5b3cc4"),
		Accent:     lipgloss.Color("#d9467a"),
		Muted:      lipgloss.Color("#7a7590"),
		Border:     lipgloss.Color("#d8d4e6"),
		Danger:     lipgloss.Color("#c62828"),
		Success:    lipgloss.Color("#2e7d32"),
	}

	darkPalette = Palette{
		Foreground: lipgloss.Color("#eeeaf7"),
		Primary:    lipgloss.Color("#b39dff"),
		Accent:     lipgloss.Color("#ff7aa8"),
		Muted:      lipgloss.Color("#8e89a3"),
		Border:     lipgloss.Color("#3a3550"),
		Danger:     lipgloss.Color("#ef5350"),
		Success:    lipgloss.Color("#81c784"),
	}
)

// Theme is the set of styles output is rendered with.
type Theme struct {
	Palette Palette
	IsDark  bool

	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Tag     lipgloss.Style
	Open    lipgloss.Style
	Closed  lipgloss.Style
	Error   lipgloss.Style
	Success lipgloss.Style
	Card    lipgloss.Style
}

// NewTheme builds the styles for mode.
func NewTheme(mode Mode) Theme {
	palette := lightPalette
	if mode == ModeDark {
		palette = darkPalette
	}

	return Theme{
		Palette: palette,
		IsDark:  mode == ModeDark,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
		Label:   lipgloss.NewStyle().Foreground(palette.Foreground),
		Muted:   lipgloss.NewStyle().Foreground(palette.Muted),
		Tag:     lipgloss.NewStyle().Foreground(palette.Accent).Padding(0, 1),
		Open:    lipgloss.NewStyle().Bold(true).Foreground(palette.Success),
		Closed:  lipgloss.NewStyle().Foreground(palette.Muted),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(palette.Danger),
		Success: lipgloss.NewStyle().Foreground(palette.Success),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Border).
			Padding(0, 1),
	}
}
