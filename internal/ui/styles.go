// Package ui provides terminal styling for spimrelay command output.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Semantic colors, adaptive to light and dark terminals
var (
	ColorAccent = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"}
	ColorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#8BC34A"}
	ColorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#E53935"}
	ColorWarn   = lipgloss.AdaptiveColor{Light: "#F57F17", Dark: "#FFC107"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	failStyle   = lipgloss.NewStyle().Foreground(ColorFail).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Status glyphs
const (
	IconPass = "✓"
	IconFail = "✗"
	IconWarn = "!"
)

func init() {
	if !ShouldUseColor() {
		SetColor(false)
	}
}

// ShouldUseColor reports whether stdout is a terminal and NO_COLOR is unset.
func ShouldUseColor() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// SetColor enables or disables styled output.
func SetColor(enabled bool) {
	if enabled {
		lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
}

// RenderAccent highlights names such as paths and headings.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderPass renders a success marker or message.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderFail renders a failure marker or message.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderWarn renders a warning.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderMuted renders secondary detail such as timestamps.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// StatusIcon returns the rendered glyph for a transfer status.
func StatusIcon(ok bool) string {
	if ok {
		return RenderPass(IconPass)
	}
	return RenderFail(IconFail)
}
