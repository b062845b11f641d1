package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Accent color used for the banner and headers.
const accentBlue = "#3B82F6"

// HR CHAT ASCII art banner (filled block style).
var bannerArt = []string{
	"  ██╗  ██╗██████╗      ██████╗██╗  ██╗ █████╗ ████████╗",
	"  ██║  ██║██╔══██╗    ██╔════╝██║  ██║██╔══██╗╚══██╔══╝",
	"  ███████║██████╔╝    ██║     ███████║███████║   ██║   ",
	"  ██╔══██║██╔══██╗    ██║     ██╔══██║██╔══██║   ██║   ",
	"  ██║  ██║██║  ██║    ╚██████╗██║  ██║██║  ██║   ██║   ",
	"  ╚═╝  ╚═╝╚═╝  ╚═╝     ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝   ",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Sources   lipgloss.Style
	Tips      lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accentBlue)),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Sources:   lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("245")),
		Tips:      lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
	}
}

// RenderBanner returns the ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range bannerArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}

// welcomeTips contains getting started tips displayed under the banner.
var welcomeTips = []string{
	"Tips for getting started:",
	"  • Ask about vacation, payroll, benefits, or any HR policy",
	"  • Answers cite the policy documents they come from",
	"  • Use /help to see commands, Esc to stop a running answer",
	"  • Ctrl+N starts a fresh conversation, Ctrl+P switches between them",
}

// RenderWelcomeTips returns styled welcome tips.
func (s Styles) RenderWelcomeTips() string {
	var b strings.Builder
	for _, tip := range welcomeTips {
		_, _ = b.WriteString(s.Tips.Render(tip))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
