package ui

import "strings"

const reset = "\033[0m"

// Theme holds the ANSI styles the shell paints with. The zero value prints plain text.
type Theme struct {
	Name    string
	Title   string
	Accent  string
	Success string
	Warning string
	Error   string
	Muted   string
}

var themes = map[string]Theme{
	"light": {
		Name:    "light",
		Title:   "\033[1;35m",
		Accent:  "\033[34m",
		Success: "\033[32m",
		Warning: "\033[33m",
		Error:   "\033[31m",
		Muted:   "\033[90m",
	},
	"dark": {
		Name:    "dark",
		Title:   "\033[1;95m",
		Accent:  "\033[96m",
		Success: "\033[92m",
		Warning: "\033[93m",
		Error:   "\033[91m",
		Muted:   "\033[37m",
	},
	"plain": {Name: "plain"},
}

// ThemeByName falls back to plain for unknown names.
func ThemeByName(name string) (Theme, bool) {
	t, ok := themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return themes["plain"], false
	}
	return t, true
}

func (t Theme) paint(style, s string) string {
	if style == "" {
		return s
	}
	return style + s + reset
}
