// Package output renders CLI messages and tables.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

	headerStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func message(w io.Writer, icon lipgloss.Style, symbol, format string, args ...any) {
	fmt.Fprint(w, icon.Render(symbol+" "))
	fmt.Fprintf(w, format+"\n", args...)
}

// Success prints a success message.
func Success(w io.Writer, format string, args ...any) {
	message(w, successStyle, "✓", format, args...)
}

// Warning prints a warning message.
func Warning(w io.Writer, format string, args ...any) {
	message(w, warningStyle, "⚠", format, args...)
}

// Error prints an error message.
func Error(w io.Writer, format string, args ...any) {
	message(w, errorStyle, "✗", format, args...)
}

// Info prints an info message.
func Info(w io.Writer, format string, args ...any) {
	message(w, infoStyle, "ℹ", format, args...)
}

// Muted prints a dimmed line.
func Muted(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header.
func Section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, primaryStyle.Render(title))
	fmt.Fprintln(w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// Table prints rows under headers. An empty table prints a muted note
// instead.
func Table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		Muted(w, "(none)")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

// JSON prints v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
