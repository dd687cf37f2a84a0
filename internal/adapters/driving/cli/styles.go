package cli

import (
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// printer renders command output, styled when writing to a terminal.
type printer struct {
	styled bool

	title   lipgloss.Style
	sender  lipgloss.Style
	muted   lipgloss.Style
	match   lipgloss.Style
	warning lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}

	return &printer{
		styled:  styled,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		sender:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		match:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F9E2AF")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

func (p *printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *printer) Title(s string) string   { return p.render(p.title, s) }
func (p *printer) Sender(s string) string  { return p.render(p.sender, s) }
func (p *printer) Muted(s string) string   { return p.render(p.muted, s) }
func (p *printer) Warning(s string) string { return p.render(p.warning, s) }

// Highlight emphasises the words of body whose folded form is in words.
func (p *printer) Highlight(body string, words []string) string {
	if !p.styled || len(words) == 0 {
		return body
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}

	fields := strings.Fields(body)
	for i, f := range fields {
		word := strings.ToLower(strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))
		if _, ok := set[word]; ok {
			fields[i] = p.match.Render(f)
		}
	}
	return strings.Join(fields, " ")
}
