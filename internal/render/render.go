// Package render formats notifications and record listings for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/atinylittleshell/memorycare/internal/location"
	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

// ANSI colors shared by every style
const (
	ColorCyan   = lipgloss.Color("12")
	ColorYellow = lipgloss.Color("11")
	ColorGreen  = lipgloss.Color("10")
	ColorRed    = lipgloss.Color("9")
	ColorGray   = lipgloss.Color("8")
)

const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolInfo    = "→"
)

// Kind is the flavour of a notification.
type Kind int

const (
	Success Kind = iota
	Error
	Info
)

// Renderer writes styled output to one writer.
type Renderer struct {
	w   io.Writer
	now func() time.Time

	header  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
	dim     lipgloss.Style
	tag     lipgloss.Style
}

// New creates a renderer for w. Color support is detected from w unless opts
// force a profile (termenv.WithProfile(termenv.Ascii) for plain text).
func New(w io.Writer, opts ...termenv.OutputOption) *Renderer {
	r := lipgloss.NewRenderer(w, opts...)
	return &Renderer{
		w:       w,
		now:     time.Now,
		header:  r.NewStyle().Foreground(ColorCyan).Bold(true),
		success: r.NewStyle().Foreground(ColorGreen),
		failure: r.NewStyle().Foreground(ColorRed),
		info:    r.NewStyle().Foreground(ColorGray),
		dim:     r.NewStyle().Foreground(ColorGray),
		tag:     r.NewStyle().Foreground(ColorYellow),
	}
}

// Plain creates a renderer that never emits escape sequences.
func Plain(w io.Writer) *Renderer {
	return New(w, termenv.WithProfile(termenv.Ascii))
}

// Notify prints a one-line notification.
func (r *Renderer) Notify(kind Kind, format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	switch kind {
	case Success:
		fmt.Fprintf(r.w, "%s %s\n", r.success.Render(SymbolSuccess), message)
	case Error:
		fmt.Fprintf(r.w, "%s %s\n", r.failure.Render(SymbolError), r.failure.Render(message))
	default:
		fmt.Fprintf(r.w, "%s %s\n", r.info.Render(SymbolInfo), message)
	}
}

// Write passes text through unstyled; used for streamed assistant replies.
func (r *Renderer) Write(p []byte) (int, error) {
	return r.w.Write(p)
}

func (r *Renderer) heading(title string, count int) {
	fmt.Fprintf(r.w, "%s %s\n", r.header.Render(title), r.dim.Render(fmt.Sprintf("(%d)", count)))
}

func (r *Renderer) empty(message string) {
	fmt.Fprintf(r.w, "  %s\n", r.dim.Render(message))
}

func (r *Renderer) People(people []models.Person) {
	r.heading("People", len(people))
	if len(people) == 0 {
		r.empty("No people added yet.")
		return
	}
	for _, p := range people {
		fmt.Fprintf(r.w, "  %s  %s %s\n", r.dim.Render(shortID(p.ID)), p.Name, r.dim.Render("· "+p.Relationship))
		if p.KeyInfoSummary != "" {
			fmt.Fprintf(r.w, "      %s\n", p.KeyInfoSummary)
		} else if p.KeyInfo != "" {
			fmt.Fprintf(r.w, "      %s\n", p.KeyInfo)
		}
	}
}

func (r *Renderer) Journal(entries []models.JournalEntry) {
	r.heading("Journal", len(entries))
	if len(entries) == 0 {
		r.empty("No journal entries yet.")
		return
	}
	for _, e := range entries {
		when := humanize.RelTime(time.UnixMilli(e.Timestamp), r.now(), "ago", "from now")
		fmt.Fprintf(r.w, "  %s  %s\n", r.dim.Render(shortID(e.ID)), r.dim.Render(when))
		fmt.Fprintf(r.w, "      %s\n", e.Text)
		if len(e.Tags) > 0 {
			tags := make([]string, len(e.Tags))
			for i, tag := range e.Tags {
				tags[i] = r.tag.Render("#" + tag)
			}
			fmt.Fprintf(r.w, "      %s\n", strings.Join(tags, " "))
		}
	}
}

func (r *Renderer) Activities(activities []models.Activity) {
	r.heading("Activities", len(activities))
	if len(activities) == 0 {
		r.empty("No activities planned yet.")
		return
	}
	for _, a := range activities {
		line := fmt.Sprintf("  %s  %s  %s", r.dim.Render(shortID(a.ID)), r.header.Render(a.Time), a.Name)
		if a.IsRecurring {
			line += " " + r.dim.Render("(daily)")
		}
		fmt.Fprintln(r.w, line)
		if a.Description != "" {
			fmt.Fprintf(r.w, "      %s\n", a.Description)
		}
	}
}

// Locations lists saved places, with their distance from home when known.
func (r *Renderer) Locations(places []models.SavedLocation, home *models.LocationInfo) {
	if home != nil {
		fmt.Fprintf(r.w, "%s %.6f, %.6f\n", r.header.Render("Home"), home.Latitude, home.Longitude)
	}
	r.heading("Saved places", len(places))
	if len(places) == 0 {
		r.empty("No saved places yet.")
		return
	}
	for _, p := range places {
		line := fmt.Sprintf("  %s  %s  %s", r.dim.Render(shortID(p.ID)), p.Name,
			r.dim.Render(fmt.Sprintf("%.6f, %.6f", p.Location.Latitude, p.Location.Longitude)))
		if home != nil {
			line += " " + r.dim.Render("· "+FormatDistance(location.Distance(*home, p.Location))+" from home")
		}
		fmt.Fprintln(r.w, line)
	}
}

func (r *Renderer) Emails(emails []string) {
	r.heading("Family contacts", len(emails))
	if len(emails) == 0 {
		r.empty("No family emails added yet.")
		return
	}
	for _, e := range emails {
		fmt.Fprintf(r.w, "  %s\n", e)
	}
}

// FormatDistance renders metres below one kilometre and kilometres above.
func FormatDistance(meters float64) string {
	if meters < 1000 {
		return humanize.FtoaWithDigits(meters, 0) + " m"
	}
	return humanize.FtoaWithDigits(meters/1000, 1) + " km"
}

// shortID keeps listings narrow; commands accept any unique id prefix.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
