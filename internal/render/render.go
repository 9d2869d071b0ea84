// Package render produces the server-rendered HTML pages. All interpolation
// goes through html/template so escaping is the default; the one exception
// is the audited Highlight helper, which escapes its input itself.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/CG3-Media/dexo-activity/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS exposes the embedded read-only assets (avatar image).
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

type Renderer struct {
	tmpl *template.Template
	loc  *time.Location

	// now is swappable for tests.
	now func() time.Time
}

func NewRenderer(loc *time.Location) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, loc: loc, now: time.Now}, nil
}

// DayTab is one entry in the date navigation.
type DayTab struct {
	Label  string
	URL    string
	Active bool
}

// Card is one activity prepared for the template. Content is pre-escaped
// (and possibly highlighted) HTML; everything else is escaped by the
// template engine.
type Card struct {
	Content   template.HTML
	Category  string
	Details   string
	TimeLabel string
}

// PageData is the timeline template's root context.
type PageData struct {
	Search       string
	SelectedDate string
	Tabs         []DayTab
	Cards        []Card
	EmptyMessage string
}

// TimelinePage renders the activity timeline.
func (r *Renderer) TimelinePage(w io.Writer, activities []models.Activity, search, selectedDate string, days []string) error {
	now := r.now()

	data := PageData{
		Search:       search,
		SelectedDate: selectedDate,
		Tabs: []DayTab{{
			Label:  "All",
			URL:    tabURL("", search),
			Active: selectedDate == "",
		}},
	}
	for _, day := range days {
		data.Tabs = append(data.Tabs, DayTab{
			Label:  DayLabel(day, now, r.loc),
			URL:    tabURL(day, search),
			Active: day == selectedDate,
		})
	}
	for _, a := range activities {
		data.Cards = append(data.Cards, Card{
			Content:   Highlight(a.Content, search),
			Category:  a.Category,
			Details:   a.Details,
			TimeLabel: RelativeTime(a.CreatedAt, now, r.loc),
		})
	}
	if len(data.Cards) == 0 {
		data.EmptyMessage = EmptyMessage(search, selectedDate)
	}

	return r.tmpl.ExecuteTemplate(w, "timeline.html", data)
}

// LockedPage renders the fixed page shown to unauthenticated browsers.
func (r *Renderer) LockedPage(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "locked.html", nil)
}
