package render

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// RelativeTime formats how long ago t was relative to now: "just now"
// under a minute, then minutes, hours, days, and past a week the short
// absolute date.
func RelativeTime(t, now time.Time, loc *time.Location) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.In(loc).Format("Jan 2")
	}
}

// Highlight escapes text and wraps every case-insensitive occurrence of
// term in a <mark> tag. This is the only place in the renderer that
// produces template.HTML: the input is escaped first, and the term is
// quoted so regex metacharacters in a search string match literally.
func Highlight(text, term string) template.HTML {
	escaped := template.HTMLEscapeString(text)
	if term == "" {
		return template.HTML(escaped)
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(template.HTMLEscapeString(term)))
	if err != nil {
		return template.HTML(escaped)
	}
	return template.HTML(re.ReplaceAllString(escaped, "<mark>$0</mark>"))
}

// DayLabel renders a YYYY-MM-DD day as "Today", "Yesterday", or the short
// absolute date.
func DayLabel(date string, now time.Time, loc *time.Location) string {
	today := now.In(loc).Format("2006-01-02")
	yesterday := now.In(loc).AddDate(0, 0, -1).Format("2006-01-02")
	switch date {
	case today:
		return "Today"
	case yesterday:
		return "Yesterday"
	}
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return date
	}
	return d.Format("Jan 2")
}

// EmptyMessage picks the empty-state text for the current filters.
func EmptyMessage(search, date string) string {
	switch {
	case search != "":
		return "No matching activities"
	case date != "":
		return "No activities on this day"
	default:
		return "No activities yet"
	}
}

// tabURL builds the link target for a date tab, preserving the active
// search term. An empty date is the "All" tab.
func tabURL(date, search string) string {
	var params []string
	if date != "" {
		params = append(params, "date="+date)
	}
	if search != "" {
		params = append(params, "q="+url.QueryEscape(search))
	}
	if len(params) == 0 {
		return "/"
	}
	return "/?" + strings.Join(params, "&")
}
