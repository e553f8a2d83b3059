// Package templates holds the templ components for the price results page.
package templates

import "github.com/a-h/templ"

//go:generate templ generate

// Option is one entry of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// PageData is everything the page shell needs. Results is drawn inside the
// results grid and must not be nil.
type PageData struct {
	SourceURL      string
	Query          string
	SortKeys       []Option
	SortDirs       []Option
	CanSend        bool
	DefaultSubject string
	Results        templ.Component
}

// Options builds select entries from value/label pairs, marking selected.
func Options(selected string, pairs ...[2]string) []Option {
	out := make([]Option, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Option{Value: p[0], Label: p[1], Selected: p[0] == selected})
	}
	return out
}
