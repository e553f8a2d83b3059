package web

import (
	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/web/templates"
	"github.com/a-h/templ"
)

// Page renders the results page with the results grid already drawn for c.
// Send controls are left out when sending is unavailable.
func Page(store *core.RecordStore, c core.Controls, canSend bool) templ.Component {
	c = c.Normalize()
	source, _ := store.Meta().Lookup("url")

	return templates.Page(templates.PageData{
		SourceURL: source,
		Query:     c.Query,
		SortKeys: templates.Options(string(c.Key),
			[2]string{string(core.SortByValue), "Valor"},
			[2]string{string(core.SortByCurrency), "Moneda"},
		),
		SortDirs: templates.Options(string(c.Direction),
			[2]string{string(core.Ascending), "Ascendente"},
			[2]string{string(core.Descending), "Descendente"},
		),
		CanSend:        canSend,
		DefaultSubject: core.DefaultReportSubject,
		Results:        core.View(store, c),
	})
}
