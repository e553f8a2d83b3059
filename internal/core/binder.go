package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/a-h/templ"
)

// Events is the set of user actions a results page can raise. Platform
// bindings translate their own input (form posts, socket messages, flags)
// into these calls.
type Events interface {
	OnFilterChange(query string)
	OnSortChange(key SortKey, dir Direction)
	OnExport()
	OnSend(to, subject string)
}

// NoticeLevel classifies a user notification.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a short message for the user, such as the result of a send.
type Notice struct {
	Level    NoticeLevel `json:"level"`
	Message  string      `json:"message"`
	ReportID string      `json:"report_id,omitempty"`
}

// Surface is implemented by the platform binding that displays results.
// Download and Notify may be called from a goroutine other than the one
// raising events.
type Surface interface {
	ShowResults(view templ.Component)
	Download(file ExportFile)
	Notify(n Notice)
}

// Controls holds the current filter and sort selections.
type Controls struct {
	Query     string
	Key       SortKey
	Direction Direction
}

// Normalize trims the query and replaces unknown selections with defaults.
func (c Controls) Normalize() Controls {
	return Controls{
		Query:     strings.TrimSpace(c.Query),
		Key:       ParseSortKey(string(c.Key)),
		Direction: ParseDirection(string(c.Direction)),
	}
}

// Apply runs filter then sort over the store's records.
func (c Controls) Apply(store *RecordStore) []PriceRecord {
	c = c.Normalize()
	return Sort(Filter(store.All(), c.Query), c.Key, c.Direction)
}

// View renders the store as seen through c.
func View(store *RecordStore, c Controls) templ.Component {
	return Render(c.Apply(store))
}

// Binder keeps the control state of one results page and pushes a fresh
// render to its Surface on every change.
//
// Filter and sort events must come from a single goroutine. Sends run in the
// background and report back through Surface.Notify.
type Binder struct {
	ctx      context.Context
	store    *RecordStore
	reporter *Reporter
	surface  Surface
	controls Controls
}

var _ Events = (*Binder)(nil)

// NewBinder creates a Binder. ctx bounds background sends; it is detached
// from cancellation so a send outlives the event that started it. A nil
// reporter disables sending.
func NewBinder(ctx context.Context, store *RecordStore, reporter *Reporter, surface Surface) *Binder {
	return &Binder{
		ctx:      context.WithoutCancel(ctx),
		store:    store,
		reporter: reporter,
		surface:  surface,
		controls: Controls{}.Normalize(),
	}
}

// Start draws the initial view: every record, sorted by value ascending.
func (b *Binder) Start() {
	b.refresh()
}

// Controls returns the current selections.
func (b *Binder) Controls() Controls { return b.controls }

// OnFilterChange implements Events.
func (b *Binder) OnFilterChange(query string) {
	b.controls.Query = strings.TrimSpace(query)
	b.refresh()
}

// OnSortChange implements Events.
func (b *Binder) OnSortChange(key SortKey, dir Direction) {
	b.controls.Key = key
	b.controls.Direction = dir
	b.refresh()
}

// OnExport implements Events.
func (b *Binder) OnExport() {
	file, err := Export(b.store)
	if err != nil {
		slog.Error("export failed", "error", err)
		b.surface.Notify(Notice{Level: NoticeError, Message: FormatUserError(err)})
		return
	}
	b.surface.Download(file)
}

// OnSend implements Events. An empty recipient is reported immediately;
// otherwise the send runs in the background.
func (b *Binder) OnSend(to, subject string) {
	if b.reporter == nil {
		return
	}
	if _, _, err := b.reporter.Validate(to, subject); err != nil {
		b.surface.Notify(Outcome{Message: MsgRecipientRequired, Err: err}.Notice())
		return
	}

	go func() {
		out := b.reporter.Send(b.ctx, to, subject)
		b.surface.Notify(out.Notice())
	}()
}

func (b *Binder) refresh() {
	b.controls = b.controls.Normalize()
	b.surface.ShowResults(View(b.store, b.controls))
}
