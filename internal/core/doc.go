// Package core provides the domain logic of the price results viewer.
//
// This package holds everything the viewer does independent of any transport.
// It is used by the HTTP handlers, the live socket session and the pricectl
// CLI without modification.
//
// # Pipeline
//
// A [RecordStore] is built once from a [Dataset] and never changes. Every
// view of it is derived by a pure pipeline:
//
//	records := store.All()
//	records = Filter(records, query)
//	records = Sort(records, SortByValue, Ascending)
//	component := Render(records)
//
// [View] runs the whole pipeline for a set of [Controls].
//
// # Records
//
// Extracted data is untrusted. A [PriceRecord] keeps the exact JSON object it
// was decoded from, and its [Value] is explicitly absent, numeric or text, so
// malformed values sort as zero and render as their raw text instead of
// failing.
//
// # Actions
//
// [Export] and [Reporter.Send] always work on the full store, never on the
// filtered view. Sends are not deduplicated; each call is one request.
//
// # Binding
//
// [Events] is the set of user actions and [Surface] the display a binding
// provides. [Binder] implements Events by re-running the pipeline on every
// filter or sort change and pushing the result to the Surface.
//
// # Error Handling
//
// Technical errors are mapped to coded user messages with [MapError]. See
// error_messages.go for the code reference.
package core
