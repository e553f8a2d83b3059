package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/PriceView/internal/logging"
	"github.com/google/uuid"
)

// DefaultReportSubject is used when the user leaves the subject blank.
const DefaultReportSubject = "Reporte de precios"

// DefaultReportEndpoint is the email service the page posts to when nothing
// else is configured.
const DefaultReportEndpoint = "http://127.0.0.1:8000/email"

// ReportIDHeader carries the per-send identifier to the email service.
const ReportIDHeader = "X-Report-ID"

// Messages shown to the user after a send attempt.
const (
	MsgRecipientRequired = "Ingresa un correo destino"
	MsgReportSent        = "Reporte enviado correctamente."
	MsgReportFailed      = "Error al enviar email: "
	MsgUnknownError      = "Error desconocido"
)

// maxResponseBytes bounds how much of the email service's reply is read.
const maxResponseBytes = 1 << 20

var (
	// ErrRecipientRequired is returned when no destination address is given.
	ErrRecipientRequired = errors.New("report recipient is required")
	// ErrReportRejected is returned when the email service answers ok=false.
	ErrReportRejected = errors.New("email service rejected report")
)

// ReportPayload is the JSON body posted to the email service.
type ReportPayload struct {
	To      string       `json:"to"`
	Subject string       `json:"subject"`
	Meta    Metadata     `json:"meta"`
	Result  ReportResult `json:"result"`
}

// ReportResult wraps the records sent with a report.
type ReportResult struct {
	Prices []PriceRecord `json:"prices"`
}

type reportResponse struct {
	OK    bool            `json:"ok"`
	Error json.RawMessage `json:"error,omitempty"`
}

// Outcome describes how a send attempt ended.
type Outcome struct {
	ReportID string
	OK       bool
	Message  string
	Err      error
}

// Invalid reports whether the send was refused before any request was made.
func (o Outcome) Invalid() bool {
	return errors.Is(o.Err, ErrRecipientRequired)
}

// Notice converts the outcome into a user notification.
func (o Outcome) Notice() Notice {
	level := NoticeError
	switch {
	case o.OK:
		level = NoticeSuccess
	case o.Invalid():
		level = NoticeWarning
	}
	return Notice{Level: level, Message: o.Message, ReportID: o.ReportID}
}

// ReporterOptions configures a Reporter.
type ReporterOptions struct {
	// Client performs the request. Defaults to a client with a 30s timeout.
	Client *http.Client
	// Endpoint is the email service URL. Defaults to DefaultReportEndpoint.
	Endpoint string
	// DefaultSubject replaces a blank subject. Defaults to DefaultReportSubject.
	DefaultSubject string
	// Inflight, when set, tracks sends so shutdown can wait for them.
	Inflight *Inflight
}

// Reporter sends the full dataset to the email service.
//
// Sends are independent: there is no queue, debounce or deduplication, so two
// calls in quick succession produce two requests.
type Reporter struct {
	store          *RecordStore
	client         *http.Client
	endpoint       string
	defaultSubject string
	inflight       *Inflight
}

// NewReporter creates a Reporter for store.
func NewReporter(store *RecordStore, opts ReporterOptions) *Reporter {
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultReportEndpoint
	}
	if opts.DefaultSubject == "" {
		opts.DefaultSubject = DefaultReportSubject
	}
	return &Reporter{
		store:          store,
		client:         opts.Client,
		endpoint:       opts.Endpoint,
		defaultSubject: opts.DefaultSubject,
		inflight:       opts.Inflight,
	}
}


// Validate trims the inputs and applies the default subject.
func (r *Reporter) Validate(to, subject string) (string, string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", "", ErrRecipientRequired
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = r.defaultSubject
	}
	return to, subject, nil
}

// Send posts one report. It never returns an error directly; failures are
// described by the Outcome.
func (r *Reporter) Send(ctx context.Context, to, subject string) Outcome {
	to, subject, err := r.Validate(to, subject)
	if err != nil {
		return Outcome{Message: MsgRecipientRequired, Err: err}
	}

	if r.inflight != nil {
		r.inflight.Begin()
		defer r.inflight.End()
	}

	id := uuid.NewString()
	log := logging.WithFields(ctx, "report_id", id, "endpoint", r.endpoint)
	start := time.Now()

	err = r.post(ctx, id, ReportPayload{
		To:      to,
		Subject: subject,
		Meta:    r.store.Meta(),
		Result:  ReportResult{Prices: r.store.All()},
	})
	if err != nil {
		log.Warn("report send failed", "error", err, "duration", time.Since(start))
		return Outcome{ReportID: id, Message: MsgReportFailed + failureText(err), Err: err}
	}

	log.Info("report sent", "records", r.store.Len(), "duration", time.Since(start))
	return Outcome{ReportID: id, OK: true, Message: MsgReportSent}
}

func (r *Reporter) post(ctx context.Context, id string, payload ReportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ReportIDHeader, id)

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer resp.Body.Close()

	// The service describes failures in the body, so the status code is ignored.
	var out reportResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return fmt.Errorf("decode email response (status %d): %w", resp.StatusCode, err)
	}
	if !out.OK {
		reason, _ := jsonText(out.Error)
		return &rejectedError{reason: reason}
	}
	return nil
}

// rejectedError carries the email service's own explanation.
type rejectedError struct {
	reason string
}

func (e *rejectedError) Error() string {
	if e.reason == "" {
		return ErrReportRejected.Error()
	}
	return ErrReportRejected.Error() + ": " + e.reason
}

func (e *rejectedError) Unwrap() error { return ErrReportRejected }

// failureText picks the text appended to MsgReportFailed.
func failureText(err error) string {
	var rej *rejectedError
	if errors.As(err, &rej) {
		if rej.reason == "" {
			return MsgUnknownError
		}
		return rej.reason
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgUnknownError
}
