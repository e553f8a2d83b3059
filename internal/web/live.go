package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/JonMunkholm/PriceView/internal/logging"
	custommw "github.com/JonMunkholm/PriceView/internal/web/middleware"
	"github.com/a-h/templ"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
)

// Message types on the live socket.
const (
	msgFilter = "filter"
	msgSort   = "sort"
	msgExport = "export"
	msgSend   = "send"

	msgResults  = "results"
	msgDownload = "download"
	msgNotice   = "notice"
)

// clientMessage is one event from the page.
type clientMessage struct {
	Type    string `json:"type"`
	Query   string `json:"query,omitempty"`
	Sort    string `json:"sort,omitempty"`
	Dir     string `json:"dir,omitempty"`
	To      string `json:"to,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type resultsMessage struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

type downloadMessage struct {
	Type        string `json:"type"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

type noticeMessage struct {
	Type string `json:"type"`
	core.Notice
}

// liveSession is the Surface of one connected page. Writes are serialized
// because report completions arrive from their own goroutines.
type liveSession struct {
	id     string
	conn   net.Conn
	log    *slog.Logger
	mu     sync.Mutex
	closed bool
}

var _ core.Surface = (*liveSession)(nil)

func (s *liveSession) ShowResults(view templ.Component) {
	var buf bytes.Buffer
	if err := view.Render(context.Background(), &buf); err != nil {
		s.log.Error("render results failed", "error", err)
		return
	}
	s.write(resultsMessage{Type: msgResults, HTML: buf.String()})
}

func (s *liveSession) Download(file core.ExportFile) {
	s.write(downloadMessage{
		Type:        msgDownload,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Body:        string(file.Body),
	})
}

func (s *liveSession) Notify(n core.Notice) {
	s.write(noticeMessage{Type: msgNotice, Notice: n})
}

func (s *liveSession) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.log.Error("encode live message failed", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err := wsutil.WriteServerText(s.conn, data); err != nil {
		s.log.Debug("live write failed", "error", err)
		s.closed = true
	}
}

func (s *liveSession) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.conn.Close()
}

// handleLive upgrades to a WebSocket and binds the page's controls to a
// Binder for the lifetime of the connection.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		logging.FromContext(r.Context()).Warn("live upgrade failed", "error", err)
		return
	}

	session := &liveSession{
		id:   uuid.NewString(),
		conn: conn,
	}
	session.log = logging.WithFields(r.Context(), "session", session.id)
	defer session.close()

	ip := custommw.ClientIP(r)
	session.log.Info("live session opened", "ip", ip)

	binder := core.NewBinder(WithRequestMetadata(r.Context(), r), s.store, s.reporter, session)
	binder.Start()

	for {
		data, op, err := wsutil.ReadClientData(conn)
		if err != nil {
			var closed wsutil.ClosedError
			if !errors.As(err, &closed) && !errors.Is(err, io.EOF) {
				session.log.Debug("live read failed", "error", err)
			}
			break
		}
		if op != ws.OpText {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			session.log.Warn("malformed live message", "error", err)
			continue
		}

		switch msg.Type {
		case msgFilter:
			binder.OnFilterChange(msg.Query)
		case msgSort:
			binder.OnSortChange(core.SortKey(msg.Sort), core.Direction(msg.Dir))
		case msgExport:
			binder.OnExport()
		case msgSend:
			if s.reportLimiter != nil && !s.reportLimiter.allow(ip) {
				session.Notify(core.Notice{Level: core.NoticeError, Message: core.FormatUserError(errRateLimited)})
				continue
			}
			binder.OnSend(msg.To, msg.Subject)
		default:
			session.log.Warn("unknown live message", "type", msg.Type)
		}
	}

	session.log.Info("live session closed")
}
