package web

import (
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type liveMessage struct {
	Type        string `json:"type"`
	HTML        string `json:"html"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	Level       string `json:"level"`
	Message     string `json:"message"`
	ReportID    string `json:"report_id"`
}

func dialLive(t *testing.T, s *Server) net.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)

	conn, br, _, err := ws.Dial(t.Context(), "ws"+strings.TrimPrefix(ts.URL, "http")+"/live")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	if br != nil {
		// Frames that arrived with the handshake are still in br.
		return &bufferedConn{Conn: conn, r: br}
	}
	return conn
}

type bufferedConn struct {
	net.Conn
	r io.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

func readLive(t *testing.T, conn net.Conn) liveMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	data, err := wsutil.ReadServerText(conn)
	require.NoError(t, err)

	var msg liveMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendLive(t *testing.T, conn net.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, wsutil.WriteClientText(conn, data))
}

func TestLive_FilterAndSort(t *testing.T) {
	conn := dialLive(t, newTestServer(t, nil, nil))

	first := readLive(t, conn)
	require.Equal(t, msgResults, first.Type)
	assert.Less(t, strings.Index(first.HTML, ">EUR<"), strings.Index(first.HTML, ">USD<"))

	sendLive(t, conn, clientMessage{Type: msgSort, Sort: "value", Dir: "desc"})
	msg := readLive(t, conn)
	require.Equal(t, msgResults, msg.Type)
	assert.Less(t, strings.Index(msg.HTML, ">USD<"), strings.Index(msg.HTML, ">EUR<"))

	sendLive(t, conn, clientMessage{Type: msgFilter, Query: "mensual"})
	msg = readLive(t, conn)
	assert.Contains(t, msg.HTML, ">USD<")
	assert.NotContains(t, msg.HTML, ">EUR<")

	sendLive(t, conn, clientMessage{Type: msgFilter, Query: "zzz"})
	msg = readLive(t, conn)
	assert.Contains(t, msg.HTML, core.EmptyResultsText)
}

func TestLive_Export(t *testing.T) {
	s := newTestServer(t, nil, nil)
	conn := dialLive(t, s)
	readLive(t, conn)

	sendLive(t, conn, clientMessage{Type: msgFilter, Query: "zzz"})
	readLive(t, conn)

	sendLive(t, conn, clientMessage{Type: msgExport})
	msg := readLive(t, conn)
	require.Equal(t, msgDownload, msg.Type)
	assert.Equal(t, core.ExportFilename, msg.Filename)
	assert.Equal(t, core.ExportContentType, msg.ContentType)

	// The full dataset is exported regardless of the filter
	want, err := core.Export(s.store)
	require.NoError(t, err)
	assert.Equal(t, string(want.Body), msg.Body)
}

func TestLive_Send(t *testing.T) {
	stub := &emailStub{}
	conn := dialLive(t, newTestServer(t, nil, stub))
	readLive(t, conn)

	sendLive(t, conn, clientMessage{Type: msgSend, To: ""})
	msg := readLive(t, conn)
	require.Equal(t, msgNotice, msg.Type)
	assert.Equal(t, string(core.NoticeWarning), msg.Level)
	assert.Equal(t, core.MsgRecipientRequired, msg.Message)

	sendLive(t, conn, clientMessage{Type: msgSend, To: "ana@example.com", Subject: "Hoy"})
	msg = readLive(t, conn)
	require.Equal(t, msgNotice, msg.Type)
	assert.Equal(t, string(core.NoticeSuccess), msg.Level)
	assert.Equal(t, core.MsgReportSent, msg.Message)
	assert.NotEmpty(t, msg.ReportID)
	assert.Equal(t, 1, stub.count())
}

func TestLive_IgnoresUnknownMessages(t *testing.T) {
	conn := dialLive(t, newTestServer(t, nil, nil))
	readLive(t, conn)

	require.NoError(t, wsutil.WriteClientText(conn, []byte("not json")))
	sendLive(t, conn, clientMessage{Type: "dance"})
	sendLive(t, conn, clientMessage{Type: msgFilter, Query: "usd"})

	msg := readLive(t, conn)
	require.Equal(t, msgResults, msg.Type)
	assert.Contains(t, msg.HTML, ">USD<")
}
