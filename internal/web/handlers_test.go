package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/PriceView/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postReport(t *testing.T, s *Server, contentType, body string) (*httptest.ResponseRecorder, reportReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/report", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := do(t, s, req)

	var reply reportReply
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	}
	return rec, reply
}

func TestReport_JSON(t *testing.T) {
	stub := &emailStub{}
	s := newTestServer(t, nil, stub)

	rec, reply := postReport(t, s, "application/json", `{"to":" ana@example.com ","subject":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reply.OK)
	assert.Equal(t, core.MsgReportSent, reply.Message)
	assert.NotEmpty(t, reply.ReportID)

	require.Equal(t, 1, stub.count())
	p := stub.payloads[0]
	assert.Equal(t, "ana@example.com", p.To)
	assert.Equal(t, core.DefaultReportSubject, p.Subject)
	assert.Len(t, p.Result.Prices, 2)
	url, ok := p.Meta.Lookup("url")
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/pricing", url)
}

func TestReport_Form(t *testing.T) {
	stub := &emailStub{}
	s := newTestServer(t, nil, stub)

	form := url.Values{"to": {"ana@example.com"}, "subject": {"Precios"}}
	rec, reply := postReport(t, s, "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, reply.OK)
	require.Equal(t, 1, stub.count())
	assert.Equal(t, "Precios", stub.payloads[0].Subject)
}

func TestReport_MissingRecipient(t *testing.T) {
	stub := &emailStub{}
	s := newTestServer(t, nil, stub)

	rec, reply := postReport(t, s, "application/json", `{"to":"   "}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, reply.OK)
	assert.Equal(t, core.MsgRecipientRequired, reply.Message)
	assert.Zero(t, stub.count())
}

func TestReport_ServiceRejects(t *testing.T) {
	stub := &emailStub{reply: `{"ok":false,"error":"smtp down"}`}
	s := newTestServer(t, nil, stub)

	rec, reply := postReport(t, s, "application/json", `{"to":"ana@example.com"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.False(t, reply.OK)
	assert.Equal(t, core.MsgReportFailed+"smtp down", reply.Message)
}

func TestReport_MalformedBody(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec, _ := postReport(t, s, "application/json", `{"to":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REQ001", resp.Code)
}

func TestReport_BodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxBodySize = 16
	s := newTestServer(t, cfg, nil)

	rec, _ := postReport(t, s, "application/json", `{"to":"someone-with-a-long-name@example.com"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "REQ002", resp.Code)
}

func TestReport_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.ReportLimit = 1
	stub := &emailStub{}
	s := newTestServer(t, cfg, stub)

	rec, _ := postReport(t, s, "application/json", `{"to":"ana@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = postReport(t, s, "application/json", `{"to":"ana@example.com"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, stub.count())
}

func TestReport_NoReporter(t *testing.T) {
	store := core.NewRecordStore(core.ParseDataset([]byte(testDataset)))
	s := NewServer(testConfig(), store, nil, nil)

	rec, _ := postReport(t, s, "application/json", `{"to":"ana@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	page := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotContains(t, page.Body.String(), `id="sendEmailBtn"`)
}
