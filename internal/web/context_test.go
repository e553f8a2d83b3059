package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/PriceView/internal/logging"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestMetadata(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/report", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	req.Header.Set("User-Agent", "pricectl-test")

	client := logging.ClientFromContext(WithRequestMetadata(context.Background(), req))

	assert.Equal(t, "203.0.113.7", client.IP)
	assert.Equal(t, "pricectl-test", client.UserAgent)
	assert.Empty(t, logging.ClientFromContext(context.Background()).IP)
}
