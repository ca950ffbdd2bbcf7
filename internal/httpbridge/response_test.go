package httpbridge

import (
	"bufio"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
)

func TestEncodeHandlerResultNilBecomesOK(t *testing.T) {
	r := encodeHandlerResult(nil, nil)
	assert.Equal(t, 200, r.status)
	assert.Equal(t, "application/json", r.contentType)
	assert.JSONEq(t, `{"ok":true}`, string(r.body))
}

func TestEncodeHandlerResultStringIsPlainText(t *testing.T) {
	r := encodeHandlerResult("hello", nil)
	assert.Equal(t, "text/plain; charset=utf-8", r.contentType)
	assert.Equal(t, "hello", string(r.body))
}

func TestEncodeHandlerResultBytesIsOctetStream(t *testing.T) {
	r := encodeHandlerResult([]byte{1, 2, 3}, nil)
	assert.Equal(t, "application/octet-stream", r.contentType)
	assert.Equal(t, []byte{1, 2, 3}, r.body)
}

func TestEncodeHandlerResultAppErrorStaysHTTP200(t *testing.T) {
	err := apperr.TargetMissing("no such node")
	r := encodeHandlerResult(nil, err)
	assert.Equal(t, 200, r.status)
	assert.Contains(t, string(r.body), "target_missing")
}

func TestEncodeHandlerResultGenericErrorIs500(t *testing.T) {
	r := encodeHandlerResult(nil, panicError{"boom"})
	assert.Equal(t, 500, r.status)
	assert.Contains(t, string(r.body), "Internal:")
}

func TestWriteResponseProducesParsableHTTP(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		writeResponse(server, jsonResponse(200, map[string]any{"ok": true}))
	}()

	resp, err := http.ReadResponse(bufio.NewReader(client), nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "close", resp.Header.Get("Connection"))
}

func TestStatusTextKnownCodes(t *testing.T) {
	assert.Equal(t, "OK", statusText(200))
	assert.Equal(t, "Not Found", statusText(404))
	assert.Equal(t, "Internal Server Error", statusText(500))
}
