package httpbridge

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

func newTestConnection(t *testing.T) (*connection, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return newConnection(server), client
}

func TestNewConnectionAssignsRandomID(t *testing.T) {
	c1, _ := newTestConnection(t)
	c2, _ := newTestConnection(t)
	assert.NotEmpty(t, c1.id)
	assert.NotEqual(t, c1.id, c2.id)
	assert.Equal(t, types.ConnAccepted, c1.state)
}

func TestAppendBytesParsesRequestLineAndQuery(t *testing.T) {
	c, _ := newTestConnection(t)
	raw := "GET /snapshot?root=%2Fworld&depth=3 HTTP/1.1\r\nHost: x\r\n\r\n"
	c.appendBytes([]byte(raw))

	require.Equal(t, types.ConnBodyComplete, c.state)
	assert.Equal(t, "GET", c.method)
	assert.Equal(t, "/snapshot", c.path)
	assert.Equal(t, "/world", c.queryParams["root"])
	assert.Equal(t, "3", c.queryParams["depth"])
}

func TestAppendBytesWaitsForFullBody(t *testing.T) {
	c, _ := newTestConnection(t)
	header := "POST /click HTTP/1.1\r\nContent-Length: 10\r\nContent-Type: application/json\r\n\r\n"
	c.appendBytes([]byte(header))
	assert.Equal(t, types.ConnHeaderParsed, c.state)

	c.appendBytes([]byte(`{"x":1`))
	assert.Equal(t, types.ConnHeaderParsed, c.state)

	c.appendBytes([]byte(`234}`))
	require.Equal(t, types.ConnBodyComplete, c.state)
	require.NotNil(t, c.req)
	assert.NotNil(t, c.req.JSONBody)
}

func TestAppendBytesBadJSONSetsCloseErr(t *testing.T) {
	c, _ := newTestConnection(t)
	raw := "POST /click HTTP/1.1\r\nContent-Length: 5\r\nContent-Type: application/json\r\n\r\nnotjs"
	c.appendBytes([]byte(raw))
	assert.Equal(t, errBadJSON, c.closeErr)
}

func TestAppendBytesMalformedRequestLine(t *testing.T) {
	c, _ := newTestConnection(t)
	c.appendBytes([]byte("garbage\r\n\r\n"))
	assert.Equal(t, errMalformed, c.closeErr)
}

func TestParseQueryDecodesPercentEncoding(t *testing.T) {
	got := parseQuery("a=hello%20world&b=%2Fpath")
	assert.Equal(t, "hello world", got["a"])
	assert.Equal(t, "/path", got["b"])
}

func TestParseQueryEmpty(t *testing.T) {
	got := parseQuery("")
	assert.Empty(t, got)
}
