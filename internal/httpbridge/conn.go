package httpbridge

import (
	"bytes"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

// connection tracks one accepted socket through the lifecycle spec.md §3
// describes: accepted -> buffering -> header-parsed -> body-complete ->
// dispatched -> response-written -> closed.
type connection struct {
	id        string // random, for correlating log lines across a request's lifetime
	raw       net.Conn
	buf       []byte
	state     types.ConnState
	createdAt time.Time

	headerEnd     int // byte offset just past "\r\n\r\n", -1 until found
	method        string
	path          string
	queryParams   map[string]string
	headers       map[string]string
	contentLength int

	req  *types.Request
	done chan response

	dispatched bool

	closeErr error
}

func newConnection(raw net.Conn) *connection {
	return &connection{
		id:        uuid.NewString(),
		raw:       raw,
		state:     types.ConnAccepted,
		createdAt: time.Now(),
		headerEnd: -1,
		done:      make(chan response, 1),
	}
}

// appendBytes feeds newly-read bytes into the connection's buffer and
// advances its parse state.
func (c *connection) appendBytes(b []byte) {
	c.buf = append(c.buf, b...)
	if c.state == types.ConnAccepted {
		c.state = types.ConnBuffering
	}
	c.tryParseHeaders()
	c.tryCompleteBody()
}

// tryParseHeaders locates the header terminator in the raw byte buffer
// (not a decoded string, per spec.md §4.1: "the boundary is located in
// the raw byte buffer... to preserve multi-byte correctness").
func (c *connection) tryParseHeaders() {
	if c.headerEnd >= 0 {
		return
	}
	idx := bytes.Index(c.buf, []byte("\r\n\r\n"))
	if idx < 0 {
		return
	}
	c.headerEnd = idx + 4
	headerBlock := string(c.buf[:idx])
	lines := strings.Split(headerBlock, "\r\n")
	if len(lines) == 0 {
		c.closeErr = errMalformed
		return
	}
	requestLine := strings.Fields(lines[0])
	if len(requestLine) < 2 {
		c.closeErr = errMalformed
		return
	}
	c.method = requestLine[0]
	rawPath := requestLine[1]

	pathPart, queryPart, _ := strings.Cut(rawPath, "?")
	c.path = pathPart
	c.queryParams = parseQuery(queryPart)

	c.headers = make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		c.headers[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}

	if cl, ok := c.headers["content-length"]; ok {
		if n, err := strconv.Atoi(cl); err == nil {
			c.contentLength = n
		}
	}

	c.state = types.ConnHeaderParsed
}

// tryCompleteBody checks whether the buffer now holds the full body
// (Content-Length is byte-indexed, not code-point-indexed — spec.md §3).
func (c *connection) tryCompleteBody() {
	if c.state != types.ConnHeaderParsed {
		return
	}
	have := len(c.buf) - c.headerEnd
	if have < c.contentLength {
		return
	}
	body := c.buf[c.headerEnd : c.headerEnd+c.contentLength]
	c.req = &types.Request{
		Method:      c.method,
		Path:        c.path,
		QueryParams: c.queryParams,
		Headers:     c.headers,
		Body:        body,
	}
	if strings.Contains(c.headers["content-type"], "application/json") && len(body) > 0 {
		v, err := decodeJSON(body)
		if err != nil {
			c.closeErr = errBadJSON
			c.state = types.ConnBodyComplete
			return
		}
		c.req.JSONBody = v
	}
	c.state = types.ConnBodyComplete
}

// parseQuery percent-decodes a query string into a string->string map
// (spec.md §4.1: "Query strings are parsed into a string→string map with
// percent-decoding").
func parseQuery(raw string) map[string]string {
	out := make(map[string]string)
	if raw == "" {
		return out
	}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		dk, err := url.QueryUnescape(k)
		if err != nil {
			dk = k
		}
		dv, err := url.QueryUnescape(v)
		if err != nil {
			dv = v
		}
		out[dk] = dv
	}
	return out
}
