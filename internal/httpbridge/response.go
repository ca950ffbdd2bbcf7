package httpbridge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
)

var (
	errMalformed = errors.New("malformed HTTP request")
	errBadJSON   = errors.New("Invalid JSON in request body")
)

func decodeJSON(body []byte) (any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// response is a fully-formed reply ready to be written to the socket.
type response struct {
	status      int
	contentType string
	body        []byte
}

// encodeHandlerResult applies spec.md §4.1's "Response" rules: a
// map/array encodes as JSON; a string as text/plain; a raw byte
// sequence as application/octet-stream; nil as {ok: true}. A returned
// *apperr.Error is carried in the body at HTTP 200 (spec.md §4.8's
// "200 + error field" convention); any other error becomes a 500 with
// the "Internal: <message>" envelope (spec.md §7 propagation policy).
func encodeHandlerResult(value any, err error) response {
	if err != nil {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return jsonResponse(200, map[string]any{
				"error":         appErr.Message,
				"error_code":    appErr.Code,
				"retryable":     appErr.Retryable,
				"retry_after_ms": appErr.RetryAfterMs,
				"note":          appErr.Note,
			})
		}
		return jsonResponse(500, map[string]any{"error": "Internal: " + err.Error()})
	}

	switch v := value.(type) {
	case nil:
		return jsonResponse(200, map[string]any{"ok": true})
	case []byte:
		return response{status: 200, contentType: "application/octet-stream", body: v}
	case string:
		return response{status: 200, contentType: "text/plain; charset=utf-8", body: []byte(v)}
	default:
		return jsonResponse(200, v)
	}
}

func jsonResponse(status int, v any) response {
	buf, err := json.Marshal(v)
	if err != nil {
		buf = []byte(`{"error":"Internal: failed to encode response"}`)
		status = 500
	}
	return response{status: status, contentType: "application/json", body: buf}
}

func notFoundResponse(method, path string) response {
	return jsonResponse(404, map[string]any{
		"error":  "not found",
		"path":   path,
		"method": method,
	})
}

func badJSONResponse() response {
	return jsonResponse(400, map[string]any{"error": errBadJSON.Error()})
}

func malformedResponse() response {
	return jsonResponse(400, map[string]any{"error": "Malformed HTTP request"})
}

// writeResponse serializes an HTTP/1.1 response onto conn. Every
// response carries Access-Control-Allow-Origin: * and Connection: close
// (spec.md §4.1), since the bridge never keeps a connection alive past
// one request (spec.md §3 "one request per connection").
func writeResponse(conn net.Conn, r response) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "HTTP/1.1 %d %s\r\n", r.status, statusText(r.status))
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", r.contentType)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(r.body))
	buf.WriteString("Access-Control-Allow-Origin: *\r\n")
	buf.WriteString("Connection: close\r\n")
	buf.WriteString("\r\n")
	buf.Write(r.body)
	_, err := conn.Write(buf.Bytes())
	return err
}

func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	default:
		return "OK"
	}
}
