// Package httplog captures inbound requests and the responses served for
// them, and emits one redacted, structured line per request through a
// caller-supplied slog.Logger. The package owns no sink and no levels beyond
// picking a severity from the status code.
package httplog

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/coffersTech/logsafe"
	"github.com/coffersTech/logsafe/entity"
)

// RequestIDHeader carries the request id; an incoming value is propagated,
// otherwise a fresh uuid is assigned and echoed on the response.
const RequestIDHeader = "X-Request-Id"

// DefaultMaxBody bounds how much of a request or response body is captured
// for logging.
const DefaultMaxBody = 64 << 10

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares outermost-first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Option configures the capture middleware.
type Option func(*options)

type options struct {
	maxBody int
}

// WithMaxBody overrides the captured-body byte limit.
func WithMaxBody(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBody = n
		}
	}
}

// Capture logs every request/response pair through logger using the req and
// res serializers of s. Severity follows the response status: 5xx error,
// 4xx warn, otherwise info.
func Capture(logger *slog.Logger, s logsafe.Serializers, opts ...Option) Middleware {
	o := options{maxBody: DefaultMaxBody}
	for _, opt := range opts {
		opt(&o)
	}
	if s == nil {
		s = logsafe.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)

			// Snapshot the request before the handler consumes it.
			reqEnt := requestEntity(r, id, o.maxBody)

			cw := newCapture(w, o.maxBody)
			start := time.Now()
			next.ServeHTTP(cw, r)

			logger.LogAttrs(r.Context(), levelFor(cw.StatusCode()), "request completed",
				slog.String("requestId", id),
				slog.Duration("duration", time.Since(start)),
				slog.Any("req", s.Apply(logsafe.FieldReq, reqEnt)),
				slog.Any("res", s.Apply(logsafe.FieldRes, cw)),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// requestEntity builds the socket-marked map shape the inbound request
// normalizer consumes. The body is captured up to maxBody bytes and the
// stream is stitched back together for the handler.
func requestEntity(r *http.Request, id string, maxBody int) map[string]any {
	host, port := splitAddr(r.RemoteAddr)
	ent := map[string]any{
		"id":      id,
		"method":  r.Method,
		"url":     r.URL.String(),
		"headers": r.Header,
		"socket":  map[string]any{"remoteAddress": host, "remotePort": port},
	}
	if q := r.URL.Query(); len(q) > 0 {
		params := make(map[string]string, len(q))
		for k, vals := range q {
			params[k] = strings.Join(vals, ", ")
		}
		ent["params"] = params
	}
	if body := peekBody(r, maxBody); len(body) > 0 {
		ent["body"] = entity.ParseBody(body)
	}
	return ent
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// peekBody reads up to limit bytes of the request body and restores the
// stream so the handler still sees the whole thing.
func peekBody(r *http.Request, limit int) []byte {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	buf, err := io.ReadAll(io.LimitReader(r.Body, int64(limit)))
	if err != nil {
		return nil
	}
	r.Body = &stitchedBody{
		Reader: io.MultiReader(bytes.NewReader(buf), r.Body),
		closer: r.Body,
	}
	return buf
}

type stitchedBody struct {
	io.Reader
	closer io.Closer
}

func (b *stitchedBody) Close() error { return b.closer.Close() }

// capture tees the served response: status code, headers and a bounded copy
// of the body, exposed through entity.ResponseSnapshot.
type capture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func newCapture(w http.ResponseWriter, limit int) *capture {
	return &capture{ResponseWriter: w, limit: limit}
}

func (c *capture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *capture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	if room := c.limit - c.buf.Len(); room > 0 {
		if room > len(b) {
			room = len(b)
		}
		c.buf.Write(b[:room])
	}
	return c.ResponseWriter.Write(b)
}

func (c *capture) StatusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *capture) HeaderMap() http.Header { return c.ResponseWriter.Header() }

func (c *capture) CapturedBody() any { return entity.ParseBody(c.buf.Bytes()) }
