package entity

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/coffersTech/logsafe/redact"
)

// DefaultHeaderGroups are the per-method default header group names HTTP
// client libraries attach to request configs. They are library defaults, not
// caller-set headers, and are stripped from outbound request records.
var DefaultHeaderGroups = []string{"common", "delete", "get", "head", "post", "put", "patch"}

// Normalizer flattens runtime HTTP entities and generic payloads into
// records, redacting bodies through the shared Redactor. Immutable after
// construction; safe for concurrent use.
type Normalizer struct {
	red    *redact.Redactor
	groups map[string]struct{}
}

// NewNormalizer builds a Normalizer. A nil headerGroups uses
// DefaultHeaderGroups; an explicit empty slice disables stripping.
func NewNormalizer(red *redact.Redactor, headerGroups []string) *Normalizer {
	if headerGroups == nil {
		headerGroups = DefaultHeaderGroups
	}
	groups := make(map[string]struct{}, len(headerGroups))
	for _, g := range headerGroups {
		groups[g] = struct{}{}
	}
	return &Normalizer{red: red, groups: groups}
}

// OutboundRequest flattens an outbound request config: a map carrying
// method+url (with optional headers, params and data), or a client-side
// *http.Request. Header group defaults are stripped; a data field is
// redacted when present and non-empty, with string bodies parsed as JSON
// first. Values without the marker come back unchanged.
func (n *Normalizer) OutboundRequest(v any) any {
	switch t := v.(type) {
	case *http.Request:
		if t == nil || t.RemoteAddr != "" {
			return v
		}
		return RequestRecord{
			Method:  t.Method,
			URL:     urlString(t.URL),
			Headers: n.stripGroups(normalizeHeaders(t.Header)),
			Params:  queryParams(t.URL),
		}
	case map[string]any:
		if !hasString(t, "method") || !hasString(t, "url") {
			return v
		}
		rec := RequestRecord{
			Method:  t["method"].(string),
			URL:     t["url"].(string),
			Headers: n.stripGroups(normalizeHeaders(t["headers"])),
			Params:  t["params"],
		}
		if data, ok := t["data"]; ok && !emptyBody(data) {
			rec.Body = n.sanitizeBody(data, true)
		}
		return rec
	}
	return v
}

// OutboundResponse flattens a received response: a map carrying a status
// field (status→statusCode, data→body, body redacted unconditionally), or an
// *http.Response (whose body is a stream this package does not consume).
func (n *Normalizer) OutboundResponse(v any) any {
	switch t := v.(type) {
	case *http.Response:
		if t == nil {
			return v
		}
		return ResponseRecord{
			StatusCode: t.StatusCode,
			Headers:    normalizeHeaders(t.Header),
		}
	case map[string]any:
		if _, ok := t["status"]; !ok {
			return v
		}
		status, _ := asInt(t["status"])
		return ResponseRecord{
			StatusCode: status,
			Headers:    normalizeHeaders(t["headers"]),
			Body:       n.sanitizeBody(t["data"], false),
		}
	}
	return v
}

// InboundRequest flattens a served request. The shape marker is the
// transport socket: a non-empty RemoteAddr on *http.Request, or a socket
// field on a map. The body is redacted only when present and non-empty.
func (n *Normalizer) InboundRequest(v any) any {
	switch t := v.(type) {
	case *http.Request:
		if t == nil || t.RemoteAddr == "" {
			return v
		}
		host, port := splitRemoteAddr(t.RemoteAddr)
		return RequestRecord{
			Method:        t.Method,
			URL:           urlString(t.URL),
			Headers:       normalizeHeaders(t.Header),
			Params:        queryParams(t.URL),
			RemoteAddress: host,
			RemotePort:    port,
		}
	case map[string]any:
		if _, ok := t["socket"]; !ok {
			return v
		}
		rec := RequestRecord{
			ID:      stringField(t, "id"),
			Method:  stringField(t, "method"),
			URL:     stringField(t, "url"),
			Headers: normalizeHeaders(t["headers"]),
			Params:  t["params"],
		}
		if sock, ok := t["socket"].(map[string]any); ok {
			rec.RemoteAddress = stringField(sock, "remoteAddress")
			rec.RemotePort, _ = asInt(sock["remotePort"])
		}
		if body, ok := t["body"]; ok && !emptyBody(body) {
			rec.Body = n.sanitizeBody(body, false)
		}
		return rec
	}
	return v
}

// InboundResponse flattens a response this process served. The shape marker
// is a numeric status code: a ResponseSnapshot capture, or a map carrying
// statusCode. The locally-attached body side-channel is redacted only when
// present and non-empty.
func (n *Normalizer) InboundResponse(v any) any {
	switch t := v.(type) {
	case ResponseSnapshot:
		rec := ResponseRecord{
			StatusCode: t.StatusCode(),
			Headers:    normalizeHeaders(t.HeaderMap()),
		}
		if body := t.CapturedBody(); !emptyBody(body) {
			rec.Body = n.sanitizeBody(body, false)
		}
		return rec
	case map[string]any:
		status, ok := asInt(t["statusCode"])
		if !ok {
			return v
		}
		rec := ResponseRecord{
			StatusCode: status,
			Headers:    normalizeHeaders(t["headers"]),
		}
		if body, ok := t["body"]; ok && !emptyBody(body) {
			rec.Body = n.sanitizeBody(body, false)
		}
		return rec
	}
	return v
}

// Event redacts an arbitrary payload whole. There is no shape marker.
func (n *Normalizer) Event(v any) any {
	return n.sanitizeBody(v, false)
}

// sanitizeBody runs a body through the redactor. When parse is set, string
// and byte bodies are interpreted as JSON first so paths can match inside
// them. Redaction failures (depth cap, cycles, uncloneable values) are
// reported in-band instead of reaching the sink raw or crashing the caller.
func (n *Normalizer) sanitizeBody(v any, parse bool) any {
	if parse {
		switch b := v.(type) {
		case string:
			v = ParseBody([]byte(b))
		case []byte:
			v = ParseBody(b)
		}
	}
	out, err := n.red.Sanitize(v)
	if err != nil {
		return map[string]any{"redactionError": err.Error()}
	}
	return out
}

func (n *Normalizer) stripGroups(h map[string]string) map[string]string {
	for g := range n.groups {
		delete(h, g)
	}
	return h
}

// normalizeHeaders flattens the header shapes seen in the wild into a plain
// string map. Multi-valued headers join with ", ".
func normalizeHeaders(v any) map[string]string {
	switch h := v.(type) {
	case http.Header:
		return joinValues(h)
	case map[string][]string:
		return joinValues(h)
	case map[string]string:
		out := make(map[string]string, len(h))
		for k, val := range h {
			out[k] = val
		}
		return out
	case map[string]any:
		out := make(map[string]string, len(h))
		for k, val := range h {
			switch tv := val.(type) {
			case string:
				out[k] = tv
			case []any:
				parts := make([]string, 0, len(tv))
				for _, p := range tv {
					parts = append(parts, fmt.Sprint(p))
				}
				out[k] = strings.Join(parts, ", ")
			default:
				out[k] = fmt.Sprint(tv)
			}
		}
		return out
	}
	return nil
}

func joinValues(h map[string][]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, vals := range h {
		out[k] = strings.Join(vals, ", ")
	}
	return out
}

func queryParams(u *url.URL) any {
	if u == nil || u.RawQuery == "" {
		return nil
	}
	return joinValues(u.Query())
}

func urlString(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.String()
}

func splitRemoteAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func emptyBody(v any) bool {
	switch b := v.(type) {
	case nil:
		return true
	case string:
		return b == ""
	case []byte:
		return len(b) == 0
	case map[string]any:
		return len(b) == 0
	case []any:
		return len(b) == 0
	}
	return false
}
