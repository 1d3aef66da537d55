package entity

import "net/http"

// Kind classifies a runtime value into one of the entity variants handled by
// the normalizers. Classification happens once at the boundary; the
// normalizers themselves still tolerate wrong shapes.
type Kind int

const (
	KindEvent Kind = iota
	KindOutboundRequest
	KindOutboundResponse
	KindInboundRequest
	KindInboundResponse
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOutboundRequest:
		return "outbound_request"
	case KindOutboundResponse:
		return "outbound_response"
	case KindInboundRequest:
		return "inbound_request"
	case KindInboundResponse:
		return "inbound_response"
	case KindError:
		return "error"
	default:
		return "event"
	}
}

// Classify determines the entity variant of v. Concrete HTTP types are
// recognized directly; map shapes are classified by their markers: a socket
// field means inbound request, a numeric statusCode means inbound response,
// method+url means outbound request config, status means outbound response.
// Anything else is a generic event.
func Classify(v any) Kind {
	switch t := v.(type) {
	case nil:
		return KindEvent
	case error:
		return KindError
	case *http.Request:
		if t == nil {
			return KindEvent
		}
		if t.RemoteAddr != "" {
			return KindInboundRequest
		}
		return KindOutboundRequest
	case *http.Response:
		return KindOutboundResponse
	case ResponseSnapshot:
		return KindInboundResponse
	case map[string]any:
		if _, ok := t["socket"]; ok {
			return KindInboundRequest
		}
		if _, ok := asInt(t["statusCode"]); ok {
			return KindInboundResponse
		}
		if hasString(t, "method") && hasString(t, "url") {
			return KindOutboundRequest
		}
		if _, ok := t["status"]; ok {
			return KindOutboundResponse
		}
	}
	return KindEvent
}

func hasString(m map[string]any, key string) bool {
	s, ok := m[key].(string)
	return ok && s != ""
}

// asInt accepts the numeric types a decoded JSON value or a caller-built map
// can plausibly carry.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}
