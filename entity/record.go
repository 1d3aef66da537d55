// Package entity normalizes loosely-typed runtime values — outbound HTTP
// calls, inbound requests/responses, errors, generic payloads — into flat,
// JSON-serializable records, applying path redaction to bodies on the way.
//
// Every normalizer is guarded by a shape check and returns its input
// unchanged when the expected marker is absent. A logging subsystem must
// never be able to crash its host on malformed input.
package entity

import "net/http"

// RequestRecord is the flattened view of an HTTP request, outbound or
// inbound. Outbound requests leave the remote fields zero; inbound requests
// carry the peer address from the transport socket.
type RequestRecord struct {
	ID            string            `json:"id,omitempty"`
	Method        string            `json:"method,omitempty"`
	URL           string            `json:"url,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	Params        any               `json:"params,omitempty"`
	RemoteAddress string            `json:"remoteAddress,omitempty"`
	RemotePort    int               `json:"remotePort,omitempty"`
	Body          any               `json:"body,omitempty"`
}

// ResponseRecord is the flattened view of an HTTP response.
type ResponseRecord struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       any               `json:"body,omitempty"`
}

// ResponseSnapshot exposes a served response for normalization: the status
// code, the headers that were written, and a body side-channel attached by
// whatever captured the response (see httplog).
type ResponseSnapshot interface {
	StatusCode() int
	HeaderMap() http.Header
	CapturedBody() any
}
