// Package zf holds the log field name constants used by zlog, so call sites
// and tests never drift on spelling.
package zf

const (
	ID            = "id"
	Method        = "method"
	URL           = "url"
	Headers       = "headers"
	Params        = "params"
	Body          = "body"
	RemoteAddress = "remoteAddress"
	RemotePort    = "remotePort"
	StatusCode    = "statusCode"
	Stack         = "stack"
	Message       = "message"
	Name          = "name"

	// Value carries payloads that do not flatten into an object.
	Value = "value"
)
