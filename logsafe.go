// Package logsafe builds the per-field serializer functions that turn raw
// runtime entities — outbound HTTP calls, inbound requests and responses,
// errors, arbitrary events — into safe, flat records for a structured
// logger, with configured sensitive paths removed wherever they occur.
//
// Typical use:
//
//	s := logsafe.Default("password", "user.token", "headers.authorization")
//	logger.Info("call done", "axios_req", s[logsafe.FieldAxiosReq](cfg))
//
// The slogsafe and zlog subpackages attach the same serializers to slog and
// zerolog automatically.
package logsafe

import (
	"github.com/coffersTech/logsafe/entity"
	"github.com/coffersTech/logsafe/redact"
)

// SerializerFunc converts one raw entity into a plain, JSON-serializable
// record. Serializers never panic and never mutate their input; values of an
// unexpected shape come back unchanged.
type SerializerFunc func(v any) any

// The six log-field names served by a registry.
const (
	FieldAxiosReq = "axios_req"
	FieldAxiosRes = "axios_res"
	FieldReq      = "req"
	FieldRes      = "res"
	FieldEvent    = "event"
	FieldErr      = "err"
)

// Serializers maps log-field names to serializer functions. The key set is
// always exactly the six Field* names.
type Serializers map[string]SerializerFunc

// Options parameterizes a registry. The zero value of every field falls back
// to its default.
type Options struct {
	// Paths are the dotted sensitive paths to strip, matched at every depth.
	Paths []string

	// HeaderGroups are header names stripped from outbound request headers
	// as client-library defaults. Nil means entity.DefaultHeaderGroups; an
	// empty non-nil slice disables stripping.
	HeaderGroups []string

	// MaxDepth bounds graph traversal; zero means redact.DefaultMaxDepth.
	MaxDepth int

	// Placeholder, when set, replaces matched values instead of deleting
	// them.
	Placeholder string

	// FingerprintKey, when set, replaces matched values with a keyed
	// fingerprint. Takes precedence over Placeholder.
	FingerprintKey []byte
}

// Default builds the six serializers with default behavior: matched paths
// are deleted, transport-default header groups are stripped, traversal depth
// is capped at redact.DefaultMaxDepth.
func Default(paths ...string) Serializers {
	return New(Options{Paths: paths})
}

// New builds the six serializers from explicit options. All serializers
// share one Redactor; the result is immutable and safe for concurrent use.
func New(opts Options) Serializers {
	var ropts []redact.Option
	if opts.MaxDepth > 0 {
		ropts = append(ropts, redact.WithMaxDepth(opts.MaxDepth))
	}
	if opts.Placeholder != "" {
		ropts = append(ropts, redact.WithPlaceholder(opts.Placeholder))
	}
	if len(opts.FingerprintKey) > 0 {
		ropts = append(ropts, redact.WithFingerprint(opts.FingerprintKey))
	}

	red := redact.New(redact.ParsePaths(opts.Paths), ropts...)
	n := entity.NewNormalizer(red, opts.HeaderGroups)

	return Serializers{
		FieldAxiosReq: n.OutboundRequest,
		FieldAxiosRes: n.OutboundResponse,
		FieldReq:      n.InboundRequest,
		FieldRes:      n.InboundResponse,
		FieldEvent:    n.Event,
		FieldErr:      entity.SerializeError,
	}
}

// ForKind resolves the serializer matching a classified entity kind. Used by
// the logger integrations to serialize attrs by shape rather than by field
// name.
func (s Serializers) ForKind(k entity.Kind) SerializerFunc {
	switch k {
	case entity.KindOutboundRequest:
		return s[FieldAxiosReq]
	case entity.KindOutboundResponse:
		return s[FieldAxiosRes]
	case entity.KindInboundRequest:
		return s[FieldReq]
	case entity.KindInboundResponse:
		return s[FieldRes]
	case entity.KindError:
		return s[FieldErr]
	default:
		return s[FieldEvent]
	}
}

// Apply serializes v by field name when the name is one of the six known
// fields, otherwise by classified shape.
func (s Serializers) Apply(field string, v any) any {
	fn, ok := s[field]
	if !ok {
		fn = s.ForKind(entity.Classify(v))
	}
	if fn == nil {
		return v
	}
	return fn(v)
}
