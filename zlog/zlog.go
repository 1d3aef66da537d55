// Package zlog attaches logsafe serializers to zerolog.
//
// Each wrapper runs one serializer and exposes the resulting record as a
// zerolog.LogObjectMarshaler, so entities embed as structured sub-objects:
//
//	log.Info().
//	    Object("req", zlog.Req(s, r)).
//	    Object("res", zlog.Res(s, capture)).
//	    Msg("request completed")
//
// Field names are the zf subpackage constants.
package zlog

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/coffersTech/logsafe"
	"github.com/coffersTech/logsafe/zlog/zf"
)

type marshaler struct {
	rec any
}

// MarshalZerologObject writes the record's fields onto the event. Records
// that do not flatten into an object land under a single value field.
func (m marshaler) MarshalZerologObject(e *zerolog.Event) {
	fields, ok := toFields(m.rec)
	if !ok {
		e.Interface(zf.Value, m.rec)
		return
	}
	for k, v := range fields {
		e.Interface(k, v)
	}
}

func toFields(rec any) (map[string]any, bool) {
	if m, ok := rec.(map[string]any); ok {
		return m, true
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if json.Unmarshal(b, &m) != nil {
		return nil, false
	}
	return m, true
}

// AxiosReq serializes an outbound request config.
func AxiosReq(s logsafe.Serializers, v any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldAxiosReq, v)}
}

// AxiosRes serializes an outbound call's response.
func AxiosRes(s logsafe.Serializers, v any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldAxiosRes, v)}
}

// Req serializes an inbound request.
func Req(s logsafe.Serializers, v any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldReq, v)}
}

// Res serializes a served response.
func Res(s logsafe.Serializers, v any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldRes, v)}
}

// Event serializes an arbitrary payload.
func Event(s logsafe.Serializers, v any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldEvent, v)}
}

// Err serializes an error with its flattened causal chain.
func Err(s logsafe.Serializers, err any) zerolog.LogObjectMarshaler {
	return marshaler{s.Apply(logsafe.FieldErr, err)}
}
