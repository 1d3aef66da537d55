package entity

import "github.com/valyala/fastjson"

// Pooled parsers, same pattern as a hot ingest path: bodies arrive as raw
// bytes and most of them are JSON.
var parsers fastjson.ParserPool

// ParseBody interprets raw bytes as a JSON value and converts it into a
// plain Go tree. Anything that does not parse is returned as a string
// verbatim; ParseBody never fails.
func ParseBody(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(b)
	if err != nil {
		return string(b)
	}
	return valueToAny(v)
}

// valueToAny deep-copies a fastjson value into plain maps, slices and
// scalars. The copy matters: pooled parser buffers are reused.
func valueToAny(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		m := make(map[string]any, obj.Len())
		obj.Visit(func(key []byte, val *fastjson.Value) {
			m[string(key)] = valueToAny(val)
		})
		return m
	case fastjson.TypeArray:
		vals, _ := v.Array()
		out := make([]any, len(vals))
		for i, val := range vals {
			out[i] = valueToAny(val)
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}
