package entity

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// MaxCauseDepth caps causal-chain flattening. A chain longer than this —
// almost certainly self-referential — ends with an explicit truncation
// marker instead of recursing forever.
const MaxCauseDepth = 32

// stackTracer is the duck shape for errors that carry their own captured
// stack trace text.
type stackTracer interface {
	StackTrace() string
}

// causer is the classic explicit cause accessor; errors.Unwrap is the
// fallback.
type causer interface {
	Cause() error
}

// FlattenStack resolves an error and its causal chain into one textual
// trace. Each error contributes its stack trace if it exposes one, else its
// message, and causes are appended as "Caused by:" lines.
func FlattenStack(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(stackOf(err))
	for depth := 1; ; depth++ {
		cause := causeOf(err)
		if cause == nil {
			break
		}
		b.WriteString("\nCaused by: ")
		if depth >= MaxCauseDepth {
			b.WriteString("[cause chain truncated]")
			break
		}
		b.WriteString(stackOf(cause))
		err = cause
	}
	return b.String()
}

func stackOf(err error) string {
	if st, ok := err.(stackTracer); ok {
		if s := st.StackTrace(); s != "" {
			return s
		}
	}
	return err.Error()
}

func causeOf(err error) error {
	if c, ok := err.(causer); ok {
		return c.Cause()
	}
	return errors.Unwrap(err)
}

// SerializeError flattens an error into an open record: the flattened causal
// stack, the message, the type name, and then the error's own exported
// fields merged last. The merge order is deliberate — an error type that
// defines its own stack, message or name field wins over the computed
// values. Non-error values pass through unchanged so callers can log
// anything through the same log field.
func SerializeError(v any) any {
	err, ok := v.(error)
	if !ok || err == nil || nilValue(err) {
		return v
	}
	rec := map[string]any{
		"stack":   FlattenStack(err),
		"message": err.Error(),
		"name":    errorName(err),
	}
	for k, f := range ownFields(err) {
		rec[k] = f
	}
	return rec
}

// ownFields extracts the error's own serializable fields. Errors that do not
// marshal to a JSON object (the common opaque case) contribute nothing.
func ownFields(err error) map[string]any {
	b, e := json.Marshal(err)
	if e != nil {
		return nil
	}
	var m map[string]any
	if json.Unmarshal(b, &m) != nil {
		return nil
	}
	return m
}

// errorName reports the concrete type name. Opaque stdlib errors (errors.New,
// fmt.Errorf) and anonymous types map to the generic "Error".
func errorName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "Error"
	}
	switch t.PkgPath() {
	case "errors", "fmt":
		return "Error"
	}
	return t.Name()
}

// nilValue guards against typed nil pointers smuggled through the error
// interface, which would explode on the first method call.
func nilValue(err error) bool {
	rv := reflect.ValueOf(err)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}
