package slogsafe

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/coffersTech/logsafe"
)

func newTestLogger(s logsafe.Serializers) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{})
	return slog.New(NewHandler(inner, s)), &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestHandler_SerializesKnownFields(t *testing.T) {
	logger, buf := newTestLogger(logsafe.Default("password"))

	logger.Info("handled",
		slog.Any("req", map[string]any{
			"method": "POST",
			"url":    "/login",
			"socket": map[string]any{"remoteAddress": "10.0.0.1", "remotePort": 8080},
			"body":   map[string]any{"user": "jo", "password": "pw"},
		}),
	)

	out := decode(t, buf)
	req := out["req"].(map[string]any)
	if req["remoteAddress"] != "10.0.0.1" {
		t.Errorf("req = %#v", req)
	}
	body := req["body"].(map[string]any)
	if _, leaked := body["password"]; leaked {
		t.Error("password reached the sink")
	}
	if body["user"] != "jo" {
		t.Errorf("body = %#v", body)
	}
}

func TestHandler_SerializesErrors(t *testing.T) {
	logger, buf := newTestLogger(logsafe.Default())

	logger.Error("failed", slog.Any("err", errors.New("boom")))

	out := decode(t, buf)
	rec := out["err"].(map[string]any)
	if rec["message"] != "boom" || rec["name"] != "Error" {
		t.Errorf("err = %#v", rec)
	}
}

func TestHandler_ClassifiesUnknownKeys(t *testing.T) {
	logger, buf := newTestLogger(logsafe.Default("apiKey"))

	logger.Info("event", slog.Any("payload", map[string]any{"apiKey": "k", "ok": 1}))

	out := decode(t, buf)
	payload := out["payload"].(map[string]any)
	if _, leaked := payload["apiKey"]; leaked {
		t.Error("apiKey reached the sink")
	}
	if payload["ok"] != float64(1) {
		t.Errorf("payload = %#v", payload)
	}
}

func TestHandler_LeavesNativeKindsAlone(t *testing.T) {
	logger, buf := newTestLogger(logsafe.Default("msg"))

	logger.Info("plain", slog.String("msg2", "text"), slog.Int("count", 3))

	out := decode(t, buf)
	if out["msg2"] != "text" || out["count"] != float64(3) {
		t.Errorf("out = %#v", out)
	}
}

func TestHandler_WithAttrsAndGroups(t *testing.T) {
	logger, buf := newTestLogger(logsafe.Default("token"))

	logger = logger.With(slog.Any("event", map[string]any{"token": "t", "keep": true}))
	logger.WithGroup("ctx").Info("grouped", slog.String("id", "7"))

	out := decode(t, buf)
	ev := out["event"].(map[string]any)
	if _, leaked := ev["token"]; leaked {
		t.Error("token reached the sink via WithAttrs")
	}
	ctx := out["ctx"].(map[string]any)
	if ctx["id"] != "7" {
		t.Errorf("out = %#v", out)
	}
}
