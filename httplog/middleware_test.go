package httplog

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coffersTech/logsafe"
)

func captureHandler(t *testing.T, s logsafe.Serializers, h http.HandlerFunc, opts ...Option) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return Capture(logger, s, opts...)(h), &buf
}

func logged(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("log line not JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestCapture_LogsRedactedRequestAndResponse(t *testing.T) {
	handler, buf := captureHandler(t, logsafe.Default("password", "token"),
		func(w http.ResponseWriter, r *http.Request) {
			// Handler must still see the full body after the peek.
			body, _ := io.ReadAll(r.Body)
			if !strings.Contains(string(body), "s3cret") {
				t.Errorf("handler saw truncated body: %q", body)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"token":"new-token","user":"jo"}`))
		})

	req := httptest.NewRequest("POST", "http://svc/login?next=%2Fhome", strings.NewReader(`{"user":"jo","password":"s3cret"}`))
	req.RemoteAddr = "10.9.8.7:3344"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	out := logged(t, buf)

	reqRec := out["req"].(map[string]any)
	if reqRec["method"] != "POST" || reqRec["remoteAddress"] != "10.9.8.7" {
		t.Errorf("req = %#v", reqRec)
	}
	body := reqRec["body"].(map[string]any)
	if _, leaked := body["password"]; leaked {
		t.Error("request password reached the log")
	}
	if body["user"] != "jo" {
		t.Errorf("req body = %#v", body)
	}
	params := reqRec["params"].(map[string]any)
	if params["next"] != "/home" {
		t.Errorf("params = %#v", params)
	}

	resRec := out["res"].(map[string]any)
	if resRec["statusCode"] != float64(http.StatusCreated) {
		t.Errorf("res = %#v", resRec)
	}
	resBody := resRec["body"].(map[string]any)
	if _, leaked := resBody["token"]; leaked {
		t.Error("response token reached the log")
	}

	if out["requestId"] == "" {
		t.Error("no request id logged")
	}
}

func TestCapture_AssignsAndEchoesRequestID(t *testing.T) {
	handler, buf := captureHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest("GET", "http://svc/ping", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	id := w.Header().Get(RequestIDHeader)
	if id == "" {
		t.Fatal("no request id assigned")
	}
	if out := logged(t, buf); out["requestId"] != id {
		t.Errorf("logged id %v != header id %q", out["requestId"], id)
	}
}

func TestCapture_PropagatesIncomingRequestID(t *testing.T) {
	handler, buf := captureHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "http://svc/ping", nil)
	req.Header.Set(RequestIDHeader, "upstream-77")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if out := logged(t, buf); out["requestId"] != "upstream-77" {
		t.Errorf("requestId = %v", out["requestId"])
	}
	if got := w.Header().Get(RequestIDHeader); got != "upstream-77" {
		t.Errorf("echoed id = %q", got)
	}
}

func TestCapture_SeverityFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{503, "ERROR"},
	}
	for _, tt := range tests {
		handler, buf := captureHandler(t, nil, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		req := httptest.NewRequest("GET", "http://svc/x", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if out := logged(t, buf); out["level"] != tt.level {
			t.Errorf("status %d: level = %v, want %s", tt.status, out["level"], tt.level)
		}
	}
}

func TestCapture_BodyLimit(t *testing.T) {
	handler, buf := captureHandler(t, nil,
		func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			if len(body) != 100 {
				t.Errorf("handler saw %d bytes, want 100", len(body))
			}
			w.Write([]byte("ok"))
		},
		WithMaxBody(16))

	big := strings.Repeat("x", 100)
	req := httptest.NewRequest("POST", "http://svc/upload", strings.NewReader(big))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := logged(t, buf)
	reqRec := out["req"].(map[string]any)
	captured, _ := reqRec["body"].(string)
	if len(captured) > 16 {
		t.Errorf("captured %d bytes, want at most 16", len(captured))
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mw("outer"), mw("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if strings.Join(order, ",") != "outer,inner,handler" {
		t.Errorf("order = %v", order)
	}
}
