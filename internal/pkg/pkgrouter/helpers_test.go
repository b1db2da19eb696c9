package pkgrouter

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeCID(t *testing.T) {
	if got := normalizeCID("  abc  "); got != "abc" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := normalizeCID("\n"); got != "" {
		t.Fatalf("expected empty for newline, got %q", got)
	}
	if got := normalizeCID("a\rb"); got != "" {
		t.Fatalf("expected empty for embedded carriage return, got %q", got)
	}
	long := strings.Repeat("a", 200)
	if got := normalizeCID(long); len(got) != maxCIDLen {
		t.Fatalf("expected length %d, got %d", maxCIDLen, len(got))
	}
}

func TestMaskHeaders(t *testing.T) {
	headers := http.Header{}
	headers.Set("Authorization", "secret")
	headers.Set("Cookie", "session=1")
	headers.Set("X-Trace", "ok")

	masked := maskHeaders(headers)
	if got := masked.Get("Authorization"); got != "***" {
		t.Fatalf("expected masked authorization, got %q", got)
	}
	if got := masked.Get("Cookie"); got != "***" {
		t.Fatalf("expected masked cookie, got %q", got)
	}
	if got := masked.Get("X-Trace"); got != "ok" {
		t.Fatalf("expected X-Trace to stay, got %q", got)
	}
	if got := headers.Get("Authorization"); got != "secret" {
		t.Fatalf("expected original headers unchanged, got %q", got)
	}
}

func TestDescribeBody(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		truncated bool
		want      any
	}{
		{name: "empty", body: nil, want: nil},
		{name: "json", body: []byte(`{"action":"toggle"}`), want: map[string]any{"action": "toggle"}},
		{name: "text", body: []byte("hello"), want: "hello"},
		{name: "binary", body: []byte{0xff, 0xfe, 0xfd}, want: "<binary body omitted>"},
		{
			name:      "truncated json is kept as text",
			body:      []byte(`{"message":"va`),
			truncated: true,
			want:      map[string]any{"body": `{"message":"va`, "truncated": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, describeBody(tt.body, tt.truncated)); diff != "" {
				t.Fatalf("describeBody mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRequestBodyIsRestored(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/page/sidebar", strings.NewReader(`{"action":"toggle"}`))
	req.Header.Set("Content-Type", "application/json")

	if diff := cmp.Diff(map[string]any{"action": "toggle"}, requestBody(req)); diff != "" {
		t.Fatalf("unexpected logged body (-want +got):\n%s", diff)
	}

	raw, err := io.ReadAll(req.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(raw) != `{"action":"toggle"}` {
		t.Fatalf("expected body to be readable again, got %q", raw)
	}
}

func TestRequestBodySkipsFileUploads(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/uploads", strings.NewReader("Amount,Class\n1,0\n"))
	req.Header.Set("Content-Type", "text/csv")

	got, ok := requestBody(req).(map[string]any)
	if !ok || got["file_upload"] != true {
		t.Fatalf("expected file upload marker, got %v", got)
	}

	raw, _ := io.ReadAll(req.Body)
	if string(raw) != "Amount,Class\n1,0\n" {
		t.Fatalf("expected upload body untouched, got %q", raw)
	}
}

func TestResponseRecorderCapsBody(t *testing.T) {
	rec := &responseRecorder{ResponseWriter: httptest.NewRecorder()}

	payload := strings.Repeat("x", maxLoggedBodyBytes+10)
	if _, err := rec.Write([]byte(payload)); err != nil {
		t.Fatalf("write: %v", err)
	}

	if rec.body.Len() != maxLoggedBodyBytes || !rec.capped {
		t.Fatalf("expected capped capture, got %d bytes capped=%v", rec.body.Len(), rec.capped)
	}
	if rec.bytes != len(payload) || rec.status != http.StatusOK {
		t.Fatalf("expected full write counted, got %d bytes status %d", rec.bytes, rec.status)
	}
}

func TestLevelForStatus(t *testing.T) {
	cases := map[int]slog.Level{
		http.StatusOK:                  slog.LevelInfo,
		http.StatusNoContent:           slog.LevelInfo,
		http.StatusConflict:            slog.LevelWarn,
		http.StatusInternalServerError: slog.LevelError,
	}
	for status, want := range cases {
		if got := levelForStatus(status); got != want {
			t.Fatalf("levelForStatus(%d) = %v, want %v", status, got, want)
		}
	}
}

func TestIsFileUpload(t *testing.T) {
	cases := map[string]bool{
		"multipart/form-data; boundary=abc": true,
		"text/csv":                          true,
		"application/csv":                   true,
		"application/json":                  false,
		"":                                  false,
	}
	for contentType, want := range cases {
		if got := isFileUpload(contentType); got != want {
			t.Fatalf("isFileUpload(%q) = %v, want %v", contentType, got, want)
		}
	}
}

func TestInternalFrames(t *testing.T) {
	stack := []byte(`goroutine 1 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gofraud/internal/ingest/inbound.(*HTTPEndpoint).GetPage(...)
	/src/gofraud/internal/ingest/inbound/http_endpoint.go:80 +0x1d
net/http.HandlerFunc.ServeHTTP(...)
	/usr/local/go/src/net/http/server.go:2171 +0x29
`)

	want := []string{"internal/ingest/inbound/http_endpoint.go:80"}
	if diff := cmp.Diff(want, internalFrames(stack)); diff != "" {
		t.Fatalf("internalFrames mismatch (-want +got):\n%s", diff)
	}
}
