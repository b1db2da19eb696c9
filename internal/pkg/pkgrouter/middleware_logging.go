package pkgrouter

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julienschmidt/httprouter"
)

// maxLoggedBodyBytes caps request and error response bodies in the logs.
const maxLoggedBodyBytes = 8 * 1024

//nolint:gochecknoglobals // read-only lookup table
var sensitiveHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
}

func maskHeaders(headers http.Header) http.Header {
	result := headers.Clone()
	for key := range result {
		if _, found := sensitiveHeaders[strings.ToLower(key)]; found {
			result.Set(key, "***")
		}
	}
	return result
}

// responseRecorder keeps the status and size of a response, and the first
// maxLoggedBodyBytes of its body.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
	body   bytes.Buffer
	capped bool
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	if remaining := maxLoggedBodyBytes - w.body.Len(); remaining < len(p) {
		w.body.Write(p[:max(remaining, 0)])
		w.capped = true
	} else {
		w.body.Write(p)
	}

	n, err := w.ResponseWriter.Write(p)
	w.bytes += n
	return n, err
}

func (w *responseRecorder) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func matchedRoutePath(r *http.Request) string {
	pattern := httprouter.ParamsFromContext(r.Context()).MatchedRoutePath()
	if pattern != "" {
		return pattern
	}
	return r.URL.Path
}

// isFileUpload reports whether the request carries a file whose content must
// not be buffered or written to the logs (multipart forms and raw CSV bodies).
func isFileUpload(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	switch strings.ToLower(mediaType) {
	case "multipart/form-data", "text/csv", "application/csv", "application/octet-stream":
		return true
	default:
		return false
	}
}

// describeBody turns a captured body into a log value: decoded JSON when it
// parses, text when it is valid UTF-8, a marker otherwise.
func describeBody(body []byte, truncated bool) any {
	if len(body) == 0 {
		return nil
	}

	var out any
	var decoded any
	switch {
	case !truncated && json.Unmarshal(body, &decoded) == nil:
		out = decoded
	case utf8.Valid(body):
		out = string(body)
	default:
		out = "<binary body omitted>"
	}

	if truncated {
		return map[string]any{"body": out, "truncated": true}
	}
	return out
}

// requestBody reads the body for logging and puts it back for the handler.
// Uploaded files are described by their length only.
func requestBody(r *http.Request) any {
	if isFileUpload(r.Header.Get("Content-Type")) {
		return map[string]any{"file_upload": true, "content_length": r.ContentLength}
	}
	if r.Body == nil {
		return nil
	}

	//nolint:errcheck // best effort for logging only
	raw, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(raw))

	if len(raw) > maxLoggedBodyBytes {
		return describeBody(raw[:maxLoggedBodyBytes], true)
	}
	return describeBody(raw, false)
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// middlewareLogging logs every request and its response. Response bodies are
// logged only for error statuses; successful payloads such as stored record
// dumps are reported by size.
func middlewareLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := matchedRoutePath(r)
		start := time.Now()

		slog.InfoContext(r.Context(), "request received",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"headers", maskHeaders(r.Header),
			"body", requestBody(r),
		)

		rec := &responseRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []any{
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", rec.bytes,
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if status >= http.StatusBadRequest {
			attrs = append(attrs, "body", describeBody(rec.body.Bytes(), rec.capped))
		}

		slog.Log(r.Context(), levelForStatus(status), "response sent", attrs...)
	})
}
