package pkgrouter

import (
	"net/http"
	"strings"
	"unicode"

	"github.com/shandysiswandi/gofraud/internal/pkg/pkglog"
)

// Generator produces correlation ids for requests that arrive without one.
type Generator interface {
	Generate() string
}

const (
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is read when HeaderCorrelationID is absent, and echoed
	// back when it was the source.
	HeaderRequestID = "X-Request-ID"
)

const maxCIDLen = 128

// normalizeCID trims v, drops it when it holds a non-printable rune and caps
// it at maxCIDLen bytes.
func normalizeCID(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.IndexFunc(v, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return ""
	}
	if len(v) > maxCIDLen {
		v = v[:maxCIDLen]
	}
	return v
}

func middlewareCorrelationID(uid Generator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := normalizeCID(r.Header.Get(HeaderCorrelationID))
			if cid == "" {
				if cid = normalizeCID(r.Header.Get(HeaderRequestID)); cid != "" {
					w.Header().Set(HeaderRequestID, cid)
				}
			}
			if cid == "" && uid != nil {
				cid = uid.Generate()
			}

			if cid != "" {
				w.Header().Set(HeaderCorrelationID, cid)
				r = r.WithContext(pkglog.SetCorrelationID(r.Context(), cid))
			}

			next.ServeHTTP(w, r)
		})
	}
}
