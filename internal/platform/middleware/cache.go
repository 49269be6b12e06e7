package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CacheConfig controls ETag revalidation for static content.
type CacheConfig struct {
	MaxAge      int      // seconds
	Private     bool     // Cache-Control: private
	VaryHeaders []string // e.g. Accept, Authorization
}

// DefaultCacheConfig suits authenticated, rarely changing content such as the
// CME library.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxAge:      300,
		Private:     true,
		VaryHeaders: []string{"Accept", "Authorization"},
	}
}

// bufferedResponseWriter holds the body until the ETag is known.
type bufferedResponseWriter struct {
	writer     http.ResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func newBufferedResponseWriter(w http.ResponseWriter) *bufferedResponseWriter {
	return &bufferedResponseWriter{writer: w, statusCode: http.StatusOK}
}

func (w *bufferedResponseWriter) Header() http.Header { return w.writer.Header() }

func (w *bufferedResponseWriter) Write(b []byte) (int, error) { return w.buf.Write(b) }

func (w *bufferedResponseWriter) WriteHeader(code int) { w.statusCode = code }

func (w *bufferedResponseWriter) flushTo() error {
	w.writer.WriteHeader(w.statusCode)
	if w.buf.Len() > 0 {
		_, err := w.writer.Write(w.buf.Bytes())
		return err
	}
	return nil
}

// ETag buffers GET and HEAD responses, tags successful ones with a weak ETag
// and answers a matching If-None-Match with 304. It overrides the no-store
// default set by SecurityHeaders.
func ETag(config CacheConfig) echo.MiddlewareFunc {
	cacheControl := buildCacheControl(config)
	vary := strings.Join(config.VaryHeaders, ", ")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}

			res := c.Response()
			origWriter := res.Writer
			buf := newBufferedResponseWriter(origWriter)
			res.Writer = buf

			err := next(c)
			res.Writer = origWriter
			if err != nil {
				return err
			}
			if buf.statusCode >= 400 {
				return buf.flushTo()
			}

			h := res.Header()
			h.Set("Cache-Control", cacheControl)
			if vary != "" {
				h.Set("Vary", vary)
			}
			etag := computeETag(buf.buf.Bytes())
			h.Set("ETag", etag)

			if inm := req.Header.Get("If-None-Match"); inm != "" && etagMatch(inm, etag) {
				h.Del(echo.HeaderContentLength)
				origWriter.WriteHeader(http.StatusNotModified)
				return nil
			}
			return buf.flushTo()
		}
	}
}

func computeETag(body []byte) string {
	sum := sha256.Sum256(body)
	return fmt.Sprintf(`W/"%x"`, sum[:16])
}

func buildCacheControl(config CacheConfig) string {
	scope := "public"
	if config.Private {
		scope = "private"
	}
	return fmt.Sprintf("%s, max-age=%d", scope, config.MaxAge)
}

// etagMatch compares an If-None-Match list against etag using weak
// comparison. "*" matches anything.
func etagMatch(headerVal, etag string) bool {
	headerVal = strings.TrimSpace(headerVal)
	if headerVal == "*" {
		return true
	}
	for _, candidate := range strings.Split(headerVal, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == strings.TrimPrefix(etag, "W/") {
			return true
		}
	}
	return false
}
