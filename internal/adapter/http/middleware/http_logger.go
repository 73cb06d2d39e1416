package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/grigobio237-eng/Youniqle-sub001/internal/logging"
)

const (
	reqBodyLimit  = 8 * 1024 // 8KB
	respBodyLimit = 8 * 1024 // 8KB
)

// sensitiveKeys are redacted from logged bodies regardless of wire format.
// AuthToken and SignData come from the payment gateway and must never land
// in log files.
var sensitiveKeys = map[string]struct{}{
	"password": {}, "authorization": {}, "token": {}, "secret": {},
	"authtoken": {}, "signdata": {}, "client_secret": {},
}

func isSensitive(k string) bool {
	_, ok := sensitiveKeys[strings.ToLower(k)]
	return ok
}

type bodyLogWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if w.buf != nil && w.buf.Len() < respBodyLimit {
		remain := respBodyLimit - w.buf.Len()
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw // not JSON
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				if isSensitive(k) {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	out := scrub(m)
	b, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return b
}

// redactForm scrubs an url-encoded body (the gateway callback format).
func redactForm(raw []byte) []byte {
	vals, err := url.ParseQuery(string(raw))
	if err != nil {
		return raw
	}
	for k := range vals {
		if isSensitive(k) {
			vals.Set(k, "***redacted***")
		}
	}
	return []byte(vals.Encode())
}

func readCapped(rc io.ReadCloser, n int) (body []byte, truncated bool) {
	defer rc.Close()
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, rc, int64(n+1))
	b := buf.Bytes()
	if len(b) > n {
		return b[:n], true
	}
	return b, false
}

// Logging logs request/response pairs and injects a request-scoped
// slog.Logger into the gin context.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", reqID)
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)

		var reqBodyLogged string
		ct := c.GetHeader("Content-Type")
		if c.Request.Body != nil {
			switch {
			case strings.Contains(ct, "application/json"):
				body, truncated := readCapped(c.Request.Body, reqBodyLimit)
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				body = redactJSON(body)
				if truncated {
					body = append(body, []byte("...truncated...")...)
				}
				reqBodyLogged = string(body)
			case strings.Contains(ct, "application/x-www-form-urlencoded"):
				body, truncated := readCapped(c.Request.Body, reqBodyLimit)
				c.Request.Body = io.NopCloser(bytes.NewReader(body))
				body = redactForm(body)
				if truncated {
					body = append(body, []byte("...truncated...")...)
				}
				reqBodyLogged = string(body)
			}
		}

		blw := &bodyLogWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		durMs := time.Since(start).Milliseconds()

		var respBodyLogged string
		if strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") {
			respBodyLogged = string(redactJSON(blw.buf.Bytes()))
			if blw.buf.Len() >= respBodyLimit {
				respBodyLogged += "...truncated..."
			}
		}

		attrs := []any{
			"status", status,
			"dur_ms", durMs,
			"resp_bytes", c.Writer.Size(),
		}
		if reqBodyLogged != "" {
			attrs = append(attrs, "req_body", reqBodyLogged)
		}
		if respBodyLogged != "" {
			attrs = append(attrs, "resp_body", respBodyLogged)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusBadRequest {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
