package codenvy

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

const maxLoggedBody = 10000

// LoggingTransport logs every request and response. Credential headers and
// the bodies of login exchanges are never written.
type LoggingTransport struct {
	Transport http.RoundTripper
}

func NewLoggingTransport(transport http.RoundTripper) *LoggingTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &LoggingTransport{Transport: transport}
}

func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	t.logRequest(req)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		logger.LogError("HTTP_REQUEST", fmt.Sprintf("%s %s", req.Method, req.URL.Redacted()), err)
		return nil, err
	}

	t.logResponse(req, resp, duration)
	return resp, nil
}

func (t *LoggingTransport) logRequest(req *http.Request) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "=== HTTP REQUEST ===\n%s %s %s\n", req.Method, req.URL.Redacted(), req.Proto)
	writeHeaders(&buf, req.Header)

	switch {
	case isLoginRequest(req):
		buf.WriteString("Body: [REDACTED]\n")
	case req.Body != nil && req.ContentLength > 0 && req.ContentLength < maxLoggedBody:
		body, err := io.ReadAll(req.Body)
		if err == nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			fmt.Fprintf(&buf, "Body (%d bytes):\n%s\n", len(body), body)
		}
	case req.ContentLength > 0:
		fmt.Fprintf(&buf, "Body: (%d bytes, too large to log)\n", req.ContentLength)
	}

	buf.WriteString("===================")
	logger.Log("%s", buf.String())
}

func (t *LoggingTransport) logResponse(req *http.Request, resp *http.Response, duration time.Duration) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "=== HTTP RESPONSE ===\n%s %s - %s (%v)\n", req.Method, req.URL.Path, resp.Status, duration)
	writeHeaders(&buf, resp.Header)

	if isLoginRequest(req) {
		buf.WriteString("Body: [REDACTED]\n")
	} else if resp.Body != nil && resp.ContentLength != 0 {
		body, err := io.ReadAll(resp.Body)
		if err == nil {
			resp.Body = io.NopCloser(bytes.NewReader(body))
			if len(body) > 0 && len(body) < maxLoggedBody {
				fmt.Fprintf(&buf, "Body (%d bytes):\n%s\n", len(body), body)
			} else if len(body) > 0 {
				fmt.Fprintf(&buf, "Body: (%d bytes, too large to log)\n", len(body))
			}
		}
	}

	buf.WriteString("====================")
	logger.Log("%s", buf.String())
}

func writeHeaders(buf *bytes.Buffer, header http.Header) {
	buf.WriteString("Headers:\n")
	for name, values := range header {
		if isSensitiveHeader(name) {
			fmt.Fprintf(buf, "  %s: [REDACTED]\n", name)
			continue
		}
		for _, value := range values {
			fmt.Fprintf(buf, "  %s: %s\n", name, value)
		}
	}
}

func isLoginRequest(req *http.Request) bool {
	return strings.HasSuffix(req.URL.Path, "/"+loginPath)
}

func isSensitiveHeader(name string) bool {
	switch strings.ToLower(name) {
	case "authorization", "x-api-key", "api-key", "x-auth-token", "cookie", "set-cookie":
		return true
	}
	return false
}
