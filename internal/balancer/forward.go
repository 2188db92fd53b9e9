package balancer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/stefanpapad/target-balancer/internal/target"
)

// hopHeaders are connection-scoped headers that must not cross the
// proxy leg. Matching is case-insensitive.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Transfer-Encoding",
}

// ForwardRequest forwards req to the target under the rewritten path
// and relays the backend response unchanged. Transport failures never
// escape as errors: they come back as responder-built 502/504
// responses. The balancer does not retry a failed forward.
func (b *Balancer) ForwardRequest(t *target.Target, req *http.Request, path string) *Response {
	outURL := t.URL(path)
	if query := req.URL.RawQuery; query != "" {
		outURL += "?" + query
	}

	ctx, cancel := context.WithTimeout(req.Context(), b.config.ConnectionTimeout())
	defer cancel()

	out, err := http.NewRequestWithContext(ctx, req.Method, outURL, req.Body)
	if err != nil {
		return b.responder.Respond(http.StatusBadGateway, "error forwarding request: "+err.Error())
	}

	copyForwardHeaders(out.Header, req.Header)

	resp, err := b.sessions.Get(t.Addr()).Do(out)
	if err != nil {
		return b.errorResponse(t, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return b.errorResponse(t, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
}

// copyForwardHeaders copies every inbound header except the hop-by-hop
// set. Routing and auth headers pass through unmodified.
func copyForwardHeaders(dst, src http.Header) {
	for key, values := range src {
		if isHopHeader(key) {
			continue
		}

		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func isHopHeader(name string) bool {
	for _, hop := range hopHeaders {
		if strings.EqualFold(name, hop) {
			return true
		}
	}

	return false
}

// errorResponse maps a transport failure to a proxy error response:
// timeouts to 504, connection-level failures to 502, anything else to
// 502 with the failure detail.
func (b *Balancer) errorResponse(t *target.Target, err error) *Response {
	switch {
	case isTimeout(err):
		b.logger.Warn("upstream timeout",
			slog.String("target", t.Addr()))
		return b.responder.Respond(http.StatusGatewayTimeout, "request timeout")

	case isConnectionError(err):
		b.logger.Warn("upstream connection error",
			slog.String("target", t.Addr()),
			slog.String("error", err.Error()))
		return b.responder.Respond(http.StatusBadGateway, "connection error")

	default:
		b.logger.Warn("upstream request failed",
			slog.String("target", t.Addr()),
			slog.String("error", err.Error()))
		return b.responder.Respond(http.StatusBadGateway, "error forwarding request: "+err.Error())
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
