// Package header provides header filtering for the panel's Gateway leg.
//
// The panel sits between a browser and the Gateway like so:
//
//	Browser <--> Panel <--> Gateway
//
// and headers are handled accordingly as each leg negotiates compression,
// hops, encoding, and auth independently. The browser never holds the
// Gateway token; the panel injects it on the upstream leg.
package header

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler manages headers between panel connections.
type Handler struct {
	token string
}

// NewHandler creates a new header Handler. token, if non-empty, is injected
// as a bearer Authorization header on every upstream request.
func NewHandler(token string) *Handler {
	return &Handler{token: token}
}

// skipRequest is the set of request headers (browser --> panel --> Gateway)
// that are not forwarded to the Gateway.
var skipRequest = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection": {},

	// The Host header is rewritten by Go's http.Transport to match the
	// Gateway URL. Forwarding the browser's Host would confuse
	// virtual-hosted deployments.
	"Host": {},

	// Accept-Encoding is stripped so that Go's http.Transport adds its own
	// "Accept-Encoding: gzip" and transparently decompresses the Gateway
	// response.
	"Accept-Encoding": {},

	// The panel owns Gateway auth; any browser-supplied Authorization is
	// dropped rather than forwarded.
	"Authorization": {},

	// Browser session cookies are meaningless to the Gateway.
	"Cookie": {},
}

// skipResponse is the set of Gateway response headers (browser <-- panel <-- Gateway)
// that are not copied back to the browser.
var skipResponse = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection": {},

	// fasthttp manages chunked transfer encoding for the browser-facing
	// response independently.
	"Transfer-Encoding": {},

	// The panel always reads a decompressed body (Go's http.Transport strips
	// Content-Encoding after auto-decompression). Forwarding a stale
	// Content-Encoding would claim an encoding the body no longer has.
	"Content-Encoding": {},

	// The Gateway's Content-Length reflects the (possibly compressed)
	// upstream body size; for streamed responses there is no final length at
	// all. Let fasthttp compute the final framing.
	"Content-Length": {},
}

// SetUpstreamRequestHeaders copies request headers from the Fiber context to
// the outgoing http.Request, filtering headers that the panel should not
// forward, and injects the Gateway bearer token.
func (h *Handler) SetUpstreamRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		k := string(key)
		if _, skip := skipRequest[k]; !skip {
			req.Header.Set(k, string(value))
		}
	})

	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

// SetClientResponseHeaders copies response headers from the Gateway
// http.Response to the Fiber context, filtering headers that the panel
// should not forward back down to the browser.
func (h *Handler) SetClientResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for k, v := range resp.Header {
		if _, skip := skipResponse[k]; !skip {
			c.Set(k, strings.Join(v, ", "))
		}
	}
}
