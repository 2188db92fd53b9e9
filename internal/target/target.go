package target

import (
	"fmt"
	"strings"
)

// Target is a single resolved backend endpoint. It is immutable after
// construction: IP is always a resolved IPv4 literal, never a hostname
// that would need another lookup at forward time.
type Target struct {
	ip       string
	port     int
	baseURI  string
	hostname string
}

// NewTarget creates a target for an already-resolved address. An empty
// baseURI defaults to "/".
func NewTarget(ip string, port int, baseURI string, hostname string) *Target {
	if baseURI == "" {
		baseURI = "/"
	}

	return &Target{
		ip:       ip,
		port:     port,
		baseURI:  baseURI,
		hostname: hostname,
	}
}

// IP returns the resolved IPv4 address.
func (t *Target) IP() string {
	return t.ip
}

// Port returns the backend port.
func (t *Target) Port() int {
	return t.port
}

// BaseURI returns the path prefix prepended to forwarded paths.
func (t *Target) BaseURI() string {
	return t.baseURI
}

// Hostname returns the textual host the target was parsed from, before
// DNS resolution. It is empty when the target was built from an address
// literal and is used only for weight lookup.
func (t *Target) Hostname() string {
	return t.hostname
}

// Addr returns the "ip:port" form used to key connection pools.
func (t *Target) Addr() string {
	return fmt.Sprintf("%s:%d", t.ip, t.port)
}

// URL builds the outbound URL for a rewritten request path, joining the
// base URI and path without doubling slashes.
func (t *Target) URL(path string) string {
	base := strings.TrimSuffix(t.baseURI, "/")

	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("http://%s:%d%s%s", t.ip, t.port, base, path)
}
