package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientAddress derives the client network address used for the origin
// quota signal. Forwarded headers are consulted first because the
// service is expected to run behind a trusted reverse proxy; without
// one, RemoteAddr wins. Returns an empty string when nothing usable is
// present, which leaves the origin signal unconstrained.
func ClientAddress(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First entry is the originating client, later hops append.
		first, _, _ := strings.Cut(forwarded, ",")
		if addr := strings.TrimSpace(first); addr != "" {
			return addr
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

// secureTransport reports whether the request reached us over HTTPS,
// either directly or via a TLS-terminating proxy.
func secureTransport(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
