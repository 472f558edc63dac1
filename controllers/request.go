package controllers

import (
	"net"
	"net/http"
)

// getIPAddress returns the client host from RemoteAddr.
// Forwarding headers are resolved by the RealIP middleware in front of the router.
func getIPAddress(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
