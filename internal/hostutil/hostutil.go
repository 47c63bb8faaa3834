// Package hostutil normalizes the server addresses users type at the prompt.
package hostutil

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Normalize converts a host string to a server base URL.
//   - Empty string returns empty
//   - localhost, loopback and private-network hosts default to http://
//   - Other bare hostnames default to https://
//   - Full URLs keep their scheme
//
// A single trailing slash is removed.
func Normalize(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		if IsLocal(hostOnly(host)) {
			host = "http://" + host
		} else {
			host = "https://" + host
		}
	}
	return strings.TrimSuffix(host, "/")
}

// IsLocal reports whether host (without port) is localhost, a .localhost or
// .local name, a loopback address, or a private-network address.
func IsLocal(host string) bool {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
}

// InsecureWarning returns a warning when rawURL sends credentials over plain
// http to a host outside the local network, or "" when it doesn't.
func InsecureWarning(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "http" {
		return ""
	}
	if IsLocal(u.Hostname()) {
		return ""
	}
	return fmt.Sprintf("warning: %s uses insecure http://; your password and token are sent unencrypted", u.Host)
}

// hostOnly strips a path and port from a scheme-less host string.
func hostOnly(host string) string {
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}
