// Package visitor extracts client metadata from tracking requests:
// the client IP from proxy headers, a query-stripped referer, and a
// best-effort user-agent classification.
package visitor

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// Proxy headers checked in priority order. There is deliberately no
// fallback to the socket address: a raw RemoteAddr behind a proxy is
// the proxy, not the visitor.
var ipHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"CF-Connecting-IP",
	"X-Client-IP",
}

var (
	ipv4Re = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	// Strict 8-group form only; compressed IPv6 is not recognized.
	ipv6Re = regexp.MustCompile(`^([0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`)
)

// ClientIP returns the first proxy-header value that looks like a valid
// IP, or "" when none does.
func ClientIP(r *http.Request) string {
	for _, header := range ipHeaders {
		v := r.Header.Get(header)
		if v == "" {
			continue
		}
		// Multi-hop headers carry a comma-separated chain; the
		// client is the first entry.
		ip := strings.TrimSpace(strings.Split(v, ",")[0])
		if ipv4Re.MatchString(ip) || ipv6Re.MatchString(ip) {
			return ip
		}
	}
	return ""
}

// SanitizeReferer strips the query string and fragment from a referer
// URL. Returns "" when the input is absent or not an absolute URL, so
// tokens in referer query params never reach storage.
func SanitizeReferer(referer string) string {
	if referer == "" {
		return ""
	}
	u, err := url.Parse(referer)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
