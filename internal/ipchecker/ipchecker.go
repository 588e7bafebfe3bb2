// Package ipchecker gates internal-only endpoints behind a trusted
// subnet. With no subnet configured the gate stays closed.
package ipchecker

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// IPChecker validates whether the client behind an HTTP request belongs
// to the configured trusted subnet.
type IPChecker struct {
	trustedSubnet *net.IPNet
}

// New parses the trusted subnet in CIDR notation (e.g. "10.0.0.0/8").
// An empty string yields a disabled checker that trusts nobody.
func New(trustedSubnet string) (*IPChecker, error) {
	if trustedSubnet == "" {
		return &IPChecker{}, nil
	}

	_, allowedNet, err := net.ParseCIDR(trustedSubnet)
	if err != nil {
		return nil, fmt.Errorf("parsing trusted subnet %q: %w", trustedSubnet, err)
	}

	return &IPChecker{trustedSubnet: allowedNet}, nil
}

// IsTrusted extracts the client IP from the request and reports whether
// it falls inside the trusted subnet. The IP is taken from X-Real-IP,
// then the first X-Forwarded-For entry, then RemoteAddr.
func (checker *IPChecker) IsTrusted(request *http.Request) bool {
	if checker.trustedSubnet == nil {
		return false
	}

	clientIP := clientIPFromRequest(request)

	return clientIP != nil && checker.trustedSubnet.Contains(clientIP)
}

func clientIPFromRequest(request *http.Request) net.IP {
	if ip := net.ParseIP(request.Header.Get("X-Real-IP")); ip != nil {
		return ip
	}

	if xff := request.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		return nil
	}

	return net.ParseIP(host)
}
