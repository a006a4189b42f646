package links

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"
)

// ErrBlockedDestination indicates a URL or resolved address on a loopback,
// link-local or private network.
var ErrBlockedDestination = errors.New("destination not allowed")

// URLValidationOptions controls which outbound destinations are allowed.
type URLValidationOptions struct {
	AllowPrivateNetworks bool
}

// ValidateOutboundURL checks that raw is an absolute http(s) URL whose host
// is not local or, when it is an IP literal, not on a private network.
// Hostnames are checked again after resolution by the dialer.
func ValidateOutboundURL(raw string, opts URLValidationOptions) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported url scheme %q", scheme)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return nil, fmt.Errorf("url host is required")
	}

	if opts.AllowPrivateNetworks {
		return parsed, nil
	}

	if isLocalHostname(host) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}

	if ip := net.ParseIP(host); ip != nil && isBlockedIP(ip) {
		return nil, fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}

	return parsed, nil
}

// dialControl rejects connections to blocked addresses after DNS
// resolution, which covers rebinding and redirects to internal hosts.
func dialControl(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("parsing dial address: %w", err)
	}

	ip := net.ParseIP(host)
	if ip == nil || isBlockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedDestination, host)
	}

	return nil
}

func isLocalHostname(host string) bool {
	return host == "localhost" || strings.HasSuffix(host, ".localhost")
}

func isBlockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsUnspecified() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast()
}
