package feed

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// newPublicHTTPClient returns a client that refuses to connect to loopback,
// private, link-local or unspecified addresses. The check runs on the
// resolved address of every dial, so redirects and DNS answers that point
// inward are rejected too.
func newPublicHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   publicAddressOnly,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would be dialed instead of the article host.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func publicAddressOnly(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, address)
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, address)
	}

	if !isPublicAddr(addr) {
		return fmt.Errorf("%w: address %s is not publicly routable", ErrInvalidURL, addr)
	}

	return nil
}

func isPublicAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return !(addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsUnspecified())
}
