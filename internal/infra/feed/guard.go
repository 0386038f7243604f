package feed

import (
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"

	"newsdesk/internal/domain/entity"
)

// Guard restricts where a Fetcher may connect. It is meant for URLs supplied
// by API callers; operator-configured feeds use an unguarded Fetcher because
// they may legitimately live on a private network.
type Guard struct {
	// CheckURL vets the requested URL and every redirect target. Nil allows any URL.
	CheckURL func(rawURL string) error

	// BlockIP reports addresses that must never be dialed. It runs on the
	// resolved address at connect time. Nil allows any address.
	BlockIP func(ip net.IP) bool
}

// PublicGuard only lets requests reach public addresses.
func PublicGuard() Guard {
	return Guard{CheckURL: entity.ValidateURL, BlockIP: entity.IsPrivateIP}
}

// NewGuardedFetcher creates a Fetcher whose requests, redirects and
// connections are vetted by g. transport is cloned, nil clones
// http.DefaultTransport. Proxies are disabled so the dial check sees the real
// destination.
func NewGuardedFetcher(cfg Config, transport *http.Transport, g Guard) *Fetcher {
	var t *http.Transport
	if transport != nil {
		t = transport.Clone()
	} else {
		t = http.DefaultTransport.(*http.Transport).Clone()
	}
	t.Proxy = nil
	if g.BlockIP != nil {
		dialer := &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
			Control:   dialControl(g.BlockIP),
		}
		t.DialContext = dialer.DialContext
	}
	return newFetcher(cfg, &http.Client{Transport: t}, g.CheckURL)
}

func dialControl(block func(net.IP) bool) func(network, address string, _ syscall.RawConn) error {
	return func(_, address string, _ syscall.RawConn) error {
		host, _, err := net.SplitHostPort(address)
		if err != nil {
			return err
		}
		ip := net.ParseIP(host)
		if ip == nil || block(ip) {
			return fmt.Errorf("%w: %s", ErrForbiddenAddress, host)
		}
		return nil
	}
}
