package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/gazelink/go-gazelink/internal/log"
)

// Advertiser registers the receiver on the local network via mDNS so
// senders can find it without a configured address. Intended for trusted
// local networks only; there is no authentication.
type Advertiser struct {
	server *zeroconf.Server
}

// NewAdvertiser registers instance under serviceType (e.g.
// "_gazelink._tcp") in domain on the given port.
func NewAdvertiser(instance, serviceType, domain string, port int) (*Advertiser, error) {
	server, err := zeroconf.Register(instance, serviceType, domain, port,
		[]string{"v=1"}, nil)
	if err != nil {
		return nil, fmt.Errorf("register mdns service: %w", err)
	}
	log.Debug("mdns service registered",
		"instance", instance, "type", serviceType, "port", port)
	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Advertiser) Shutdown() {
	a.server.Shutdown()
}

// Peer is one discovered receiver.
type Peer struct {
	Name string
	Addr string // host:port, ready for Sender.Connect
}

// Browse looks for advertised receivers for up to timeout and returns
// every peer found. ErrNoPeersFound is returned when none answered.
func Browse(ctx context.Context, serviceType, domain string, timeout time.Duration) ([]Peer, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("create mdns resolver: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 8)
	if err := resolver.Browse(ctx, serviceType, domain, entries); err != nil {
		return nil, fmt.Errorf("browse mdns: %w", err)
	}

	var peers []Peer
	for entry := range entries {
		addr := pickAddr(entry)
		if addr == "" {
			continue
		}
		peers = append(peers, Peer{
			Name: entry.Instance,
			Addr: net.JoinHostPort(addr, fmt.Sprintf("%d", entry.Port)),
		})
	}

	if len(peers) == 0 {
		return nil, ErrNoPeersFound
	}
	return peers, nil
}

func pickAddr(entry *zeroconf.ServiceEntry) string {
	if len(entry.AddrIPv4) > 0 {
		return entry.AddrIPv4[0].String()
	}
	if len(entry.AddrIPv6) > 0 {
		return entry.AddrIPv6[0].String()
	}
	return ""
}
