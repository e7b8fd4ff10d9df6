package netbios

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/netip"
	"time"
)

// DefaultBroadcast is the limited broadcast address of the name service.
const DefaultBroadcast = "255.255.255.255:137"

// DefaultTimeout bounds one name query.
const DefaultTimeout = 2 * time.Second

// ErrNotFound indicates no node answered the query positively.
var ErrNotFound = errors.New("netbios: name not found")

// Client sends NB name queries. A zero Client broadcasts on the local
// segment with DefaultTimeout.
type Client struct {
	// Server, when set, receives unicast queries (a WINS server)
	// instead of the broadcast address.
	Server string

	// Broadcast overrides DefaultBroadcast.
	Broadcast string

	// Timeout bounds each query (default: 2s).
	Timeout time.Duration
}

func (c *Client) target() (string, bool) {
	if c.Server != "" {
		return c.Server, false
	}
	if c.Broadcast != "" {
		return c.Broadcast, true
	}
	return DefaultBroadcast, true
}

// Resolve queries for name registered with type t and returns the first
// IPv4 address in the first positive response.
func (c *Client) Resolve(ctx context.Context, name string, t NameType) (netip.Addr, error) {
	target, broadcast := c.target()
	raddr, err := net.ResolveUDPAddr("udp4", target)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("netbios: name service address %q: %w", target, err)
	}

	id := uint16(rand.Uint32())
	query, err := buildQuery(id, name, t, broadcast)
	if err != nil {
		return netip.Addr{}, err
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return netip.Addr{}, err
	}
	defer conn.Close()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return netip.Addr{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteToUDP(query, raddr); err != nil {
		return netip.Addr{}, fmt.Errorf("netbios: send query: %w", err)
	}

	buf := make([]byte, 576)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return netip.Addr{}, ctx.Err()
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				return netip.Addr{}, fmt.Errorf("%w: %s<%02X>", ErrNotFound, name, byte(t))
			}
			return netip.Addr{}, err
		}

		resp, err := parseResponse(buf[:n])
		if err != nil || resp.id != id {
			// Stray or garbled datagram; keep listening until the deadline.
			continue
		}
		if resp.rcode != 0 || len(resp.addresses) == 0 {
			if broadcast {
				continue
			}
			return netip.Addr{}, fmt.Errorf("%w: %s<%02X> (rcode %d)", ErrNotFound, name, byte(t), resp.rcode)
		}
		return resp.addresses[0], nil
	}
}
