package probe

import (
	"context"
	"net"
	"time"
)

// TCP reports ready once a TCP connection to Address succeeds. No payload is
// exchanged; the connection is closed immediately.
type TCP struct {
	Address string
	Timeout time.Duration
}

func (p TCP) Check(ctx context.Context) error {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return err
	}
	return conn.Close()
}

func (p TCP) Describe() string { return "tcp:" + p.Address }

// Port returns the port part of Address, or Address itself if it has none.
func (p TCP) Port() string {
	_, port, err := net.SplitHostPort(p.Address)
	if err != nil {
		return p.Address
	}
	return port
}
