package p2p

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// Dialer opens outbound streams to upstream peers. A dialed stream is
// registered with the consumer exactly like an accepted one.
type Dialer struct {
	cfg      settings
	handlers Handlers
}

func NewDialer(handlers Handlers, opts ...Opt) *Dialer {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Dialer{cfg: cfg, handlers: handlers}
}

// ConnectTo opens a stream to the peer at addr. The caller owns
// reconnection policy: when the returned stream terminates (observe
// Done), dial again if desired.
func (d *Dialer) ConnectTo(ctx context.Context, addr string) (*Conn, error) {
	var nd net.Dialer
	nc, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	d.cfg.logger.Info("connected to upstream peer", zap.String("address", addr))
	c := newConn(nc, d.handlers, d.cfg)
	c.start()
	if d.handlers.Conn != nil {
		d.handlers.Conn(c)
	}
	return c, nil
}
