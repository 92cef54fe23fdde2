package p2p

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Listener accepts inbound peer streams on a fixed address and registers
// each one with the consumer.
type Listener struct {
	cfg      settings
	handlers Handlers

	lis   net.Listener
	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// NewListener binds the listening socket immediately so the effective
// address is known before Run is called.
func NewListener(addr string, handlers Handlers, opts ...Opt) (*Listener, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &Listener{
		cfg:      cfg,
		handlers: handlers,
		lis:      lis,
		conns:    make(map[*Conn]struct{}),
	}, nil
}

// Address returns the bound listen address.
func (l *Listener) Address() string {
	return l.lis.Addr().String()
}

// Run accepts streams until the context is canceled, then closes every
// stream it accepted.
func (l *Listener) Run(ctx context.Context) error {
	l.cfg.logger.Info("listening for peers", zap.String("address", l.Address()))
	go func() {
		<-ctx.Done()
		l.lis.Close()
	}()
	defer l.closeAll()
	for {
		nc, err := l.lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		c := newConn(nc, l.trackingHandlers(), l.cfg)
		l.mu.Lock()
		l.conns[c] = struct{}{}
		l.mu.Unlock()
		c.start()
		if l.handlers.Conn != nil {
			l.handlers.Conn(c)
		}
	}
}

// trackingHandlers wraps the consumer handlers so terminated streams drop
// out of the listener's accounting.
func (l *Listener) trackingHandlers() Handlers {
	h := l.handlers
	closed := h.Closed
	h.Closed = func(c *Conn) {
		l.mu.Lock()
		delete(l.conns, c)
		l.mu.Unlock()
		if closed != nil {
			closed(c)
		}
	}
	return h
}

func (l *Listener) closeAll() {
	l.mu.Lock()
	conns := make([]*Conn, 0, len(l.conns))
	for c := range l.conns {
		conns = append(conns, c)
	}
	l.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
