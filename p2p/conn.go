package p2p

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/multiformats/go-varint"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/clustermesh/statesync/codec"
	"github.com/clustermesh/statesync/common/types"
)

// maxFrameSize caps a single wire frame: the payload limit plus room for
// the message envelope.
const maxFrameSize = types.MaxPayloadSize + 64

// Conn is one live peer stream. A read pump decodes inbound frames and
// hands them to the consumer; a write pump drains a bounded send queue.
// Either pump failing closes the stream.
type Conn struct {
	logger    *zap.Logger
	nc        net.Conn
	queue     chan *types.SyncMessage
	handlers  Handlers
	limiter   *rate.Limiter
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	eg        errgroup.Group
}

func newConn(nc net.Conn, handlers Handlers, cfg settings) *Conn {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Conn{
		logger:   cfg.logger,
		nc:       nc,
		queue:    make(chan *types.SyncMessage, cfg.queueSize),
		handlers: handlers,
		ctx:      ctx,
		cancel:   cancel,
	}
	if cfg.rateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.rateInterval/time.Duration(cfg.rateLimit)), cfg.rateLimit)
	}
	return c
}

func (c *Conn) start() {
	connsGauge.Inc()
	c.eg.Go(func() error {
		err := c.readLoop()
		c.Close()
		return err
	})
	c.eg.Go(func() error {
		err := c.writeLoop()
		c.Close()
		return err
	})
	go func() {
		if err := c.eg.Wait(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
			c.logger.Info("peer stream failed",
				zap.String("remote", c.RemoteAddr()),
				zap.Error(err),
			)
		}
		connsGauge.Dec()
		if c.handlers.Closed != nil {
			c.handlers.Closed(c)
		}
	}()
}

// Send enqueues msg for delivery. It never blocks: when the queue is full
// the message is dropped and the periodic re-broadcast heals the gap.
func (c *Conn) Send(msg *types.SyncMessage) {
	select {
	case <-c.ctx.Done():
	case c.queue <- msg:
	default:
		sendDropped.Inc()
		c.logger.Debug("send queue full, dropping message",
			zap.String("remote", c.RemoteAddr()),
			zap.Stringer("component", msg.Component),
		)
	}
}

// Close tears the stream down. Safe to call multiple times.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.logger.Debug("closing stream", zap.Error(err))
		}
	})
	return nil
}

// Done is closed when the stream has terminated.
func (c *Conn) Done() <-chan struct{} {
	return c.ctx.Done()
}

// RemoteAddr describes the peer endpoint.
func (c *Conn) RemoteAddr() string {
	return c.nc.RemoteAddr().String()
}

func (c *Conn) readLoop() error {
	rd := bufio.NewReader(c.nc)
	for {
		if c.limiter != nil {
			if err := c.limiter.Wait(c.ctx); err != nil {
				return nil
			}
		}
		size, err := varint.ReadUvarint(rd)
		if err != nil {
			return err
		}
		if size > maxFrameSize {
			recvOversized.Inc()
			return fmt.Errorf("frame of %d bytes exceeds limit %d", size, maxFrameSize)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(rd, buf); err != nil {
			return err
		}
		var msg types.SyncMessage
		if err := codec.Decode(buf, &msg); err != nil {
			// frame boundaries are still intact, skip the bad message
			recvMalformed.Inc()
			c.logger.Warn("dropping undecodable message",
				zap.String("remote", c.RemoteAddr()),
				zap.Error(err),
			)
			continue
		}
		recvMessages.Inc()
		if c.handlers.Message != nil {
			c.handlers.Message(c, &msg)
		}
	}
}

func (c *Conn) writeLoop() error {
	wr := bufio.NewWriter(c.nc)
	szBuf := make([]byte, binary.MaxVarintLen64)
	for {
		select {
		case <-c.ctx.Done():
			return nil
		case msg := <-c.queue:
			if err := c.writeFrame(wr, szBuf, msg); err != nil {
				return err
			}
			// batch whatever else is already queued into one flush
			for more := true; more; {
				select {
				case msg := <-c.queue:
					if err := c.writeFrame(wr, szBuf, msg); err != nil {
						return err
					}
				default:
					more = false
				}
			}
			if err := wr.Flush(); err != nil {
				return fmt.Errorf("flush: %w", err)
			}
		}
	}
}

func (c *Conn) writeFrame(wr *bufio.Writer, szBuf []byte, msg *types.SyncMessage) error {
	payload, err := codec.Encode(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	n := binary.PutUvarint(szBuf, uint64(len(payload)))
	if _, err := wr.Write(szBuf[:n]); err != nil {
		return fmt.Errorf("write frame size: %w", err)
	}
	if _, err := wr.Write(payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	sentMessages.Inc()
	return nil
}
