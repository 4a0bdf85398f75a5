package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

var ErrNotAuthenticate = errors.New("first frame was not Authenticate")

const pingInterval = 30 * time.Second

// Conn is a bidirectional frame transport. ReadFrame and WriteFrame may run
// on different goroutines, each on at most one at a time.
type Conn interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	Close() error
}

// pinger is implemented by transports that need keepalive traffic.
type pinger interface {
	Ping() error
}

type Authenticator interface {
	Authenticate(gameID, token string) (*Game, string, error)
}

// Router bridges player connections to games: it runs the handshake and
// then one inbound and one outbound task per connection.
type Router struct {
	auth Authenticator

	active    atomic.Int64
	total     atomic.Int64
	bytesSent atomic.Int64
	bytesRecv atomic.Int64
}

func NewRouter(auth Authenticator) *Router {
	return &Router{auth: auth}
}

// Serve owns conn until it returns and always closes it. Authentication
// failures close the connection without sending anything.
func (rt *Router) Serve(ctx context.Context, conn Conn) error {
	defer conn.Close()

	game, playerID, err := rt.handshake(conn)
	if err != nil {
		return err
	}

	// Subscribe before anything is sent so no event after this point is missed.
	sub := game.Subscribe()
	defer sub.Close()

	rt.active.Add(1)
	rt.total.Add(1)
	defer rt.active.Add(-1)

	if err := rt.write(conn, AuthenticatedEvent{}); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer conn.Close()
		return rt.outbound(gctx, conn, sub, playerID)
	})
	group.Go(func() error {
		defer conn.Close()
		return rt.inbound(gctx, conn, game, playerID)
	})
	return group.Wait()
}

func (rt *Router) handshake(conn Conn) (*Game, string, error) {
	frame, err := conn.ReadFrame()
	if err != nil {
		return nil, "", err
	}
	rt.bytesRecv.Add(int64(len(frame)))
	msg, err := ParseClientMessage(frame)
	if err != nil {
		return nil, "", fmt.Errorf("handshake: %w", err)
	}
	if msg.Kind != CmdAuthenticate {
		return nil, "", ErrNotAuthenticate
	}
	return rt.auth.Authenticate(msg.GameID, msg.AccessToken)
}

// outbound forwards the events addressed to playerID until the stream
// closes, a write fails, or the inbound side has finished.
func (rt *Router) outbound(ctx context.Context, conn Conn, sub *Subscription, playerID string) error {
	p, canPing := conn.(pinger)
	var ping <-chan time.Time
	if canPing {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				return nil
			}
			if msg.To != playerID {
				continue
			}
			if err := rt.write(conn, msg.Event); err != nil {
				return err
			}
		case <-ping:
			if err := p.Ping(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// inbound queues every parsable frame as a command from playerID. Frames
// that do not parse are dropped.
func (rt *Router) inbound(ctx context.Context, conn Conn, game *Game, playerID string) error {
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return err
		}
		rt.bytesRecv.Add(int64(len(frame)))
		msg, err := ParseClientMessage(frame)
		if err != nil {
			continue
		}
		if err := game.Submit(ctx, Command{PlayerID: playerID, Message: msg}); err != nil {
			return err
		}
	}
}

func (rt *Router) write(conn Conn, e Event) error {
	frame, err := EncodeEvent(e)
	if err != nil {
		return err
	}
	if err := conn.WriteFrame(frame); err != nil {
		return err
	}
	rt.bytesSent.Add(int64(len(frame)))
	return nil
}

type RouterStats struct {
	Connections      int64 `json:"connections"`
	TotalConnections int64 `json:"totalConnections"`
	BytesSent        int64 `json:"totalBytesSent"`
	BytesRecv        int64 `json:"totalBytesRecv"`
}

func (rt *Router) Stats() RouterStats {
	return RouterStats{
		Connections:      rt.active.Load(),
		TotalConnections: rt.total.Load(),
		BytesSent:        rt.bytesSent.Load(),
		BytesRecv:        rt.bytesRecv.Load(),
	}
}
