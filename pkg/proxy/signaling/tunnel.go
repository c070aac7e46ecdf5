package signaling

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Direction names which relay finished first.
type Direction string

const (
	InboundToBackend Direction = "inbound_to_backend"
	BackendToInbound Direction = "backend_to_inbound"
)

// tunnel relays frames between an upgraded client socket and the backend.
type tunnel struct {
	inbound      *websocket.Conn
	backend      *websocket.Conn
	pingInterval time.Duration
	writeWait    time.Duration
}

// run relays until either direction completes, then closes both sockets and
// waits for the other direction to stop. It returns the direction that
// finished first.
func (t *tunnel) run(ctx context.Context) Direction {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fromInbound := readFrames(ctx, t.inbound, "inbound")
	fromBackend := readFrames(ctx, t.backend, "backend")

	done := make(chan Direction, 2)
	go func() {
		t.inboundToBackend(ctx, fromInbound)
		done <- InboundToBackend
	}()
	go func() {
		t.backendToInbound(ctx, fromBackend)
		done <- BackendToInbound
	}()

	var first Direction
	select {
	case first = <-done:
	case <-ctx.Done():
	}
	cancel()
	t.inbound.Close()
	t.backend.Close()

	if first == "" {
		first = <-done
	}
	<-done
	return first
}

// inboundToBackend forwards client frames. A client close is passed on as a
// close to the backend and ends the relay.
func (t *tunnel) inboundToBackend(ctx context.Context, frames <-chan Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				_ = writeFrame(t.backend, Frame{Kind: FrameClose}, t.writeWait)
				return
			}
			if err := writeFrame(t.backend, f, t.writeWait); err != nil {
				return
			}
			if f.Kind == FrameClose {
				return
			}
		}
	}
}

// backendToInbound forwards backend frames and keeps the client connection
// alive with pings. Pings go to the client only.
func (t *tunnel) backendToInbound(ctx context.Context, frames <-chan Frame) {
	ticker := time.NewTicker(t.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writeFrame(t.inbound, Frame{Kind: FramePing}, t.writeWait); err != nil {
				return
			}
		case f, ok := <-frames:
			if !ok {
				_ = writeFrame(t.inbound, Frame{Kind: FrameClose}, t.writeWait)
				return
			}
			if err := writeFrame(t.inbound, f, t.writeWait); err != nil {
				return
			}
			if f.Kind == FrameClose {
				return
			}
		}
	}
}
