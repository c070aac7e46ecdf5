package signaling

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// FrameKind is the type of a relayed WebSocket frame.
type FrameKind int

const (
	FrameText FrameKind = iota + 1
	FrameBinary
	FramePing
	FramePong
	FrameClose
)

func (k FrameKind) String() string {
	switch k {
	case FrameText:
		return "text"
	case FrameBinary:
		return "binary"
	case FramePing:
		return "ping"
	case FramePong:
		return "pong"
	case FrameClose:
		return "close"
	default:
		return "unknown"
	}
}

// Frame is the relay's representation of a WebSocket message, independent
// of either socket. A close frame's payload is the encoded status code and
// reason, empty when the peer sent none.
type Frame struct {
	Kind    FrameKind
	Payload []byte
}

// frameFromMessage translates a gorilla message type. Unknown types are
// dropped.
func frameFromMessage(messageType int, data []byte) (Frame, bool) {
	switch messageType {
	case websocket.TextMessage:
		return Frame{Kind: FrameText, Payload: data}, true
	case websocket.BinaryMessage:
		return Frame{Kind: FrameBinary, Payload: data}, true
	case websocket.PingMessage:
		return Frame{Kind: FramePing, Payload: data}, true
	case websocket.PongMessage:
		return Frame{Kind: FramePong, Payload: data}, true
	case websocket.CloseMessage:
		return Frame{Kind: FrameClose, Payload: data}, true
	default:
		return Frame{}, false
	}
}

// frameToMessage is the inverse of frameFromMessage.
func frameToMessage(f Frame) (int, []byte) {
	switch f.Kind {
	case FrameText:
		return websocket.TextMessage, f.Payload
	case FrameBinary:
		return websocket.BinaryMessage, f.Payload
	case FramePing:
		return websocket.PingMessage, f.Payload
	case FramePong:
		return websocket.PongMessage, f.Payload
	default:
		return websocket.CloseMessage, f.Payload
	}
}

func isControl(messageType int) bool {
	return messageType == websocket.CloseMessage ||
		messageType == websocket.PingMessage ||
		messageType == websocket.PongMessage
}

// writeFrame sends f on conn. Only one goroutine may write data frames to a
// connection at a time; control frames may be written concurrently.
func writeFrame(conn *websocket.Conn, f Frame, writeWait time.Duration) error {
	messageType, data := frameToMessage(f)
	deadline := time.Now().Add(writeWait)
	if isControl(messageType) {
		return conn.WriteControl(messageType, data, deadline)
	}
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return conn.WriteMessage(messageType, data)
}

// readFrames starts the single reader for conn and returns the frames it
// produces. Control frames arrive through gorilla's handlers, which are
// replaced so that pings, pongs and closes are relayed instead of answered
// locally. The channel is closed when the connection can no longer be read.
func readFrames(ctx context.Context, conn *websocket.Conn, side string) <-chan Frame {
	frames := make(chan Frame)

	emit := func(f Frame) bool {
		select {
		case frames <- f:
			return true
		case <-ctx.Done():
			return false
		}
	}

	conn.SetPingHandler(func(data string) error {
		emit(Frame{Kind: FramePing, Payload: []byte(data)})
		return nil
	})
	conn.SetPongHandler(func(data string) error {
		emit(Frame{Kind: FramePong, Payload: []byte(data)})
		return nil
	})
	conn.SetCloseHandler(func(code int, text string) error {
		emit(Frame{Kind: FrameClose, Payload: websocket.FormatCloseMessage(code, text)})
		return nil
	})

	go func() {
		defer close(frames)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				if !isExpectedReadError(err) {
					slog.Debug("signaling tunnel read ended", "side", side, "error", err)
				}
				return
			}
			f, ok := frameFromMessage(messageType, data)
			if !ok {
				continue
			}
			if !emit(f) {
				return
			}
		}
	}()

	return frames
}

func isExpectedReadError(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) || errors.Is(err, net.ErrClosed)
}
