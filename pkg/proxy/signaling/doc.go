/*
Package signaling reverse proxies media signaling traffic so that clients
reach the signaling server through the gateway's single public port.

Requests under the prefix (default /livekit) are rewritten onto the backend
base URL with the prefix removed and the query string preserved:

	/livekit/rtc?access_token=T  ->  ws://127.0.0.1:7880/rtc?access_token=T

# WebSocket Tunnels

Upgrade requests are accepted first and the backend is dialed afterwards. If
the backend cannot be reached the client's socket is closed without an
application error.

Each socket has a single reader goroutine that turns messages and control
frames into Frame values. Two relays then run concurrently, one per
direction, sharing a context. The first relay to finish cancels it and both
sockets are closed. The backend-to-client relay also pings the client every
PingInterval so that NAT and proxy layers do not drop idle connections; the
backend is never pinged.

# HTTP Forwarding

Other requests are buffered (at most MaxBodyBytes) and replayed against the
backend without hop-by-hop headers. The backend's status, headers and body
are mirrored back. An oversized body yields 400 before the backend is
contacted; an unreachable backend yields 502.
*/
package signaling
