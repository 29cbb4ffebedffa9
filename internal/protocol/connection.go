// Package protocol binds a WebSocket connection to an arena: it enforces the
// packet-order preconditions in spec.md §4.8/§6.2, translates wire frames
// into game.Arena calls, and kicks (and bans) clients that violate the
// protocol. The per-connection read pump is the only place frames are
// decoded; everything it learns is handed to the arena via Arena.Submit so
// state mutation still happens solely on the arena's own tick goroutine
// (spec.md §5), in the same spirit as the teacher's WebSocketHub
// register/unregister channel handoff (internal/api/websocket.go).
package protocol

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"tankarena/internal/banstore"
	"tankarena/internal/game"
	"tankarena/internal/wire"

	"github.com/gorilla/websocket"
)

const (
	// sendQueueSize bounds the outbound backlog before a client is treated
	// as slow and disconnected rather than allowed to back up memory.
	sendQueueSize = 64

	// violationCloseCode is sent to clients kicked for a protocol violation.
	violationCloseCode = 4001
	// arenaClosedCode is sent to all Remote clients when their arena stops.
	arenaClosedCode = 4000
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// This is a public game server, not an admin surface gated to specific
	// origins (contrast internal/api/websocket.go's IsAllowedOrigin check) -
	// any origin may open a game connection.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades incoming HTTP requests into arena connections.
type Handler struct {
	Arenas map[string]*game.Arena
	Bans   banstore.Store

	limiter *connLimiter
}

// NewHandler constructs a Handler with connection-count limiting enabled.
func NewHandler(arenas map[string]*game.Arena, bans banstore.Store) *Handler {
	return &Handler{
		Arenas:  arenas,
		Bans:    bans,
		limiter: newConnLimiter(MaxConnectionsTotal, MaxConnectionsPerIP),
	}
}

// ActiveConnections reports the current connection count, for metrics
// sampling by internal/apiserver.
func (h *Handler) ActiveConnections() int {
	return h.limiter.count()
}

// ServeArena upgrades r into a WebSocket bound to the named arena. An
// unknown path is answered with 404 here, so callers (internal/apiserver's
// router) pass the path through unchecked.
func (h *Handler) ServeArena(w http.ResponseWriter, r *http.Request, path string) {
	arena, ok := h.Arenas[path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	ip := clientIP(r)
	if h.Bans.IsBanned(ip) {
		http.Error(w, "banned", http.StatusForbidden)
		return
	}
	if !h.limiter.allow(ip) {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	_ = h.Bans.Track(ip)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.limiter.release(ip)
		game.Warn("websocket upgrade failed: " + err.Error())
		return
	}

	c := newConnection(conn, arena, h.Bans, ip)
	defer h.limiter.release(ip)
	go c.writePump()
	c.readPump()
}

// connection owns one client socket end-to-end: framing, the init/respawn
// precondition checks, and teardown.
type connection struct {
	conn  *websocket.Conn
	arena *game.Arena
	bans  banstore.Store
	ip    string

	send chan []byte

	mu    sync.Mutex
	tank  *game.Tank
	joined bool
	closed bool
}

func newConnection(conn *websocket.Conn, arena *game.Arena, bans banstore.Store, ip string) *connection {
	return &connection{
		conn:  conn,
		arena: arena,
		bans:  bans,
		ip:    ip,
		send:  make(chan []byte, sendQueueSize),
	}
}

// Send implements game.Client. Non-blocking: a full queue means the client
// is too slow to keep up, so it is disconnected rather than allowed to
// build unbounded backlog.
func (c *connection) Send(data []byte) error {
	select {
	case c.send <- data:
		return nil
	default:
		c.kick(violationCloseCode, "slow consumer")
		return nil
	}
}

// Close implements game.Client.
func (c *connection) Close(code int, reason string) error {
	c.kick(code, reason)
	return nil
}

func (c *connection) writePump() {
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
			return
		}
	}
}

func (c *connection) readPump() {
	defer c.teardown()

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.BinaryMessage || len(data) == 0 {
			c.violate("non-binary or empty frame")
			return
		}
		if !c.dispatch(data) {
			return
		}
	}
}

// dispatch decodes one frame and applies it, returning false if the
// connection should be torn down (either a clean Respawn/Input path
// completed and the loop should continue - true - or a violation occurred
// and the caller must stop reading - false).
func (c *connection) dispatch(frame []byte) bool {
	tag := frame[0]

	c.mu.Lock()
	joined := c.joined
	c.mu.Unlock()

	if !joined {
		if tag != wire.TagInboundInit {
			c.violate("first frame was not InboundInit")
			return false
		}
		name, err := wire.DecodeInboundInit(frame)
		if err != nil {
			c.violate("malformed InboundInit: " + err.Error())
			return false
		}
		c.mu.Lock()
		c.tank = c.arena.Join(name, c)
		c.joined = true
		c.mu.Unlock()
		return true
	}

	switch tag {
	case wire.TagInboundInit:
		c.violate("repeated InboundInit")
		return false

	case wire.TagInput:
		bits, x, y, err := wire.DecodeInput(frame)
		if err != nil {
			c.violate("malformed Input: " + err.Error())
			return false
		}
		t := c.tankRef()
		c.arena.Submit(func(a *game.Arena) {
			if t.State == game.TankAlive {
				a.HandleInput(t, bits, x, y)
			} else {
				game.Warn("dropped Input from non-Alive tank " + t.Name)
			}
		})
		return true

	case wire.TagChat:
		content, err := wire.DecodeChat(frame)
		if err != nil {
			c.violate("malformed Chat: " + err.Error())
			return false
		}
		t := c.tankRef()
		c.arena.Submit(func(a *game.Arena) {
			if t.State == game.TankAlive {
				a.HandleChat(t, content)
			} else {
				game.Warn("dropped Chat from non-Alive tank " + t.Name)
			}
		})
		return true

	case wire.TagRespawn:
		if err := wire.DecodeRespawn(frame); err != nil {
			c.violate("malformed Respawn: " + err.Error())
			return false
		}
		t := c.tankRef()
		c.arena.Submit(func(a *game.Arena) {
			if t.State == game.TankDead {
				a.HandleRespawn(t)
			}
		})
		return true

	default:
		c.violate("unknown tag")
		return false
	}
}

func (c *connection) tankRef() *game.Tank {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tank
}

// violate kicks and bans a connection that broke protocol (spec.md §7).
func (c *connection) violate(reason string) {
	game.Warn("protocol violation from " + c.ip + ": " + reason)
	_ = c.bans.Ban(c.ip)
	c.kick(violationCloseCode, "protocol violation")
}

func (c *connection) kick(code int, reason string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	_ = c.conn.Close()
}

func (c *connection) teardown() {
	c.mu.Lock()
	tank, joined := c.tank, c.joined
	closed := c.closed
	c.closed = true
	c.mu.Unlock()

	if !closed {
		_ = c.conn.Close()
	}
	close(c.send)

	if joined {
		c.arena.Submit(func(a *game.Arena) { a.Disconnect(tank) })
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			xff = xff[:idx]
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
