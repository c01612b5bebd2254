package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ban2lab/longanicore-gateway/internal/gateway"
	"github.com/ban2lab/longanicore-gateway/internal/store"
)

// maxMessageBytes bounds a single inbound envelope.
const maxMessageBytes = 64 * 1024

// ChannelHandler upgrades embedding sites to the WebSocket message
// channel and feeds their envelopes through the gateway pipeline.
//
// Connection attempts are throttled per client IP before the upgrade;
// per-origin request limiting happens inside the pipeline itself.
type ChannelHandler struct {
	gw *gateway.Gateway

	connPerSecond float64
	connBurst     int
	mu            sync.Mutex
	connLimiters  map[string]*rate.Limiter
}

// NewChannelHandler creates the channel endpoint handler.
func NewChannelHandler(gw *gateway.Gateway, connPerSecond float64, connBurst int) *ChannelHandler {
	return &ChannelHandler{
		gw:            gw,
		connPerSecond: connPerSecond,
		connBurst:     connBurst,
		connLimiters:  make(map[string]*rate.Limiter),
	}
}

// Serve handles GET /api/v1/channel.
//
// Any origin may connect; authentication is per message inside the
// pipeline, and the gateway's silent-drop semantics depend on unknown
// callers being able to reach the channel at all.
func (h *ChannelHandler) Serve(c *gin.Context) {
	if !h.allowConnection(c.Request) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logrus.Warnf("WebSocket accept failed: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageBytes)

	// The browser-reported Origin header is the trusted caller
	// identity for auth and rate limiting. Payload fields never
	// override it.
	origin := store.NormalizeOrigin(c.Request.Header.Get("Origin"))

	h.pump(c.Request.Context(), origin, conn)
}

// pump reads envelopes until the peer disconnects. Messages are
// handled sequentially so each request's pipeline runs to completion
// before the next message on this connection observes shared state.
func (h *ChannelHandler) pump(ctx context.Context, origin string, conn *websocket.Conn) {
	defer conn.Close(websocket.StatusNormalClosure, "")

	sink := &wsSink{ctx: ctx, conn: conn}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var msg gateway.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// Unparseable frames are indistinguishable from unrelated
			// channel traffic: ignore without responding.
			continue
		}

		h.gw.Handle(ctx, origin, msg, sink)
	}
}

// allowConnection rate limits upgrade attempts per client IP.
func (h *ChannelHandler) allowConnection(r *http.Request) bool {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}

	h.mu.Lock()
	limiter, ok := h.connLimiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.connPerSecond), h.connBurst)
		h.connLimiters[ip] = limiter
	}
	h.mu.Unlock()

	return limiter.Allow()
}

// wsSink serializes gateway responses onto one WebSocket connection.
// Session events and correlated responses share the connection, so
// writes are mutex-guarded.
type wsSink struct {
	ctx  context.Context
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSink) Send(resp gateway.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(s.ctx, websocket.MessageText, data)
}
