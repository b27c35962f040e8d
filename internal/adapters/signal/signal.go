package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/app/orch"
	"github.com/devtogether/DevTogether/internal/config"
	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

// SignalWSController binds websocket connections to the orchestrator. One
// controller serves all connections; each connection gets its own uuid, its
// own pumps and at most one room membership at a time.
type SignalWSController struct {
	Orch *orch.Orchestrator
	Cfg  *config.Config

	typingLimiter *EventRateLimiter
	execLimiter   *EventRateLimiter
}

func NewSignalWSController(o *orch.Orchestrator, cfg *config.Config) *SignalWSController {
	return &SignalWSController{
		Orch:          o,
		Cfg:           cfg,
		typingLimiter: NewEventRateLimiter(30, time.Second),
		execLimiter:   NewEventRateLimiter(5, 10*time.Second),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and registers the connection. The
// client token cookie identifies the browser in logs; the connection itself
// gets a fresh uuid, so two tabs are two distinct members.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	cid := core.ConnectionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("client", c.GetString("client_token")).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.Cfg.SendBuffer),
	}

	sess := core.NewMemberSession(domain.NewMember(), conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(cid, sess, cancel)
	incConnections()

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn)
}
