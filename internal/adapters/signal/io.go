package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/devtogether/DevTogether/internal/core"
	"github.com/devtogether/DevTogether/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.Cfg.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
			addDelivered(1)
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, cid core.ConnectionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump closing")
		// A network drop is a leave: same teardown, exactly once.
		ctl.Orch.Registry.Cancel(cid)
		ctl.Orch.Detach(cid)
		ctl.typingLimiter.Forget(cid)
		ctl.execLimiter.Forget(cid)
		decConnections()
		setRooms(ctl.Orch.Rooms.Count())
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.Cfg.ReadLimit)

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("cid", string(cid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Error().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleEvent(cid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleEvent(cid core.ConnectionID, c *WsSignalConn, data []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("cid", string(cid)).Msg("bad json ignored")
		return
	}
	incEvent(env.Event)

	switch env.Event {
	case protocol.EventJoin:
		ctl.handleJoin(cid, c, data)
	case protocol.EventLeaveRoom:
		ctl.handleLeaveRoom(cid)
	case protocol.EventCodeChange:
		ctl.handleCodeChange(cid, c, data)
	case protocol.EventLanguageChange:
		ctl.handleLanguageChange(cid, c, data)
	case protocol.EventTyping:
		ctl.handleTyping(cid, c, data)
	case protocol.EventCompileCode:
		ctl.handleCompileCode(cid, c, data)
	default:
		log.Warn().Str("module", "signal").Str("event", env.Event).Msg("unknown event")
	}
}

func (ctl *SignalWSController) sendFrame(c *WsSignalConn, b []byte) {
	_ = c.TrySend(core.Frame(b))
}
