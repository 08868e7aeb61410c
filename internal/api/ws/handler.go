package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webide/backend/internal/workspace"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Message types exchanged on the stream
const (
	TypeSnapshot = "snapshot"
	TypeEvent    = "event"
	TypePing     = "ping"
	TypePong     = "pong"
	TypeError    = "error"
)

// Inbound is a client message
type Inbound struct {
	Type string `json:"type"`
}

// Outbound is a server message. Exactly one payload field is set, matching Type.
type Outbound struct {
	Type     string              `json:"type"`
	Snapshot *workspace.Snapshot `json:"snapshot,omitempty"`
	Event    *workspace.Event    `json:"event,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// Handler streams workspace events over WebSocket connections
type Handler struct {
	ws       *workspace.Workspace
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
	buffer   int
}

// NewHandler creates a new WebSocket handler. metrics may be nil.
func NewHandler(ws *workspace.Workspace, metrics *monitoring.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ws:      ws,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		buffer: workspace.DefaultSubscriberBuffer,
	}
}

// conn serializes writes; gorilla allows one concurrent writer
type conn struct {
	*websocket.Conn
	mu      sync.Mutex
	metrics *monitoring.Metrics
}

func (c *conn) send(msg Outbound) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.WriteJSON(msg); err != nil {
		return err
	}
	if c.metrics != nil {
		c.metrics.RecordWSMessage("out", msg.Type)
	}
	return nil
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// HandleConnection upgrades the request, sends a snapshot and then forwards
// every workspace event until either side goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	cn := &conn{Conn: raw, metrics: h.metrics}
	defer cn.Close()

	if h.metrics != nil {
		h.metrics.IncWSConnections()
		defer h.metrics.DecWSConnections()
	}

	// subscribe before the snapshot so no event between the two is lost
	events, cancel := h.ws.Subscribe(h.buffer)
	defer cancel()

	snap := h.ws.Snapshot()
	if err := cn.send(Outbound{Type: TypeSnapshot, Snapshot: &snap}); err != nil {
		return
	}

	done := make(chan struct{})
	go h.writeLoop(cn, events, done)
	h.readLoop(cn)
	close(done)
}

func (h *Handler) writeLoop(cn *conn, events <-chan workspace.Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				// workspace closed
				_ = cn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "workspace closed"),
					time.Now().Add(writeWait))
				_ = cn.Close()
				return
			}
			if err := cn.send(Outbound{Type: TypeEvent, Event: &e}); err != nil {
				_ = cn.Close()
				return
			}
		case <-ticker.C:
			if err := cn.ping(); err != nil {
				_ = cn.Close()
				return
			}
		}
	}
}

func (h *Handler) readLoop(cn *conn) {
	_ = cn.SetReadDeadline(time.Now().Add(pongWait))
	cn.SetPongHandler(func(string) error {
		return cn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Inbound
		if err := cn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		_ = cn.SetReadDeadline(time.Now().Add(pongWait))
		if h.metrics != nil {
			h.metrics.RecordWSMessage("in", msg.Type)
		}

		var err error
		switch msg.Type {
		case TypePing:
			err = cn.send(Outbound{Type: TypePong})
		case TypeSnapshot:
			snap := h.ws.Snapshot()
			err = cn.send(Outbound{Type: TypeSnapshot, Snapshot: &snap})
		default:
			err = cn.send(Outbound{Type: TypeError, Message: "unknown message type"})
		}
		if err != nil {
			return
		}
	}
}
