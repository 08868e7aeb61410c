package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webide/backend/internal/workspace"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	ws      *workspace.Workspace
	metrics *monitoring.Metrics
	logger  *zap.Logger
	started time.Time
}

// NewHandlers creates a new handler set. metrics may be nil.
func NewHandlers(ws *workspace.Workspace, metrics *monitoring.Metrics, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{ws: ws, metrics: metrics, logger: logger, started: time.Now()}
}

// Register mounts every workspace route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/snapshot", h.Snapshot)
	r.POST("/logs", h.StreamLogs)
	if h.metrics != nil {
		r.GET("/metrics/json", h.MetricsJSON)
	}

	t := r.Group("/tree")
	t.GET("", h.GetTree)
	t.GET("/flat", h.FlatTree)
	t.GET("/validate-move", h.ValidateMove)
	t.POST("/nodes", h.CreateNode)
	t.GET("/nodes/:id", h.GetNode)
	t.PATCH("/nodes/:id", h.UpdateNode)
	t.DELETE("/nodes/:id", h.DeleteNode)
	t.POST("/nodes/:id/rename", h.RenameNode)
	t.POST("/nodes/:id/move", h.MoveNode)
	t.POST("/nodes/:id/expand", h.ExpandNode)
	t.PUT("/selection", h.SetSelection)
	t.PUT("/sort", h.SetSort)
	t.GET("/drag", h.GetDrag)
	t.POST("/drag/begin", h.BeginDrag)
	t.POST("/drag/over", h.DragOver)
	t.POST("/drag/drop", h.Drop)
	t.POST("/drag/cancel", h.CancelDrag)

	tb := r.Group("/tabs")
	tb.GET("", h.ListTabs)
	tb.POST("", h.OpenTab)
	tb.DELETE("", h.CloseAllTabs)
	tb.GET("/orphaned", h.OrphanedTabs)
	tb.POST("/move", h.MoveTab)
	tb.GET("/:id", h.GetTab)
	tb.DELETE("/:id", h.CloseTab)
	tb.POST("/:id/activate", h.tabAction(h.ws.ActivateTab))
	tb.POST("/:id/save", h.tabAction(h.ws.SaveTab))
	tb.POST("/:id/commit", h.tabAction(h.ws.CommitTab))
	tb.POST("/:id/pin", h.tabAction(h.ws.PinTab))
	tb.POST("/:id/unpin", h.tabAction(h.ws.UnpinTab))
	tb.POST("/:id/duplicate", h.tabAction(h.ws.DuplicateTab))
	tb.POST("/:id/dirty", h.tabAction(h.ws.MarkTabDirty))
	tb.POST("/:id/close-others", h.closeMany(h.ws.CloseOtherTabs))
	tb.POST("/:id/close-right", h.closeMany(h.ws.CloseTabsToRight))
	tb.PUT("/:id/content", h.UpdateTabContent)
	tb.PUT("/:id/cursor", h.SetTabCursor)
	tb.PUT("/:id/scroll", h.SetTabScroll)
	tb.PUT("/:id/selections", h.SetTabSelections)
	tb.POST("/:id/checkpoint", h.Checkpoint)
	tb.POST("/:id/history", h.PushHistory)
	tb.GET("/:id/history", h.TabHistory)
	tb.POST("/:id/undo", h.Undo)
	tb.POST("/:id/redo", h.Redo)
}

// Root handles the service banner
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webide workspace",
		"version": Version,
	})
}

// Health reports workspace size and persistence activity
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"nodes":       len(h.ws.Flatten()),
		"tabs":        len(h.ws.Tabs()),
		"subscribers": h.ws.Subscribers(),
		"persistence": h.ws.PersistenceStats(),
		"uptime":      time.Since(h.started).Seconds(),
	})
}

// Snapshot returns the whole workspace in one read
func (h *Handlers) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.ws.Snapshot())
}

// MetricsJSON returns the metric summary used by dashboards
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":   time.Now(),
		"backend":     h.metrics.Snapshot(),
		"persistence": h.ws.PersistenceStats(),
	})
}
