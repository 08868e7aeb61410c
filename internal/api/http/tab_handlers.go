package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// OpenTabRequest is the body of POST /tabs
type OpenTabRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
}

// MoveTabRequest reorders tabs by index. Pointers keep index 0 distinguishable
// from a missing field.
type MoveTabRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// ContentRequest replaces a tab's buffer
type ContentRequest struct {
	Content    *string `json:"content"`
	Checkpoint bool    `json:"checkpoint"`
}

// HistoryRequest pushes an explicit prior state
type HistoryRequest struct {
	Content        string         `json:"content"`
	CursorPosition types.Position `json:"cursorPosition"`
}

// SelectionsRequest replaces a tab's selection ranges
type SelectionsRequest struct {
	Selections []types.Range `json:"selections"`
}

// ListTabs returns open tabs in display order
func (h *Handlers) ListTabs(c *gin.Context) {
	resp := gin.H{"tabs": h.ws.Tabs()}
	if active, ok := h.ws.ActiveTab(); ok {
		resp["activeTabId"] = active.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GetTab returns one tab
func (h *Handlers) GetTab(c *gin.Context) {
	t, ok := h.ws.Tab(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": tabs.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

// OpenTab opens a file node, or focuses the tab already showing it
func (h *Handlers) OpenTab(c *gin.Context) {
	var req OpenTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "nodeId is required")
		return
	}
	t, err := h.ws.OpenTab(c.Request.Context(), req.NodeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// CloseTab closes one tab
func (h *Handlers) CloseTab(c *gin.Context) {
	if err := h.ws.CloseTab(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CloseAllTabs closes every tab
func (h *Handlers) CloseAllTabs(c *gin.Context) {
	closed, err := h.ws.CloseAllTabs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": closed})
}

// OrphanedTabs lists tabs whose node was deleted
func (h *Handlers) OrphanedTabs(c *gin.Context) {
	orphans := h.ws.OrphanedTabs()
	if orphans == nil {
		orphans = []tabs.Tab{}
	}
	c.JSON(http.StatusOK, gin.H{"tabs": orphans})
}

// MoveTab reorders tabs
func (h *Handlers) MoveTab(c *gin.Context) {
	var req MoveTabRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.From == nil || req.To == nil {
		badRequest(c, "from and to are required")
		return
	}
	if err := h.ws.MoveTab(c.Request.Context(), *req.From, *req.To); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tabs": h.ws.Tabs()})
}

// tabAction adapts a single-tab workspace operation to a handler
func (h *Handlers) tabAction(fn func(context.Context, string) (tabs.Tab, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, t)
	}
}

func (h *Handlers) closeMany(fn func(context.Context, string) ([]string, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		closed, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"closed": closed})
	}
}

// UpdateTabContent replaces the buffer, optionally checkpointing the
// previous one first.
func (h *Handlers) UpdateTabContent(c *gin.Context) {
	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == nil {
		badRequest(c, "content is required")
		return
	}
	ctx, tabID := c.Request.Context(), c.Param("id")
	if req.Checkpoint {
		if err := h.ws.Checkpoint(ctx, tabID); err != nil {
			respondError(c, err)
			return
		}
	}
	t, err := h.ws.UpdateTabContent(ctx, tabID, *req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// SetTabCursor records the caret position
func (h *Handlers) SetTabCursor(c *gin.Context) {
	var pos types.Position
	if err := c.ShouldBindJSON(&pos); err != nil {
		badRequest(c, "invalid cursor position")
		return
	}
	t, err := h.ws.SetTabCursor(c.Request.Context(), c.Param("id"), pos)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// SetTabScroll records the viewport offset
func (h *Handlers) SetTabScroll(c *gin.Context) {
	var scroll types.Scroll
	if err := c.ShouldBindJSON(&scroll); err != nil {
		badRequest(c, "invalid scroll position")
		return
	}
	t, err := h.ws.SetTabScroll(c.Request.Context(), c.Param("id"), scroll)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// SetTabSelections replaces the selection ranges
func (h *Handlers) SetTabSelections(c *gin.Context) {
	var req SelectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid selections")
		return
	}
	t, err := h.ws.SetTabSelections(c.Request.Context(), c.Param("id"), req.Selections)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// Checkpoint snapshots the current buffer onto the undo stack
func (h *Handlers) Checkpoint(c *gin.Context) {
	if err := h.ws.Checkpoint(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PushHistory pushes an explicit prior state onto the undo stack
func (h *Handlers) PushHistory(c *gin.Context) {
	var req HistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid history entry")
		return
	}
	if err := h.ws.PushHistory(c.Request.Context(), c.Param("id"), req.Content, req.CursorPosition); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TabHistory returns the undo and redo stacks
func (h *Handlers) TabHistory(c *gin.Context) {
	snap, err := h.ws.TabHistory(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Undo steps back one checkpoint
func (h *Handlers) Undo(c *gin.Context) {
	h.step(c, h.ws.Undo)
}

// Redo reapplies the last undone checkpoint
func (h *Handlers) Redo(c *gin.Context) {
	h.step(c, h.ws.Redo)
}

func (h *Handlers) step(c *gin.Context, fn func(context.Context, string) (tabs.Tab, bool, error)) {
	t, applied, err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": t, "applied": applied})
}
