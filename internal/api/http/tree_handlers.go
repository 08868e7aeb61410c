package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
)

// CreateNodeRequest is the body of POST /tree/nodes
type CreateNodeRequest struct {
	Type       tree.Type `json:"type" binding:"required,oneof=file folder"`
	Name       string    `json:"name" binding:"required"`
	ParentPath string    `json:"parentPath"`
	Content    string    `json:"content"`
	Language   string    `json:"language"`
}

// UpdateNodeRequest is the body of PATCH /tree/nodes/:id
type UpdateNodeRequest struct {
	Content    *string `json:"content"`
	Language   *string `json:"language"`
	IsExpanded *bool   `json:"isExpanded"`
}

// RenameRequest is the body of POST /tree/nodes/:id/rename
type RenameRequest struct {
	Name string `json:"name" binding:"required"`
}

// TargetRequest names a destination folder; "" is the root
type TargetRequest struct {
	TargetPath string `json:"targetPath"`
}

// ExpandRequest sets expansion explicitly; without it the folder toggles
type ExpandRequest struct {
	Expanded *bool `json:"expanded"`
}

// SelectionRequest replaces the selection
type SelectionRequest struct {
	IDs []string `json:"ids"`
}

// SortRequest changes the sort preference
type SortRequest struct {
	SortBy    tree.SortKey   `json:"sortBy" binding:"required"`
	SortOrder tree.SortOrder `json:"sortOrder" binding:"required"`
}

// DragRequest starts a gesture
type DragRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
}

// GetTree returns the tree sorted by the stored preference, optionally
// filtered by a name query or a path glob and re-sorted by query parameters.
func (h *Handlers) GetTree(c *gin.Context) {
	var (
		nodes []*tree.Node
		err   error
	)
	switch {
	case c.Query("glob") != "":
		nodes, err = h.ws.GlobTree(c.Query("glob"))
		if err != nil {
			respondError(c, err)
			return
		}
	case c.Query("q") != "":
		nodes = h.ws.FilteredTree(c.Query("q"))
	default:
		nodes = h.ws.Tree()
	}

	key, order := h.ws.Sort()
	if s := c.Query("sort"); s != "" {
		key = tree.SortKey(s)
	}
	if o := c.Query("order"); o != "" {
		order = tree.SortOrder(o)
	}
	if !key.Valid() || !order.Valid() {
		badRequest(c, "invalid sort preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nodes":     tree.SortedView(nodes, key, order),
		"sortBy":    key,
		"sortOrder": order,
		"selection": h.ws.Selection(),
	})
}

// FlatTree lists every node depth-first
func (h *Handlers) FlatTree(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"nodes": h.ws.Flatten()})
}

// GetNode returns one node
func (h *Handlers) GetNode(c *gin.Context) {
	n, ok := h.ws.Node(c.Param("id"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": tree.ErrNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, n)
}

// CreateNode adds a file or folder
func (h *Handlers) CreateNode(c *gin.Context) {
	var req CreateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid node request: "+err.Error())
		return
	}

	n := tree.NewFolder(req.Name)
	if req.Type == tree.TypeFile {
		n = tree.NewFile(req.Name, req.Content, req.Language)
	}
	added, err := h.ws.AddNode(c.Request.Context(), n, req.ParentPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, added)
}

// UpdateNode patches content, language or expansion
func (h *Handlers) UpdateNode(c *gin.Context) {
	var req UpdateNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid patch: "+err.Error())
		return
	}
	n, err := h.ws.UpdateNode(c.Request.Context(), c.Param("id"), tree.Patch{
		Content:    req.Content,
		Language:   req.Language,
		IsExpanded: req.IsExpanded,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// DeleteNode removes a node and its subtree
func (h *Handlers) DeleteNode(c *gin.Context) {
	removed, err := h.ws.DeleteNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// RenameNode renames a node in place
func (h *Handlers) RenameNode(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name is required")
		return
	}
	n, err := h.ws.RenameNode(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// MoveNode moves a node into another folder
func (h *Handlers) MoveNode(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid move request")
		return
	}
	n, err := h.ws.MoveNode(c.Request.Context(), c.Param("id"), req.TargetPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// ValidateMove pre-flights a move. Rejections are a 200 with valid=false.
func (h *Handlers) ValidateMove(c *gin.Context) {
	nodeID := c.Query("id")
	if nodeID == "" {
		badRequest(c, "id is required")
		return
	}
	c.JSON(http.StatusOK, h.ws.ValidateMove(nodeID, c.Query("target")))
}

// ExpandNode sets or toggles a folder's expansion
func (h *Handlers) ExpandNode(c *gin.Context) {
	var req ExpandRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid expand request")
			return
		}
	}

	ctx, folderID := c.Request.Context(), c.Param("id")
	var (
		state bool
		err   error
	)
	if req.Expanded != nil {
		state = *req.Expanded
		err = h.ws.SetExpanded(ctx, folderID, state)
	} else {
		state, err = h.ws.ToggleExpanded(ctx, folderID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": folderID, "expanded": state})
}

// SetSelection replaces the selected node ids
func (h *Handlers) SetSelection(c *gin.Context) {
	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid selection")
		return
	}
	sel, err := h.ws.SetSelection(c.Request.Context(), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selection": sel})
}

// SetSort stores the sort preference
func (h *Handlers) SetSort(c *gin.Context) {
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "sortBy and sortOrder are required")
		return
	}
	if err := h.ws.SetSort(c.Request.Context(), req.SortBy, req.SortOrder); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sortBy": req.SortBy, "sortOrder": req.SortOrder})
}

// GetDrag reports the gesture in flight
func (h *Handlers) GetDrag(c *gin.Context) {
	d, ok := h.ws.Dragging()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"dragging": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dragging": true, "drag": d})
}

// BeginDrag starts dragging a node
func (h *Handlers) BeginDrag(c *gin.Context) {
	var req DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "nodeId is required")
		return
	}
	d, err := h.ws.BeginDrag(c.Request.Context(), req.NodeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// DragOver validates the hovered folder
func (h *Handlers) DragOver(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid drag target")
		return
	}
	c.JSON(http.StatusOK, h.ws.DragOver(req.TargetPath))
}

// Drop commits the gesture
func (h *Handlers) Drop(c *gin.Context) {
	var req TargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid drop target")
		return
	}
	n, err := h.ws.Drop(c.Request.Context(), req.TargetPath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// CancelDrag aborts the gesture
func (h *Handlers) CancelDrag(c *gin.Context) {
	if err := h.ws.CancelDrag(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
