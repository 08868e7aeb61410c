package tabs

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/GriffinCanCode/webide/backend/internal/domain/history"
	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

var (
	ErrNotFound        = errors.New("tab not found")
	ErrIndexOutOfRange = errors.New("tab index out of range")
	ErrInvalidDocument = errors.New("invalid document")
)

// Tab is one open editing session. FileID and Path are weak references into
// the tree: a tab outlives the node it was opened from.
type Tab struct {
	ID             string         `json:"id"`
	FileID         string         `json:"fileId"`
	Path           string         `json:"path"`
	Name           string         `json:"name"`
	Content        string         `json:"content"`
	Language       string         `json:"language"`
	IsDirty        bool           `json:"isDirty"`
	IsActive       bool           `json:"isActive"`
	IsPinned       bool           `json:"isPinned"`
	CursorPosition types.Position `json:"cursorPosition"`
	ScrollPosition types.Scroll   `json:"scrollPosition"`
	Selections     []types.Range  `json:"selections,omitempty"`
	OpenedAt       time.Time      `json:"openedAt"`
}

func (t *Tab) clone() Tab {
	c := *t
	c.Selections = slices.Clone(t.Selections)
	return c
}

// Document is what Open needs to know about a file node
type Document struct {
	FileID   string
	Path     string
	Name     string
	Content  string
	Language string
}

// HistorySnapshot is the serializable content of one tab's ledger
type HistorySnapshot struct {
	Undo []history.Entry `json:"undo"`
	Redo []history.Entry `json:"redo"`
}

// State is the persistable projection of the manager
type State struct {
	Tabs    []Tab
	History map[string]HistorySnapshot
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
