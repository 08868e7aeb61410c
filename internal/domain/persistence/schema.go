package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/GriffinCanCode/webide/backend/internal/shared/types"
)

// Slot keys
const (
	TreeKey    = "workspace-tree"
	SessionKey = "workspace-session"
)

// CurrentVersion is the schema version written by the encoders.
//
// Version 0 is the unversioned layout: no version field, node type may be
// missing (inferred from the presence of children) and timestamps may be
// epoch milliseconds instead of RFC3339 strings.
const CurrentVersion = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	ErrCorruptBlob        = errors.New("corrupt persisted blob")
)

type treeBlob struct {
	Version           int          `json:"version"`
	Nodes             []nodeRecord `json:"nodes"`
	ExpandedFolderIDs []string     `json:"expandedFolderIds"`
	SortBy            string       `json:"sortBy,omitempty"`
	SortOrder         string       `json:"sortOrder,omitempty"`
}

type nodeRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         string       `json:"type,omitempty"`
	Path         string       `json:"path,omitempty"`
	Content      *string      `json:"content,omitempty"`
	Language     string       `json:"language,omitempty"`
	Size         *int64       `json:"size,omitempty"`
	LastModified stamp        `json:"lastModified"`
	IsExpanded   *bool        `json:"isExpanded,omitempty"`
	Children     []nodeRecord `json:"children,omitempty"`
}

type sessionBlob struct {
	Version int                      `json:"version"`
	Tabs    []tabRecord              `json:"tabs"`
	History map[string]historyRecord `json:"history"`
}

type tabRecord struct {
	ID             string         `json:"id"`
	FileID         string         `json:"fileId"`
	Path           string         `json:"path"`
	Name           string         `json:"name"`
	Content        string         `json:"content"`
	Language       string         `json:"language,omitempty"`
	IsDirty        bool           `json:"isDirty"`
	IsActive       bool           `json:"isActive"`
	IsPinned       bool           `json:"isPinned"`
	CursorPosition types.Position `json:"cursorPosition"`
	ScrollPosition types.Scroll   `json:"scrollPosition"`
	Selections     []types.Range  `json:"selections,omitempty"`
	OpenedAt       stamp          `json:"openedAt"`
}

type historyRecord struct {
	Undo []entryRecord `json:"undo"`
	Redo []entryRecord `json:"redo"`
}

type entryRecord struct {
	ID             string         `json:"id"`
	Timestamp      stamp          `json:"timestamp"`
	Content        string         `json:"content"`
	CursorPosition types.Position `json:"cursorPosition"`
}

// versionProbe reads just the version field so the decoder can pick a layout
type versionProbe struct {
	Version int `json:"version"`
}

// stamp is a timestamp that always encodes as an RFC3339 string and decodes
// from either an RFC3339 string or epoch milliseconds.
type stamp time.Time

func (s stamp) Time() time.Time { return time.Time(s) }

func (s stamp) MarshalJSON() ([]byte, error) {
	t := time.Time(s)
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(t.UTC().Format(time.RFC3339Nano))), nil
}

func (s *stamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte(`""`)):
		*s = stamp{}
		return nil
	case data[0] == '"':
		raw, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("%w: timestamp %s", ErrCorruptBlob, data)
		}
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return fmt.Errorf("%w: timestamp %q", ErrCorruptBlob, raw)
		}
		*s = stamp(t)
		return nil
	default:
		ms, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: timestamp %s", ErrCorruptBlob, data)
		}
		*s = stamp(time.UnixMilli(ms).UTC())
		return nil
	}
}
