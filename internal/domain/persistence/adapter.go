package persistence

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/storage"
)

// Metrics receives persistence outcomes
type Metrics interface {
	RecordPersistWrite(slot, status string)
	RecordLoadFallback(slot, reason string)
}

// Fallback reasons reported by Load
const (
	ReasonMissing     = "missing"
	ReasonCorrupt     = "corrupt"
	ReasonUnsupported = "unsupported_version"
	ReasonUnavailable = "unavailable"
)

// State is everything Load recovered. A zero field means the slot fell back
// to its default.
type State struct {
	Tree         tree.State
	Session      tabs.State
	TreeFound    bool
	SessionFound bool
}

// Stats reports when slots were last touched
type Stats struct {
	LastSaved  *time.Time `json:"last_saved,omitempty"`
	LastLoaded *time.Time `json:"last_loaded,omitempty"`
	Failures   uint64     `json:"failures"`
}

// Adapter reads and writes the two workspace slots. It never lets a storage
// or codec failure escape: reads fall back to defaults and failed writes are
// logged and counted.
type Adapter struct {
	store   storage.SlotStore
	logger  *zap.Logger
	metrics Metrics

	mu    sync.Mutex
	stats Stats
}

// NewAdapter creates an adapter over store. logger and metrics may be nil.
func NewAdapter(store storage.SlotStore, logger *zap.Logger, metrics Metrics) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: store, logger: logger, metrics: metrics}
}

// Load reads both slots
func (a *Adapter) Load(ctx context.Context) State {
	var s State

	if data, ok := a.read(ctx, TreeKey); ok {
		t, err := DecodeTree(data)
		if err != nil {
			a.fallback(TreeKey, err)
		} else {
			s.Tree, s.TreeFound = t, true
		}
	}
	if data, ok := a.read(ctx, SessionKey); ok {
		sess, err := DecodeSession(data)
		if err != nil {
			a.fallback(SessionKey, err)
		} else {
			s.Session, s.SessionFound = sess, true
		}
	}

	now := time.Now()
	a.mu.Lock()
	a.stats.LastLoaded = &now
	a.mu.Unlock()

	a.logger.Info("Workspace loaded",
		zap.Bool("tree_found", s.TreeFound),
		zap.Bool("session_found", s.SessionFound),
		zap.Int("root_nodes", len(s.Tree.Nodes)),
		zap.Int("tabs", len(s.Session.Tabs)))
	return s
}

// SaveTree writes the tree slot
func (a *Adapter) SaveTree(ctx context.Context, state tree.State) {
	data, err := EncodeTree(state)
	a.write(ctx, TreeKey, data, err)
}

// SaveSession writes the session slot
func (a *Adapter) SaveSession(ctx context.Context, state tabs.State) {
	data, err := EncodeSession(state)
	a.write(ctx, SessionKey, data, err)
}

// Clear deletes both slots
func (a *Adapter) Clear(ctx context.Context) error {
	return errors.Join(
		a.store.Delete(ctx, TreeKey),
		a.store.Delete(ctx, SessionKey),
	)
}

// Stats returns a copy of the adapter's counters
func (a *Adapter) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Adapter) read(ctx context.Context, key string) ([]byte, bool) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		a.fallback(key, err)
		return nil, false
	}
	return data, true
}

func (a *Adapter) fallback(key string, err error) {
	reason := ReasonUnavailable
	switch {
	case errors.Is(err, storage.ErrSlotNotFound):
		// first run; nothing to warn about
		a.recordFallback(key, ReasonMissing)
		a.logger.Debug("Slot missing, using default", zap.String("slot", key))
		return
	case errors.Is(err, ErrUnsupportedVersion):
		reason = ReasonUnsupported
	case errors.Is(err, ErrCorruptBlob):
		reason = ReasonCorrupt
	}
	a.recordFallback(key, reason)
	a.logger.Warn("Discarding persisted slot",
		zap.String("slot", key),
		zap.String("reason", reason),
		zap.Error(err))
}

func (a *Adapter) recordFallback(key, reason string) {
	if a.metrics != nil {
		a.metrics.RecordLoadFallback(key, reason)
	}
}

func (a *Adapter) write(ctx context.Context, key string, data []byte, encodeErr error) {
	err := encodeErr
	if err == nil {
		err = a.store.Put(ctx, key, data)
	}

	status := "success"
	if err != nil {
		status = "error"
		a.logger.Error("Failed to persist slot", zap.String("slot", key), zap.Error(err))
	}
	if a.metrics != nil {
		a.metrics.RecordPersistWrite(key, status)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.stats.Failures++
		return
	}
	now := time.Now()
	a.stats.LastSaved = &now
}
