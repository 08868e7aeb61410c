package workspace

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webide/backend/internal/domain/persistence"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tabs"
	"github.com/GriffinCanCode/webide/backend/internal/domain/tree"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webide/backend/internal/infrastructure/storage"
)

var ErrClosed = errors.New("workspace closed")

// Workspace is the service object behind the editor: it owns the node tree
// and the tab manager, serializes every mutation behind one writer lock,
// persists the affected slots and publishes an Event once the mutation is
// applied.
type Workspace struct {
	mu     sync.Mutex // single writer
	closed bool       // Protected by mu

	tree    *tree.Store
	tabs    *tabs.Manager
	adapter *persistence.Adapter
	events  *bus
	metrics *monitoring.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

type options struct {
	logger          *zap.Logger
	metrics         *monitoring.Metrics
	historyCapacity int
	now             func() time.Time
	newNodeID       func() string
	newTabID        func() string
}

// Option configures a Workspace
type Option func(*options)

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics adds metrics tracking
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = metrics }
}

// WithHistoryCapacity bounds every tab's undo and redo stacks
func WithHistoryCapacity(n int) Option {
	return func(o *options) { o.historyCapacity = n }
}

// WithClock overrides the time source of the tree, the tabs and events
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDFuncs overrides node and tab id generation
func WithIDFuncs(node, tab func() string) Option {
	return func(o *options) {
		o.newNodeID = node
		o.newTabID = tab
	}
}

// New creates an empty workspace persisting into store. Call Init to load
// the previous session.
func New(store storage.SlotStore, opts ...Option) *Workspace {
	o := options{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	treeOpts := []tree.Option{tree.WithClock(o.now), tree.WithLogger(o.logger.Named("tree"))}
	if o.newNodeID != nil {
		treeOpts = append(treeOpts, tree.WithIDFunc(o.newNodeID))
	}
	tabOpts := []tabs.Option{tabs.WithClock(o.now), tabs.WithLogger(o.logger.Named("tabs"))}
	if o.newTabID != nil {
		tabOpts = append(tabOpts, tabs.WithIDFunc(o.newTabID))
	}
	if o.historyCapacity > 0 {
		tabOpts = append(tabOpts, tabs.WithHistoryCapacity(o.historyCapacity))
	}

	var pm persistence.Metrics
	if o.metrics != nil {
		pm = o.metrics
	}

	return &Workspace{
		tree:    tree.NewStore(treeOpts...),
		tabs:    tabs.NewManager(tabOpts...),
		adapter: persistence.NewAdapter(store, o.logger.Named("persistence"), pm),
		events:  newBus(o.logger),
		metrics: o.metrics,
		logger:  o.logger,
		now:     o.now,
	}
}

// Init restores the persisted tree and session. Unreadable slots leave the
// corresponding part empty; Init itself only fails on a closed workspace.
func (w *Workspace) Init(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	state := w.adapter.Load(ctx)
	if state.TreeFound {
		if err := w.tree.Restore(state.Tree); err != nil {
			w.logger.Warn("Persisted tree rejected, starting empty", zap.Error(err))
			w.tree.Reset()
		}
	}
	if state.SessionFound {
		w.tabs.Restore(state.Session)
	}

	w.refreshGauges()
	w.events.publish(Event{Type: EventRestore, Op: "init", At: w.now()})
	w.logger.Info("Workspace initialized",
		zap.Int("nodes", w.tree.Len()),
		zap.Int("tabs", w.tabs.Len()))
	return nil
}

// Close ends every subscription. Further mutations fail with ErrClosed. The
// slot store is owned by the caller and stays open.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	w.events.close()
	w.logger.Info("Workspace closed")
	return nil
}

// Subscribe returns a channel receiving every future Event and a function
// that ends the subscription. The channel is closed on cancel or Close.
func (w *Workspace) Subscribe(buffer int) (<-chan Event, func()) {
	return w.events.subscribe(buffer)
}

// Subscribers returns the number of live subscriptions
func (w *Workspace) Subscribers() int {
	return w.events.count()
}

// PersistenceStats reports slot write activity
func (w *Workspace) PersistenceStats() persistence.Stats {
	return w.adapter.Stats()
}

// slot is a set of persistence slots touched by a mutation
type slot uint8

const (
	slotNone    slot = 0
	slotTree    slot = 1 << 0
	slotSession slot = 1 << 1
)

// change describes what an applied mutation touched
type change struct {
	event   EventType
	persist slot
	ids     []string
}

// mutate runs fn under the writer lock and, if it succeeds, persists the
// touched slots, updates metrics and publishes the event. A change without an
// event type is a no-op and publishes nothing. Slots are written
// while the lock is held so they land in mutation order.
func mutate[T any](ctx context.Context, w *Workspace, op string, fn func() (T, change, error)) (T, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var zero T
	if w.closed {
		return zero, ErrClosed
	}

	timer := monitoring.NewTimer(w.metrics, op)
	v, ch, err := fn()
	if err != nil {
		timer.Stop("error")
		w.logger.Debug("Workspace operation rejected", zap.String("op", op), zap.Error(err))
		return zero, err
	}

	if ch.persist&slotTree != 0 {
		w.adapter.SaveTree(ctx, w.tree.State())
	}
	if ch.persist&slotSession != 0 {
		w.adapter.SaveSession(ctx, w.tabs.Snapshot())
	}
	if w.metrics != nil {
		w.metrics.RecordMutation(op)
	}
	w.refreshGauges()
	if ch.event != "" {
		w.events.publish(Event{Type: ch.event, Op: op, IDs: ch.ids, At: w.now()})
	}
	timer.Stop("success")
	return v, nil
}

func (w *Workspace) refreshGauges() {
	if w.metrics != nil {
		w.metrics.SetWorkspaceSize(w.tree.Len(), w.tabs.Len())
	}
}

// Snapshot is a consistent read of the whole workspace
type Snapshot struct {
	Nodes             []*tree.Node   `json:"nodes"`
	ExpandedFolderIDs []string       `json:"expandedFolderIds"`
	Selection         []string       `json:"selection"`
	SortBy            tree.SortKey   `json:"sortBy"`
	SortOrder         tree.SortOrder `json:"sortOrder"`
	Tabs              []tabs.Tab     `json:"tabs"`
	Orphaned          []string       `json:"orphaned"`
}

// Snapshot returns the sorted tree together with the tab list
func (w *Workspace) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	key, order := w.tree.Sort()
	return Snapshot{
		Nodes:             w.tree.SortedView(),
		ExpandedFolderIDs: w.tree.ExpandedFolderIDs(),
		Selection:         w.tree.Selection(),
		SortBy:            key,
		SortOrder:         order,
		Tabs:              w.tabs.List(),
		Orphaned:          w.orphanedLocked(),
	}
}
