package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-switcher/internal/delta"
	"github.com/nerrad567/gray-logic-switcher/internal/mapping"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
	"github.com/nerrad567/gray-logic-switcher/internal/subscription"
)

// Owner is the layer above the core. It rechecks boolean indicators and
// recomputes derived outputs when asked.
type Owner interface {
	// RecheckIndicators re-evaluates the given indicators; nil means all.
	RecheckIndicators(ids []string)

	// RefreshDerivedOutputs recomputes every derived output.
	RefreshDerivedOutputs()
}

// OutputObserver is implemented by owners that want the derived outputs
// changed during a batch.
type OutputObserver interface {
	OutputsChanged(changed map[string]state.Value)
}

// Transport sends one outbound envelope to the unit.
type Transport interface {
	Send(ctx context.Context, payload []byte) error
}

// Journal records applied changes. It must not block.
type Journal interface {
	RecordChange(c delta.Change)
}

// Info describes a running session.
type Info struct {
	ID          string            `json:"id"`
	Family      string            `json:"family"`
	SocketIDs   map[string]string `json:"socket_ids"`
	LatchWindow time.Duration     `json:"latch_window"`
	Pending     bool              `json:"latch_pending"`
	Outputs     int               `json:"outputs"`
}

// Captured is the latched hardware change in canonical form.
type Captured struct {
	Path  string      `json:"path"`
	Value state.Value `json:"value"`
}

// Session owns the Store and every component around it, and serialises all
// access through a single loop.
//
// Inbound payloads (Deliver) and calls (Do) are processed one at a time by
// Run. Payloads queued together are applied as one batch: the owner is told
// once per batch with the merged result.
//
// Thread Safety: Deliver, Do and the command methods are safe for concurrent
// use. Everything else runs on the loop.
type Session struct {
	id         string
	store      *state.Store
	outputs    *subscription.MemoryOutputs
	dispatcher *subscription.Dispatcher
	pipeline   *delta.Pipeline

	transport Transport
	owner     Owner
	opts      options
	family    mapping.Family

	inbox chan []byte
	calls chan func()
	done  chan struct{}
}

// New creates a Session. Run must be called to start processing.
func New(transport Transport, owner Owner, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		id:        uuid.NewString(),
		store:     state.NewStore(),
		outputs:   subscription.NewMemoryOutputs(),
		transport: transport,
		owner:     owner,
		opts:      o,
		inbox:     make(chan []byte, o.inboxSize),
		calls:     make(chan func()),
		done:      make(chan struct{}),
	}

	s.dispatcher = subscription.NewDispatcher(s.store, s.outputs)
	s.dispatcher.SetLogger(o.logger)

	pipelineOpts := []delta.Option{
		delta.WithLogger(o.logger),
		delta.WithClock(o.clock),
		delta.WithLatchWindow(o.latchWindow),
		delta.WithSnapshotHook(s.onSnapshot),
	}
	if o.metrics != nil {
		s.dispatcher.SetMetrics(o.metrics)
		pipelineOpts = append(pipelineOpts, delta.WithMetrics(o.metrics))
	}
	if o.journal != nil {
		pipelineOpts = append(pipelineOpts, delta.WithChangeHook(o.journal.RecordChange))
	}
	s.pipeline = delta.NewPipeline(s.store, s.dispatcher, pipelineOpts...)

	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Store returns the state tree. Only touch it from the loop (inside Do).
func (s *Session) Store() *state.Store {
	return s.store
}

// Outputs returns the derived outputs. Only touch them from the loop.
func (s *Session) Outputs() *subscription.MemoryOutputs {
	return s.outputs
}

// Deliver queues one inbound payload. It blocks while the inbox is full and
// drops the payload once the session has stopped. It is the transport's
// inbound handler.
func (s *Session) Deliver(payload []byte) {
	select {
	case s.inbox <- payload:
	case <-s.done:
		s.opts.logger.Debug("session stopped, dropping payload", "bytes", len(payload))
	}
}

// Run processes inbound payloads and calls until ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.opts.logger.Info("session started", "session_id", s.id)

	batch := make([][]byte, 0, s.opts.batchSize)
	for {
		select {
		case <-ctx.Done():
			s.opts.logger.Info("session stopped", "session_id", s.id)
			return ctx.Err()

		case payload := <-s.inbox:
			batch = append(batch[:0], payload)
		drain:
			for len(batch) < s.opts.batchSize {
				select {
				case next := <-s.inbox:
					batch = append(batch, next)
				default:
					break drain
				}
			}
			s.ProcessBatch(batch)

		case fn := <-s.calls:
			fn()
		}
	}
}

// Do runs fn on the session loop and waits for it to finish.
func (s *Session) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	call := func() {
		defer func() {
			if r := recover(); r != nil {
				result <- fmt.Errorf("session call panicked: %v", r)
			}
		}()
		result <- fn()
	}

	select {
	case s.calls <- call:
	case <-s.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ProcessBatch applies payloads in order and notifies the owner once with
// the merged result. It must run on the loop.
func (s *Session) ProcessBatch(payloads [][]byte) subscription.Result {
	var merged subscription.Result
	for _, payload := range payloads {
		merged = merged.Merge(s.pipeline.ApplyPayload(payload))
	}
	if s.opts.metrics != nil {
		s.opts.metrics.ObserveBatch(len(payloads))
	}
	s.notify(merged)
	return merged
}

// notify hands a result to the owner: at most one refresh, then one
// recheck, then the outputs that changed.
func (s *Session) notify(res subscription.Result) {
	if s.owner != nil {
		if res.Recompute {
			s.owner.RefreshDerivedOutputs()
		}
		switch {
		case res.All:
			s.owner.RecheckIndicators(nil)
		case len(res.Indicators) > 0:
			s.owner.RecheckIndicators(res.Indicators)
		}
	}

	changed := s.outputs.Drain()
	if len(changed) == 0 {
		return
	}
	if observer, ok := s.owner.(OutputObserver); ok {
		observer.OutputsChanged(changed)
	}
}

// onSnapshot identifies the family when the hardware snapshot arrives,
// before the sweep runs.
func (s *Session) onSnapshot(ch state.Channel, _ state.Value) {
	if ch != state.ChannelHardware {
		return
	}

	f := s.opts.family
	if f == "" {
		model := s.store.ReadRaw(state.Split(mapping.ModelPath)).Text()
		identified, err := mapping.Identify(model)
		if err != nil {
			s.opts.logger.Warn("hardware family not identified", "model", model, "error", err)
			return
		}
		f = identified
	}
	if err := s.SelectFamily(f); err != nil {
		s.opts.logger.Error("selecting hardware family failed", "family", string(f), "error", err)
	}
}

// SelectFamily swaps in the rule table and subscription registry for f. It
// must run on the loop.
func (s *Session) SelectFamily(f mapping.Family) error {
	if f == s.family {
		return nil
	}
	table, err := mapping.TableFor(f)
	if err != nil {
		return err
	}
	registry, err := subscription.RegistryFor(f)
	if err != nil {
		return err
	}
	table.SetLogger(s.opts.logger)

	s.store.SetTranslator(table)
	s.dispatcher.SetRegistry(registry)
	s.family = f

	if s.opts.metrics != nil {
		s.opts.metrics.SetFamily(string(f))
	}
	s.opts.logger.Info("hardware family selected",
		"family", string(f),
		"rules", table.Len(),
		"subscriptions", registry.Len(),
	)
	return nil
}

// Family returns the selected family, or "" before identification.
func (s *Session) Family() mapping.Family {
	return s.family
}

// Info describes the session. It must run on the loop.
func (s *Session) Info() Info {
	sockets := make(map[string]string, len(state.Channels))
	for _, ch := range state.Channels {
		if id := s.pipeline.SessionID(ch); id != "" {
			sockets[string(ch)] = id
		}
	}
	latch := s.pipeline.Latch()
	return Info{
		ID:          s.id,
		Family:      string(s.family),
		SocketIDs:   sockets,
		LatchWindow: latch.Window(),
		Pending:     latch.Pending(),
		Outputs:     len(s.outputs.Names()),
	}
}
