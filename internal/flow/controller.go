// Package flow drives the client: which screen is showing, whether a symptom
// check is running, and what the user can do from each screen.
//
// CONCURRENCY MODEL:
// A Controller has one coordinating goroutine (Run). Every change to the
// presentation state (screen, loading flag, result text) and every history
// write made on behalf of a submission runs as an operation on that
// goroutine, one at a time:
//
//	caller ──do(op)──▶ ops channel ──▶ Run loop ──▶ op()
//	diagnosis goroutine ──do(apply)──┘
//
// The only slow call, the diagnosis request, runs on its own goroutine and
// hands its result back through the same channel. Account calls block the
// caller's goroutine and then apply their outcome through the loop.
//
// The session is watched through session.Subscribe: whenever it changes,
// the loop re-applies navigation.Resolve to the current screen.
package flow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sakif/symvora/internal/account"
	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/history"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/session"
)

// AnalyzingText is shown while a diagnosis request is in flight.
// It is never written to history.
const AnalyzingText = "Analyzing symptoms..."

var (
	// ErrBusy is returned by Submit while another submission is running.
	ErrBusy = errors.New("flow: a symptom check is already running")

	// ErrStopped is returned once Run has exited.
	ErrStopped = errors.New("flow: controller stopped")
)

// State is a copy of what the client shows.
type State struct {
	Screen  navigation.Screen
	Loading bool
	Result  string
}

// Deps are the collaborators a Controller needs.
type Deps struct {
	Session   *session.State
	History   *history.Store
	Accounts  account.Service
	Diagnoser diagnosis.Diagnoser
	Logger    *slog.Logger
}

// Controller is the screen-flow state machine. Create it with New and
// start it with Run.
type Controller struct {
	session  *session.State
	history  *history.Store
	accounts account.Service
	diag     diagnosis.Diagnoser
	logger   *slog.Logger

	ops     chan func()
	stopped chan struct{}
	notices chan Notification
	runCtx  context.Context
	wg      sync.WaitGroup

	// Written only from the Run goroutine; mu lets Snapshot read from anywhere.
	mu    sync.RWMutex
	state State
}

// New creates a Controller on the Welcome screen.
func New(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		session:  deps.Session,
		history:  deps.History,
		accounts: deps.Accounts,
		diag:     deps.Diagnoser,
		logger:   logger,
		ops:      make(chan func()),
		stopped:  make(chan struct{}),
		notices:  make(chan Notification, noticeBuffer),
		runCtx:   context.Background(),
		state:    State{Screen: navigation.Initial},
	}
}

// Run processes operations until ctx is cancelled. It must be called
// exactly once. Diagnosis requests started by Submit use ctx, so cancelling
// it also abandons them; their results are then dropped.
func (c *Controller) Run(ctx context.Context) error {
	changes, unsubscribe := c.session.Subscribe()
	defer unsubscribe()
	defer close(c.stopped)

	c.runCtx = ctx
	c.regate()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			c.regate()
		case op := <-c.ops:
			op()
		}
	}
}

// Done is closed after Run returns.
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

// Wait blocks until every diagnosis goroutine has finished and had its
// result applied (or dropped, if the controller stopped first).
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Snapshot returns the current presentation state.
func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// do runs op on the loop goroutine and waits for it to finish.
func (c *Controller) do(op func()) error {
	done := make(chan struct{})
	wrapped := func() {
		defer close(done)
		op()
	}

	select {
	case c.ops <- wrapped:
	case <-c.stopped:
		return ErrStopped
	}
	<-done
	return nil
}

// update mutates the published state. Loop goroutine only.
func (c *Controller) update(fn func(*State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
}

// regate re-applies the navigation gate to the current screen.
// Loop goroutine only.
func (c *Controller) regate() {
	c.show(c.Snapshot().Screen)
}

// show resolves requested against the session and switches to the result.
// Loop goroutine only.
func (c *Controller) show(requested navigation.Screen) navigation.Screen {
	actual := navigation.Resolve(c.session.IsAuthenticated(), requested)

	prev := c.Snapshot().Screen
	c.update(func(s *State) { s.Screen = actual })
	if actual != prev {
		c.logger.Debug("screen changed",
			slog.String("from", prev.String()),
			slog.String("to", actual.String()),
			slog.String("requested", requested.String()),
		)
	}

	// First visit to History on a fresh install shows the example entries.
	if actual == navigation.History && c.history.Len() == 0 && !c.history.Initialized() {
		c.history.InitializeWithSampleData()
	}
	return actual
}

// Navigate asks for a screen and returns the one actually shown.
func (c *Controller) Navigate(requested navigation.Screen) (navigation.Screen, error) {
	var actual navigation.Screen
	err := c.do(func() { actual = c.show(requested) })
	return actual, err
}
