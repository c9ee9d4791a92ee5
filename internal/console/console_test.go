package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/symvora/internal/diagnosis"
	"github.com/sakif/symvora/internal/flow"
	"github.com/sakif/symvora/internal/history"
	"github.com/sakif/symvora/internal/model"
	"github.com/sakif/symvora/internal/navigation"
	"github.com/sakif/symvora/internal/preferences"
	"github.com/sakif/symvora/internal/session"
)

type stubAccounts struct{}

func (stubAccounts) SignUp(_ context.Context, name, email, _ string) (*model.User, error) {
	return &model.User{ID: "u1", Name: name, Email: email}, nil
}

func (stubAccounts) Login(_ context.Context, email, _ string) (*model.User, error) {
	return &model.User{ID: "u1", Name: "Ada", Email: email}, nil
}

func (stubAccounts) LoadCurrentUser(context.Context) (*model.User, error) { return nil, nil }
func (stubAccounts) UpdateProfileName(context.Context, string) error      { return nil }
func (stubAccounts) UpdatePassword(context.Context, string, string) error { return nil }
func (stubAccounts) Logout(context.Context) error                         { return nil }

// lockedBuffer lets the test read output while the notification printer
// is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *lockedBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type harness struct {
	console *Console
	ctrl    *flow.Controller
	session *session.State
	prefs   *preferences.Settings
	out     *lockedBuffer
	cancel  context.CancelFunc
}

func newHarness(t *testing.T) *harness {
	return newHarnessWith(t, diagnosis.Func(func(context.Context, string) (string, error) {
		return "Rest and fluids.", nil
	}))
}

// newHarnessWith starts a controller and the console's notification
// printer, as cmd/symvora does.
func newHarnessWith(t *testing.T, diag diagnosis.Diagnoser) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sess := session.New()
	ctrl := flow.New(flow.Deps{
		Session:   sess,
		History:   history.New(),
		Accounts:  stubAccounts{},
		Diagnoser: diag,
		Logger:    logger,
	})

	prefs := &preferences.Settings{}
	out := &lockedBuffer{}
	ui := New(ctrl, sess, prefs, out, logger)

	ctx, cancel := context.WithCancel(context.Background())
	printerDone := make(chan struct{})
	go ctrl.Run(ctx)
	go func() {
		defer close(printerDone)
		_ = ui.PrintNotifications(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-ctrl.Done()
		<-printerDone
	})

	return &harness{
		console: ui,
		ctrl:    ctrl,
		session: sess,
		prefs:   prefs,
		out:     out,
		cancel:  cancel,
	}
}

func (h *harness) waitForOutput(t *testing.T, text string) {
	t.Helper()
	require.Eventually(t, func() bool {
		return strings.Contains(h.out.String(), text)
	}, 2*time.Second, 10*time.Millisecond, "output never contained %q", text)
}

func (h *harness) exec(t *testing.T, line string) {
	t.Helper()
	quit, err := h.console.Execute(context.Background(), line)
	require.NoError(t, err)
	require.False(t, quit)
}

func TestRunScript(t *testing.T) {
	h := newHarness(t)

	script := strings.Join([]string{
		"go history",
		"login ada@example.com secret1",
		"check headache and fever",
		"quit",
		"status",
	}, "\n")

	err := h.console.Run(context.Background(), strings.NewReader(script))
	require.NoError(t, err)

	h.waitForOutput(t, "Rest and fluids.")
	out := h.out.String()
	assert.Contains(t, out, "History is not available right now, showing SignUp")
	assert.Contains(t, out, "Symvora · Symptoms")
	assert.Contains(t, out, flow.AnalyzingText)
	assert.Contains(t, out, "Analysis")
	assert.NotContains(t, out, "Status", "commands after quit must not run")
	assert.True(t, h.session.IsAuthenticated())

	h.ctrl.Wait()
	h.exec(t, "history headache")
	assert.Contains(t, h.out.String(), "headache and fever")
	assert.Equal(t, navigation.History, h.ctrl.Snapshot().Screen)
}

// gate blocks every diagnosis until release is closed.
type gate struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{release: make(chan struct{}), started: make(chan struct{})}
}

func (g *gate) Diagnose(ctx context.Context, symptoms string) (string, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return "Advice for " + symptoms, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestCheckDoesNotBlockInput(t *testing.T) {
	g := newGate()
	h := newHarnessWith(t, g)
	h.exec(t, "login ada@example.com secret1")

	done := make(chan error, 1)
	go func() {
		_, err := h.console.Execute(context.Background(), "check headache")
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("check did not return while the diagnosis was still running")
	}
	select {
	case <-g.started:
	case <-time.After(time.Second):
		t.Fatal("diagnosis never started")
	}
	assert.True(t, h.ctrl.Snapshot().Loading)

	h.exec(t, "status")
	assert.Contains(t, h.out.String(), "Status")

	h.exec(t, "check cough")
	assert.Contains(t, h.out.String(), "A symptom check is already running")

	close(g.release)
	h.waitForOutput(t, "Advice for headache")
	h.ctrl.Wait()

	entries := h.ctrl.History("")
	require.Len(t, entries, 1)
	assert.Equal(t, "headache", entries[0].Symptoms)
	assert.False(t, h.ctrl.Snapshot().Loading)
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.console.Run(context.Background(), strings.NewReader("help\n")))
	assert.Contains(t, h.out.String(), "Current screen: Welcome")
}

func TestCheckOutsideSymptomsScreen(t *testing.T) {
	h := newHarness(t)

	h.exec(t, "check cough")
	assert.Contains(t, h.out.String(), "only available on the Symptoms screen")
	assert.Empty(t, h.ctrl.History(""))
}

func TestHistorySignedOut(t *testing.T) {
	h := newHarness(t)

	h.exec(t, "history")
	assert.Contains(t, h.out.String(), "Sign in to see your history")
	assert.Equal(t, navigation.SignUp, h.ctrl.Snapshot().Screen)
}

func TestHistoryShowsExamplesOnFirstVisit(t *testing.T) {
	h := newHarness(t)
	h.exec(t, "signup \"Ada Lovelace\" ada@example.com secret1 secret1")

	h.exec(t, "history")
	assert.NotEmpty(t, h.ctrl.History(""))

	h.exec(t, "clear")
	h.out.Reset()
	h.exec(t, "history")
	assert.Contains(t, h.out.String(), "No symptom history yet")

	h.out.Reset()
	h.exec(t, "history nothing-matches-this")
	assert.Contains(t, h.out.String(), "No entries match")
}

func TestDisplayPreferences(t *testing.T) {
	h := newHarness(t)

	h.exec(t, "theme")
	assert.Equal(t, preferences.Dark, h.prefs.Theme())

	h.exec(t, "font large")
	assert.Equal(t, preferences.Large, h.prefs.FontSize())

	h.exec(t, "font huge")
	assert.Contains(t, h.out.String(), `unknown font size "huge"`)
	assert.Equal(t, preferences.Large, h.prefs.FontSize())
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	h.exec(t, "login only-one-arg")
	h.exec(t, "go")
	h.exec(t, "go nowhere")
	h.exec(t, "frobnicate")

	out := h.out.String()
	assert.Contains(t, out, "usage: login <email> <password>")
	assert.Contains(t, out, "usage: go <")
	assert.Contains(t, out, `unknown screen "nowhere"`)
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.False(t, h.session.IsAuthenticated())
}

func TestQuit(t *testing.T) {
	h := newHarness(t)
	quit, err := h.console.Execute(context.Background(), "exit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestExecuteAfterStop(t *testing.T) {
	h := newHarness(t)
	h.cancel()
	<-h.ctrl.Done()

	quit, err := h.console.Execute(context.Background(), "go login")
	assert.ErrorIs(t, err, flow.ErrStopped)
	assert.True(t, quit)
}
